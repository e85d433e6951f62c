package protocol

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// ValidatorList publishes a signed validator list (mtVALIDATORLIST).
type ValidatorList struct {
	Manifest  []byte
	Blob      []byte
	Signature []byte
	Version   uint32
}

// Type implements Payload.
func (v *ValidatorList) Type() MessageType { return TypeValidatorList }

// MarshalBinary implements Payload.
func (v *ValidatorList) MarshalBinary() ([]byte, error) {
	b := appendBytes(nil, 1, v.Manifest)
	b = appendBytes(b, 2, v.Blob)
	b = appendBytes(b, 3, v.Signature)
	b = appendUint32(b, 4, v.Version)
	return b, nil
}

// UnmarshalBinary implements Payload.
func (v *ValidatorList) UnmarshalBinary(data []byte) error {
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var err error
		var u uint64
		switch {
		case num == 1 && typ == protowire.BytesType:
			v.Manifest, b, err = readBytes(b)
		case num == 2 && typ == protowire.BytesType:
			v.Blob, b, err = readBytes(b)
		case num == 3 && typ == protowire.BytesType:
			v.Signature, b, err = readBytes(b)
		case num == 4 && typ == protowire.VarintType:
			u, b, err = readVarint(b)
			v.Version = uint32(u)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ValidatorBlobInfo is one signed blob inside a list collection.
type ValidatorBlobInfo struct {
	Manifest  []byte
	Blob      []byte
	Signature []byte
}

func (v *ValidatorBlobInfo) appendFields(b []byte) []byte {
	b = appendBytesIfSet(b, 1, v.Manifest)
	b = appendBytes(b, 2, v.Blob)
	b = appendBytes(b, 3, v.Signature)
	return b
}

func (v *ValidatorBlobInfo) unmarshalFields(data []byte) error {
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var err error
		switch {
		case num == 1 && typ == protowire.BytesType:
			v.Manifest, b, err = readBytes(b)
		case num == 2 && typ == protowire.BytesType:
			v.Blob, b, err = readBytes(b)
		case num == 3 && typ == protowire.BytesType:
			v.Signature, b, err = readBytes(b)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ValidatorListCollection publishes several validator list versions at
// once (mtVALIDATORLISTCOLLECTION).
type ValidatorListCollection struct {
	Version  uint32
	Manifest []byte
	Blobs    []ValidatorBlobInfo
}

// Type implements Payload.
func (v *ValidatorListCollection) Type() MessageType { return TypeValidatorListCollection }

// MarshalBinary implements Payload.
func (v *ValidatorListCollection) MarshalBinary() ([]byte, error) {
	b := appendUint32(nil, 1, v.Version)
	b = appendBytes(b, 2, v.Manifest)
	for i := range v.Blobs {
		b = appendBytes(b, 3, v.Blobs[i].appendFields(nil))
	}
	return b, nil
}

// UnmarshalBinary implements Payload.
func (v *ValidatorListCollection) UnmarshalBinary(data []byte) error {
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var err error
		var u uint64
		switch {
		case num == 1 && typ == protowire.VarintType:
			u, b, err = readVarint(b)
			v.Version = uint32(u)
		case num == 2 && typ == protowire.BytesType:
			v.Manifest, b, err = readBytes(b)
		case num == 3 && typ == protowire.BytesType:
			var sub []byte
			if sub, b, err = readBytes(b); err == nil {
				var item ValidatorBlobInfo
				if err = item.unmarshalFields(sub); err == nil {
					v.Blobs = append(v.Blobs, item)
				}
			}
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// GetPeerShardInfoV2 requests shard info from peers (mtGET_PEER_SHARD_INFO_V2).
// Relays is decremented at each hop; a positive value asks the receiver to
// forward the request to its own peers with the sender's key appended to
// PeerChain.
type GetPeerShardInfoV2 struct {
	PeerChain [][]byte
	Relays    uint32
}

// Type implements Payload.
func (g *GetPeerShardInfoV2) Type() MessageType { return TypeGetPeerShardInfoV2 }

// MarshalBinary implements Payload.
func (g *GetPeerShardInfoV2) MarshalBinary() ([]byte, error) {
	var b []byte
	for _, key := range g.PeerChain {
		b = appendBytes(b, 1, key)
	}
	b = appendUint32(b, 2, g.Relays)
	return b, nil
}

// UnmarshalBinary implements Payload.
func (g *GetPeerShardInfoV2) UnmarshalBinary(data []byte) error {
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var err error
		var v uint64
		switch {
		case num == 1 && typ == protowire.BytesType:
			var key []byte
			if key, b, err = readBytes(b); err == nil {
				g.PeerChain = append(g.PeerChain, key)
			}
		case num == 2 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			g.Relays = uint32(v)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ShardIncomplete describes one shard still being acquired or verified.
type ShardIncomplete struct {
	ShardIndex uint32
	State      uint32
	Progress   uint32
}

func (s *ShardIncomplete) appendFields(b []byte) []byte {
	b = appendUint32(b, 1, s.ShardIndex)
	b = appendUint32(b, 2, s.State)
	b = appendUint32IfSet(b, 3, s.Progress)
	return b
}

func (s *ShardIncomplete) unmarshalFields(data []byte) error {
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var err error
		var v uint64
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			s.ShardIndex = uint32(v)
		case num == 2 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			s.State = uint32(v)
		case num == 3 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			s.Progress = uint32(v)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// PeerShardInfoV2 reports the shards a node holds (mtPEER_SHARD_INFO_V2).
// Responses retrace PeerChain back toward the original requester.
type PeerShardInfoV2 struct {
	Timestamp  uint32
	Incomplete []ShardIncomplete
	Finalized  string
	PublicKey  []byte
	Signature  []byte
	PeerChain  [][]byte
}

// Type implements Payload.
func (p *PeerShardInfoV2) Type() MessageType { return TypePeerShardInfoV2 }

// MarshalBinary implements Payload.
func (p *PeerShardInfoV2) MarshalBinary() ([]byte, error) {
	b := appendUint32(nil, 1, p.Timestamp)
	for i := range p.Incomplete {
		b = appendBytes(b, 2, p.Incomplete[i].appendFields(nil))
	}
	b = appendStringIfSet(b, 3, p.Finalized)
	b = appendBytes(b, 4, p.PublicKey)
	b = appendBytes(b, 5, p.Signature)
	for _, key := range p.PeerChain {
		b = appendBytes(b, 6, key)
	}
	return b, nil
}

// UnmarshalBinary implements Payload.
func (p *PeerShardInfoV2) UnmarshalBinary(data []byte) error {
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var err error
		var v uint64
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			p.Timestamp = uint32(v)
		case num == 2 && typ == protowire.BytesType:
			var sub []byte
			if sub, b, err = readBytes(b); err == nil {
				var item ShardIncomplete
				if err = item.unmarshalFields(sub); err == nil {
					p.Incomplete = append(p.Incomplete, item)
				}
			}
		case num == 3 && typ == protowire.BytesType:
			p.Finalized, b, err = readString(b)
		case num == 4 && typ == protowire.BytesType:
			p.PublicKey, b, err = readBytes(b)
		case num == 5 && typ == protowire.BytesType:
			p.Signature, b, err = readBytes(b)
		case num == 6 && typ == protowire.BytesType:
			var key []byte
			if key, b, err = readBytes(b); err == nil {
				p.PeerChain = append(p.PeerChain, key)
			}
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
