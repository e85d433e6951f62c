package protocol

import (
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

// Manifest is one signed manifest blob.
type Manifest struct {
	// Raw is the serialized STObject exactly as signed.
	Raw []byte
}

func (m *Manifest) appendFields(b []byte) []byte {
	return appendBytes(b, 1, m.Raw)
}

func (m *Manifest) unmarshalFields(data []byte) error {
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
			m.Raw, b, err = readBytes(b)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Manifests carries the manifests a peer relays after connecting (mtMANIFESTS).
type Manifests struct {
	List []Manifest
}

// Type implements Payload.
func (m *Manifests) Type() MessageType { return TypeManifests }

// MarshalBinary implements Payload.
func (m *Manifests) MarshalBinary() ([]byte, error) {
	var b []byte
	for i := range m.List {
		b = appendBytes(b, 1, m.List[i].appendFields(nil))
	}
	return b, nil
}

// UnmarshalBinary implements Payload.
func (m *Manifests) UnmarshalBinary(data []byte) error {
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
			var sub []byte
			if sub, b, err = readBytes(b); err == nil {
				var item Manifest
				if err = item.unmarshalFields(sub); err == nil {
					m.List = append(m.List, item)
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

// Ping is a liveness probe or its echo (mtPING). PingTime is set by the
// sender of a ping and echoed back in the pong; NetTime carries the
// sender's wall clock.
type Ping struct {
	Kind     PingType
	Seq      uint32
	PingTime uint64
	NetTime  uint64
}

// Type implements Payload.
func (p *Ping) Type() MessageType { return TypePing }

// MarshalBinary implements Payload.
func (p *Ping) MarshalBinary() ([]byte, error) {
	b := appendUint32(nil, 1, uint32(p.Kind))
	b = appendUint32IfSet(b, 2, p.Seq)
	b = appendUint64IfSet(b, 3, p.PingTime)
	b = appendUint64IfSet(b, 4, p.NetTime)
	return b, nil
}

// UnmarshalBinary implements Payload. The type field is required; a ping
// without it cannot be dispatched as ping or pong.
func (p *Ping) UnmarshalBinary(data []byte) error {
	b := data
	seenKind := false
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
			p.Kind = PingType(v)
			seenKind = true
		case num == 2 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			p.Seq = uint32(v)
		case num == 3 && typ == protowire.VarintType:
			p.PingTime, b, err = readVarint(b)
		case num == 4 && typ == protowire.VarintType:
			p.NetTime, b, err = readVarint(b)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	if !seenKind {
		return errors.New("missing type field")
	}
	return nil
}

// ClusterNode describes one member of a cluster report.
type ClusterNode struct {
	PublicKey  string
	ReportTime uint32
	NodeLoad   uint32
	NodeName   string
	Address    string
}

func (c *ClusterNode) appendFields(b []byte) []byte {
	b = appendString(b, 1, c.PublicKey)
	b = appendUint32(b, 2, c.ReportTime)
	b = appendUint32(b, 3, c.NodeLoad)
	b = appendStringIfSet(b, 4, c.NodeName)
	b = appendStringIfSet(b, 5, c.Address)
	return b
}

func (c *ClusterNode) unmarshalFields(data []byte) error {
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
			c.PublicKey, b, err = readString(b)
		case num == 2 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			c.ReportTime = uint32(v)
		case num == 3 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			c.NodeLoad = uint32(v)
		case num == 4 && typ == protowire.BytesType:
			c.NodeName, b, err = readString(b)
		case num == 5 && typ == protowire.BytesType:
			c.Address, b, err = readString(b)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadSource reports a fee/load source in a cluster report.
type LoadSource struct {
	Name  string
	Cost  uint32
	Count uint32
}

func (l *LoadSource) appendFields(b []byte) []byte {
	b = appendString(b, 1, l.Name)
	b = appendUint32(b, 2, l.Cost)
	b = appendUint32IfSet(b, 3, l.Count)
	return b
}

func (l *LoadSource) unmarshalFields(data []byte) error {
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
			l.Name, b, err = readString(b)
		case num == 2 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			l.Cost = uint32(v)
		case num == 3 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			l.Count = uint32(v)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Cluster is a cluster membership and load report (mtCLUSTER).
type Cluster struct {
	ClusterNodes []ClusterNode
	LoadSources  []LoadSource
}

// Type implements Payload.
func (c *Cluster) Type() MessageType { return TypeCluster }

// MarshalBinary implements Payload.
func (c *Cluster) MarshalBinary() ([]byte, error) {
	var b []byte
	for i := range c.ClusterNodes {
		b = appendBytes(b, 1, c.ClusterNodes[i].appendFields(nil))
	}
	for i := range c.LoadSources {
		b = appendBytes(b, 2, c.LoadSources[i].appendFields(nil))
	}
	return b, nil
}

// UnmarshalBinary implements Payload.
func (c *Cluster) UnmarshalBinary(data []byte) error {
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
			var sub []byte
			if sub, b, err = readBytes(b); err == nil {
				var item ClusterNode
				if err = item.unmarshalFields(sub); err == nil {
					c.ClusterNodes = append(c.ClusterNodes, item)
				}
			}
		case num == 2 && typ == protowire.BytesType:
			var sub []byte
			if sub, b, err = readBytes(b); err == nil {
				var item LoadSource
				if err = item.unmarshalFields(sub); err == nil {
					c.LoadSources = append(c.LoadSources, item)
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

// Endpoint is one advertised peer endpoint.
type Endpoint struct {
	// Endpoint is the printable address, host:port.
	Endpoint string

	// Hops counts relay distance; zero means the sender itself.
	Hops uint32
}

func (e *Endpoint) appendFields(b []byte) []byte {
	b = appendString(b, 1, e.Endpoint)
	b = appendUint32(b, 2, e.Hops)
	return b
}

func (e *Endpoint) unmarshalFields(data []byte) error {
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
			e.Endpoint, b, err = readString(b)
		case num == 2 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			e.Hops = uint32(v)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Endpoints advertises peers for the overlay to try (mtENDPOINTS).
// Field 3 carries the v2 entries; fields 1 and 2 are retired.
type Endpoints struct {
	Endpoints []Endpoint
}

// Type implements Payload.
func (e *Endpoints) Type() MessageType { return TypeEndpoints }

// MarshalBinary implements Payload.
func (e *Endpoints) MarshalBinary() ([]byte, error) {
	var b []byte
	for i := range e.Endpoints {
		b = appendBytes(b, 3, e.Endpoints[i].appendFields(nil))
	}
	return b, nil
}

// UnmarshalBinary implements Payload.
func (e *Endpoints) UnmarshalBinary(data []byte) error {
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var err error
		switch {
		case num == 3 && typ == protowire.BytesType:
			var sub []byte
			if sub, b, err = readBytes(b); err == nil {
				var item Endpoint
				if err = item.unmarshalFields(sub); err == nil {
					e.Endpoints = append(e.Endpoints, item)
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

// Transaction relays one candidate transaction (mtTRANSACTION).
type Transaction struct {
	RawTransaction   []byte
	Status           TransactionStatus
	ReceiveTimestamp uint64
	Deferred         bool
}

// Type implements Payload.
func (t *Transaction) Type() MessageType { return TypeTransaction }

func (t *Transaction) appendFields(b []byte) []byte {
	b = appendBytes(b, 1, t.RawTransaction)
	b = appendUint32(b, 2, uint32(t.Status))
	b = appendUint64IfSet(b, 3, t.ReceiveTimestamp)
	b = appendBoolIfSet(b, 4, t.Deferred)
	return b
}

// MarshalBinary implements Payload.
func (t *Transaction) MarshalBinary() ([]byte, error) {
	return t.appendFields(nil), nil
}

func (t *Transaction) unmarshalFields(data []byte) error {
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
			t.RawTransaction, b, err = readBytes(b)
		case num == 2 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			t.Status = TransactionStatus(v)
		case num == 3 && typ == protowire.VarintType:
			t.ReceiveTimestamp, b, err = readVarint(b)
		case num == 4 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			t.Deferred = v != 0
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalBinary implements Payload.
func (t *Transaction) UnmarshalBinary(data []byte) error {
	return t.unmarshalFields(data)
}

// Transactions batches transaction relays (mtTRANSACTIONS).
type Transactions struct {
	Transactions []Transaction
}

// Type implements Payload.
func (t *Transactions) Type() MessageType { return TypeTransactions }

// MarshalBinary implements Payload.
func (t *Transactions) MarshalBinary() ([]byte, error) {
	var b []byte
	for i := range t.Transactions {
		b = appendBytes(b, 1, t.Transactions[i].appendFields(nil))
	}
	return b, nil
}

// UnmarshalBinary implements Payload.
func (t *Transactions) UnmarshalBinary(data []byte) error {
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
			var sub []byte
			if sub, b, err = readBytes(b); err == nil {
				var item Transaction
				if err = item.unmarshalFields(sub); err == nil {
					t.Transactions = append(t.Transactions, item)
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

// HaveTransactions announces transaction hashes the sender holds
// (mtHAVE_TRANSACTIONS).
type HaveTransactions struct {
	Hashes [][]byte
}

// Type implements Payload.
func (h *HaveTransactions) Type() MessageType { return TypeHaveTransactions }

// MarshalBinary implements Payload.
func (h *HaveTransactions) MarshalBinary() ([]byte, error) {
	var b []byte
	for _, hash := range h.Hashes {
		b = appendBytes(b, 1, hash)
	}
	return b, nil
}

// UnmarshalBinary implements Payload.
func (h *HaveTransactions) UnmarshalBinary(data []byte) error {
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
			var hash []byte
			if hash, b, err = readBytes(b); err == nil {
				h.Hashes = append(h.Hashes, hash)
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

// Squelch instructs a peer to mute or unmute a validator's traffic
// (mtSQUELCH).
type Squelch struct {
	Squelch         bool
	ValidatorPubKey []byte
	Duration        uint32
}

// Type implements Payload.
func (s *Squelch) Type() MessageType { return TypeSquelch }

// MarshalBinary implements Payload.
func (s *Squelch) MarshalBinary() ([]byte, error) {
	b := appendBool(nil, 1, s.Squelch)
	b = appendBytes(b, 2, s.ValidatorPubKey)
	b = appendUint32IfSet(b, 3, s.Duration)
	return b, nil
}

// UnmarshalBinary implements Payload. The squelch flag and validator key
// are required; a squelch without a key has no subject.
func (s *Squelch) UnmarshalBinary(data []byte) error {
	b := data
	seenFlag, seenKey := false, false
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
			s.Squelch = v != 0
			seenFlag = true
		case num == 2 && typ == protowire.BytesType:
			s.ValidatorPubKey, b, err = readBytes(b)
			seenKey = true
		case num == 3 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			s.Duration = uint32(v)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	if !seenFlag {
		return errors.New("missing squelch field")
	}
	if !seenKey {
		return errors.New("missing validator key field")
	}
	return nil
}
