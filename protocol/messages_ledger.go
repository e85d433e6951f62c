package protocol

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// GetLedger requests ledger headers or SHAMap nodes (mtGET_LEDGER).
type GetLedger struct {
	InfoType      LedgerInfoType
	LedgerType    LedgerType
	LedgerHash    []byte
	LedgerSeq     uint32
	NodeIDs       [][]byte
	RequestCookie uint64
	QueryType     QueryType
	QueryDepth    uint32

	// hasLedgerType tracks optional enum presence; LedgerAccepted is a
	// meaningful zero value.
	hasLedgerType bool
}

// Type implements Payload.
func (g *GetLedger) Type() MessageType { return TypeGetLedger }

// SetLedgerType sets the optional ledger selector.
func (g *GetLedger) SetLedgerType(lt LedgerType) {
	g.LedgerType = lt
	g.hasLedgerType = true
}

// MarshalBinary implements Payload.
func (g *GetLedger) MarshalBinary() ([]byte, error) {
	b := appendUint32(nil, 1, uint32(g.InfoType))
	if g.hasLedgerType || g.LedgerType != 0 {
		b = appendUint32(b, 2, uint32(g.LedgerType))
	}
	b = appendBytesIfSet(b, 3, g.LedgerHash)
	b = appendUint32IfSet(b, 4, g.LedgerSeq)
	for _, id := range g.NodeIDs {
		b = appendBytes(b, 5, id)
	}
	b = appendUint64IfSet(b, 6, g.RequestCookie)
	b = appendUint32IfSet(b, 7, uint32(g.QueryType))
	b = appendUint32IfSet(b, 8, g.QueryDepth)
	return b, nil
}

// UnmarshalBinary implements Payload.
func (g *GetLedger) UnmarshalBinary(data []byte) error {
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
			g.InfoType = LedgerInfoType(v)
		case num == 2 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			g.LedgerType = LedgerType(v)
			g.hasLedgerType = true
		case num == 3 && typ == protowire.BytesType:
			g.LedgerHash, b, err = readBytes(b)
		case num == 4 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			g.LedgerSeq = uint32(v)
		case num == 5 && typ == protowire.BytesType:
			var id []byte
			if id, b, err = readBytes(b); err == nil {
				g.NodeIDs = append(g.NodeIDs, id)
			}
		case num == 6 && typ == protowire.VarintType:
			g.RequestCookie, b, err = readVarint(b)
		case num == 7 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			g.QueryType = QueryType(v)
		case num == 8 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			g.QueryDepth = uint32(v)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// LedgerNode is one SHAMap node in a ledger-data response.
type LedgerNode struct {
	Data []byte
	ID   []byte
}

func (l *LedgerNode) appendFields(b []byte) []byte {
	b = appendBytes(b, 1, l.Data)
	b = appendBytesIfSet(b, 2, l.ID)
	return b
}

func (l *LedgerNode) unmarshalFields(data []byte) error {
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
			l.Data, b, err = readBytes(b)
		case num == 2 && typ == protowire.BytesType:
			l.ID, b, err = readBytes(b)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// LedgerData answers a ledger query with nodes or an error (mtLEDGER_DATA).
type LedgerData struct {
	LedgerHash    []byte
	LedgerSeq     uint32
	InfoType      LedgerInfoType
	Nodes         []LedgerNode
	RequestCookie uint32
	Error         ReplyError
}

// Type implements Payload.
func (l *LedgerData) Type() MessageType { return TypeLedgerData }

// MarshalBinary implements Payload.
func (l *LedgerData) MarshalBinary() ([]byte, error) {
	b := appendBytes(nil, 1, l.LedgerHash)
	b = appendUint32(b, 2, l.LedgerSeq)
	b = appendUint32(b, 3, uint32(l.InfoType))
	for i := range l.Nodes {
		b = appendBytes(b, 4, l.Nodes[i].appendFields(nil))
	}
	b = appendUint32IfSet(b, 5, l.RequestCookie)
	b = appendUint32IfSet(b, 6, uint32(l.Error))
	return b, nil
}

// UnmarshalBinary implements Payload.
func (l *LedgerData) UnmarshalBinary(data []byte) error {
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
			l.LedgerHash, b, err = readBytes(b)
		case num == 2 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			l.LedgerSeq = uint32(v)
		case num == 3 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			l.InfoType = LedgerInfoType(v)
		case num == 4 && typ == protowire.BytesType:
			var sub []byte
			if sub, b, err = readBytes(b); err == nil {
				var item LedgerNode
				if err = item.unmarshalFields(sub); err == nil {
					l.Nodes = append(l.Nodes, item)
				}
			}
		case num == 5 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			l.RequestCookie = uint32(v)
		case num == 6 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			l.Error = ReplyError(v)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ProposeSet carries a consensus proposal (mtPROPOSE_LEDGER).
type ProposeSet struct {
	ProposeSeq          uint32
	CurrentTxHash       []byte
	NodePubKey          []byte
	CloseTime           uint32
	Signature           []byte
	PreviousLedger      []byte
	AddedTransactions   [][]byte
	RemovedTransactions [][]byte
	LedgerSeq           uint32
}

// Type implements Payload.
func (p *ProposeSet) Type() MessageType { return TypeProposeLedger }

// MarshalBinary implements Payload.
func (p *ProposeSet) MarshalBinary() ([]byte, error) {
	b := appendUint32(nil, 1, p.ProposeSeq)
	b = appendBytes(b, 2, p.CurrentTxHash)
	b = appendBytes(b, 3, p.NodePubKey)
	b = appendUint32(b, 4, p.CloseTime)
	b = appendBytes(b, 5, p.Signature)
	b = appendBytes(b, 6, p.PreviousLedger)
	for _, tx := range p.AddedTransactions {
		b = appendBytes(b, 10, tx)
	}
	for _, tx := range p.RemovedTransactions {
		b = appendBytes(b, 11, tx)
	}
	b = appendUint32IfSet(b, 14, p.LedgerSeq)
	return b, nil
}

// UnmarshalBinary implements Payload.
func (p *ProposeSet) UnmarshalBinary(data []byte) error {
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
			p.ProposeSeq = uint32(v)
		case num == 2 && typ == protowire.BytesType:
			p.CurrentTxHash, b, err = readBytes(b)
		case num == 3 && typ == protowire.BytesType:
			p.NodePubKey, b, err = readBytes(b)
		case num == 4 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			p.CloseTime = uint32(v)
		case num == 5 && typ == protowire.BytesType:
			p.Signature, b, err = readBytes(b)
		case num == 6 && typ == protowire.BytesType:
			p.PreviousLedger, b, err = readBytes(b)
		case num == 10 && typ == protowire.BytesType:
			var tx []byte
			if tx, b, err = readBytes(b); err == nil {
				p.AddedTransactions = append(p.AddedTransactions, tx)
			}
		case num == 11 && typ == protowire.BytesType:
			var tx []byte
			if tx, b, err = readBytes(b); err == nil {
				p.RemovedTransactions = append(p.RemovedTransactions, tx)
			}
		case num == 14 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			p.LedgerSeq = uint32(v)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// StatusChange announces a peer's state or ledger transitions
// (mtSTATUS_CHANGE).
type StatusChange struct {
	NewStatus          NodeStatus
	NewEvent           NodeEvent
	LedgerSeq          uint32
	LedgerHash         []byte
	LedgerHashPrevious []byte
	NetworkTime        uint64
	FirstSeq           uint32
	LastSeq            uint32
}

// Type implements Payload.
func (s *StatusChange) Type() MessageType { return TypeStatusChange }

// MarshalBinary implements Payload.
func (s *StatusChange) MarshalBinary() ([]byte, error) {
	b := appendUint32IfSet(nil, 1, uint32(s.NewStatus))
	b = appendUint32IfSet(b, 2, uint32(s.NewEvent))
	b = appendUint32IfSet(b, 3, s.LedgerSeq)
	b = appendBytesIfSet(b, 4, s.LedgerHash)
	b = appendBytesIfSet(b, 5, s.LedgerHashPrevious)
	b = appendUint64IfSet(b, 6, s.NetworkTime)
	b = appendUint32IfSet(b, 7, s.FirstSeq)
	b = appendUint32IfSet(b, 8, s.LastSeq)
	return b, nil
}

// UnmarshalBinary implements Payload.
func (s *StatusChange) UnmarshalBinary(data []byte) error {
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
			s.NewStatus = NodeStatus(v)
		case num == 2 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			s.NewEvent = NodeEvent(v)
		case num == 3 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			s.LedgerSeq = uint32(v)
		case num == 4 && typ == protowire.BytesType:
			s.LedgerHash, b, err = readBytes(b)
		case num == 5 && typ == protowire.BytesType:
			s.LedgerHashPrevious, b, err = readBytes(b)
		case num == 6 && typ == protowire.VarintType:
			s.NetworkTime, b, err = readVarint(b)
		case num == 7 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			s.FirstSeq = uint32(v)
		case num == 8 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			s.LastSeq = uint32(v)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// HaveTransactionSet announces possession of a transaction set (mtHAVE_SET).
type HaveTransactionSet struct {
	Status TxSetStatus
	Hash   []byte
}

// Type implements Payload.
func (h *HaveTransactionSet) Type() MessageType { return TypeHaveSet }

// MarshalBinary implements Payload.
func (h *HaveTransactionSet) MarshalBinary() ([]byte, error) {
	b := appendUint32(nil, 1, uint32(h.Status))
	b = appendBytes(b, 2, h.Hash)
	return b, nil
}

// UnmarshalBinary implements Payload.
func (h *HaveTransactionSet) UnmarshalBinary(data []byte) error {
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
			h.Status = TxSetStatus(v)
		case num == 2 && typ == protowire.BytesType:
			h.Hash, b, err = readBytes(b)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validation relays a signed validation blob (mtVALIDATION).
type Validation struct {
	// Blob is the serialized STValidation exactly as signed.
	Blob []byte
}

// Type implements Payload.
func (va *Validation) Type() MessageType { return TypeValidation }

// MarshalBinary implements Payload.
func (va *Validation) MarshalBinary() ([]byte, error) {
	return appendBytes(nil, 1, va.Blob), nil
}

// UnmarshalBinary implements Payload.
func (va *Validation) UnmarshalBinary(data []byte) error {
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
			va.Blob, b, err = readBytes(b)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// IndexedObject is one object in a fetch-by-hash exchange.
type IndexedObject struct {
	Hash      []byte
	NodeID    []byte
	Index     []byte
	Data      []byte
	LedgerSeq uint32
}

func (o *IndexedObject) appendFields(b []byte) []byte {
	b = appendBytesIfSet(b, 1, o.Hash)
	b = appendBytesIfSet(b, 2, o.NodeID)
	b = appendBytesIfSet(b, 3, o.Index)
	b = appendBytesIfSet(b, 4, o.Data)
	b = appendUint32IfSet(b, 5, o.LedgerSeq)
	return b
}

func (o *IndexedObject) unmarshalFields(data []byte) error {
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
			o.Hash, b, err = readBytes(b)
		case num == 2 && typ == protowire.BytesType:
			o.NodeID, b, err = readBytes(b)
		case num == 3 && typ == protowire.BytesType:
			o.Index, b, err = readBytes(b)
		case num == 4 && typ == protowire.BytesType:
			o.Data, b, err = readBytes(b)
		case num == 5 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			o.LedgerSeq = uint32(v)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// GetObjectByHash requests or returns objects addressed by hash
// (mtGET_OBJECTS). Query distinguishes the two directions.
type GetObjectByHash struct {
	ObjectType ObjectType
	Query      bool
	Seq        uint32
	LedgerHash []byte
	Fat        bool
	Objects    []IndexedObject
}

// Type implements Payload.
func (g *GetObjectByHash) Type() MessageType { return TypeGetObjects }

// MarshalBinary implements Payload.
func (g *GetObjectByHash) MarshalBinary() ([]byte, error) {
	b := appendUint32(nil, 1, uint32(g.ObjectType))
	b = appendBool(b, 2, g.Query)
	b = appendUint32IfSet(b, 3, g.Seq)
	b = appendBytesIfSet(b, 4, g.LedgerHash)
	b = appendBoolIfSet(b, 5, g.Fat)
	for i := range g.Objects {
		b = appendBytes(b, 6, g.Objects[i].appendFields(nil))
	}
	return b, nil
}

// UnmarshalBinary implements Payload.
func (g *GetObjectByHash) UnmarshalBinary(data []byte) error {
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
			g.ObjectType = ObjectType(v)
		case num == 2 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			g.Query = v != 0
		case num == 3 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			g.Seq = uint32(v)
		case num == 4 && typ == protowire.BytesType:
			g.LedgerHash, b, err = readBytes(b)
		case num == 5 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			g.Fat = v != 0
		case num == 6 && typ == protowire.BytesType:
			var sub []byte
			if sub, b, err = readBytes(b); err == nil {
				var item IndexedObject
				if err = item.unmarshalFields(sub); err == nil {
					g.Objects = append(g.Objects, item)
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

// ProofPathRequest asks for a SHAMap proof path (mtPROOF_PATH_REQ).
type ProofPathRequest struct {
	Key        []byte
	LedgerHash []byte
	MapType    LedgerMapType
}

// Type implements Payload.
func (p *ProofPathRequest) Type() MessageType { return TypeProofPathRequest }

// MarshalBinary implements Payload.
func (p *ProofPathRequest) MarshalBinary() ([]byte, error) {
	b := appendBytes(nil, 1, p.Key)
	b = appendBytes(b, 2, p.LedgerHash)
	b = appendUint32(b, 3, uint32(p.MapType))
	return b, nil
}

// UnmarshalBinary implements Payload.
func (p *ProofPathRequest) UnmarshalBinary(data []byte) error {
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
			p.Key, b, err = readBytes(b)
		case num == 2 && typ == protowire.BytesType:
			p.LedgerHash, b, err = readBytes(b)
		case num == 3 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			p.MapType = LedgerMapType(v)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ProofPathResponse returns a SHAMap proof path (mtPROOF_PATH_RESPONSE).
type ProofPathResponse struct {
	Key        []byte
	LedgerHash []byte
	MapType    LedgerMapType
	Path       [][]byte
	Error      ReplyError
}

// Type implements Payload.
func (p *ProofPathResponse) Type() MessageType { return TypeProofPathResponse }

// MarshalBinary implements Payload.
func (p *ProofPathResponse) MarshalBinary() ([]byte, error) {
	b := appendBytes(nil, 1, p.Key)
	b = appendBytes(b, 2, p.LedgerHash)
	b = appendUint32(b, 3, uint32(p.MapType))
	for _, node := range p.Path {
		b = appendBytes(b, 4, node)
	}
	b = appendUint32IfSet(b, 5, uint32(p.Error))
	return b, nil
}

// UnmarshalBinary implements Payload.
func (p *ProofPathResponse) UnmarshalBinary(data []byte) error {
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
			p.Key, b, err = readBytes(b)
		case num == 2 && typ == protowire.BytesType:
			p.LedgerHash, b, err = readBytes(b)
		case num == 3 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			p.MapType = LedgerMapType(v)
		case num == 4 && typ == protowire.BytesType:
			var node []byte
			if node, b, err = readBytes(b); err == nil {
				p.Path = append(p.Path, node)
			}
		case num == 5 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			p.Error = ReplyError(v)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ReplayDeltaRequest asks for a ledger's replay delta (mtREPLAY_DELTA_REQ).
type ReplayDeltaRequest struct {
	LedgerHash []byte
}

// Type implements Payload.
func (r *ReplayDeltaRequest) Type() MessageType { return TypeReplayDeltaRequest }

// MarshalBinary implements Payload.
func (r *ReplayDeltaRequest) MarshalBinary() ([]byte, error) {
	return appendBytes(nil, 1, r.LedgerHash), nil
}

// UnmarshalBinary implements Payload.
func (r *ReplayDeltaRequest) UnmarshalBinary(data []byte) error {
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
			r.LedgerHash, b, err = readBytes(b)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ReplayDeltaResponse returns a ledger header plus its transactions
// (mtREPLAY_DELTA_RESPONSE).
type ReplayDeltaResponse struct {
	LedgerHash   []byte
	LedgerHeader []byte
	Transactions [][]byte
	Error        ReplyError
}

// Type implements Payload.
func (r *ReplayDeltaResponse) Type() MessageType { return TypeReplayDeltaResponse }

// MarshalBinary implements Payload.
func (r *ReplayDeltaResponse) MarshalBinary() ([]byte, error) {
	b := appendBytes(nil, 1, r.LedgerHash)
	b = appendBytesIfSet(b, 2, r.LedgerHeader)
	for _, tx := range r.Transactions {
		b = appendBytes(b, 3, tx)
	}
	b = appendUint32IfSet(b, 4, uint32(r.Error))
	return b, nil
}

// UnmarshalBinary implements Payload.
func (r *ReplayDeltaResponse) UnmarshalBinary(data []byte) error {
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
			r.LedgerHash, b, err = readBytes(b)
		case num == 2 && typ == protowire.BytesType:
			r.LedgerHeader, b, err = readBytes(b)
		case num == 3 && typ == protowire.BytesType:
			var tx []byte
			if tx, b, err = readBytes(b); err == nil {
				r.Transactions = append(r.Transactions, tx)
			}
		case num == 4 && typ == protowire.VarintType:
			v, b, err = readVarint(b)
			r.Error = ReplyError(v)
		default:
			b, err = skipField(b, num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
