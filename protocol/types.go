package protocol

import "fmt"

// MessageType identifies a peer message on the wire. The values are fixed
// by the reference node and must never be renumbered.
type MessageType uint16

const (
	TypeManifests               MessageType = 2
	TypePing                    MessageType = 3
	TypeCluster                 MessageType = 5
	TypeEndpoints               MessageType = 15
	TypeTransaction             MessageType = 30
	TypeGetLedger               MessageType = 31
	TypeLedgerData              MessageType = 32
	TypeProposeLedger           MessageType = 33
	TypeStatusChange            MessageType = 34
	TypeHaveSet                 MessageType = 35
	TypeValidation              MessageType = 41
	TypeGetObjects              MessageType = 42
	TypeValidatorList           MessageType = 54
	TypeSquelch                 MessageType = 55
	TypeValidatorListCollection MessageType = 56
	TypeProofPathRequest        MessageType = 57
	TypeProofPathResponse       MessageType = 58
	TypeReplayDeltaRequest      MessageType = 59
	TypeReplayDeltaResponse     MessageType = 60
	TypeGetPeerShardInfoV2      MessageType = 61
	TypePeerShardInfoV2         MessageType = 62
	TypeHaveTransactions        MessageType = 63
	TypeTransactions            MessageType = 64
)

var messageTypeNames = map[MessageType]string{
	TypeManifests:               "mtMANIFESTS",
	TypePing:                    "mtPING",
	TypeCluster:                 "mtCLUSTER",
	TypeEndpoints:               "mtENDPOINTS",
	TypeTransaction:             "mtTRANSACTION",
	TypeGetLedger:               "mtGET_LEDGER",
	TypeLedgerData:              "mtLEDGER_DATA",
	TypeProposeLedger:           "mtPROPOSE_LEDGER",
	TypeStatusChange:            "mtSTATUS_CHANGE",
	TypeHaveSet:                 "mtHAVE_SET",
	TypeValidation:              "mtVALIDATION",
	TypeGetObjects:              "mtGET_OBJECTS",
	TypeValidatorList:           "mtVALIDATORLIST",
	TypeSquelch:                 "mtSQUELCH",
	TypeValidatorListCollection: "mtVALIDATORLISTCOLLECTION",
	TypeProofPathRequest:        "mtPROOF_PATH_REQ",
	TypeProofPathResponse:       "mtPROOF_PATH_RESPONSE",
	TypeReplayDeltaRequest:      "mtREPLAY_DELTA_REQ",
	TypeReplayDeltaResponse:     "mtREPLAY_DELTA_RESPONSE",
	TypeGetPeerShardInfoV2:      "mtGET_PEER_SHARD_INFO_V2",
	TypePeerShardInfoV2:         "mtPEER_SHARD_INFO_V2",
	TypeHaveTransactions:        "mtHAVE_TRANSACTIONS",
	TypeTransactions:            "mtTRANSACTIONS",
}

// String renders the reference node's name for the message type.
func (mt MessageType) String() string {
	if name, ok := messageTypeNames[mt]; ok {
		return name
	}
	return fmt.Sprintf("mtUNKNOWN(%d)", uint16(mt))
}

// Known reports whether the message type is in the registry.
func (mt MessageType) Known() bool {
	_, ok := messageTypeNames[mt]
	return ok
}

// PingType distinguishes a ping from its echo.
type PingType uint32

const (
	PingTypePing PingType = 0
	PingTypePong PingType = 1
)

// TransactionStatus is the relay state attached to a transaction.
type TransactionStatus uint32

const (
	TxNew TransactionStatus = iota + 1
	TxCurrent
	TxCommitted
	TxRejectConflict
	TxRejectInvalid
	TxRejectFunds
	TxHeldSeq
	TxHeldLedger
)

// NodeStatus is the coarse state a peer reports in status changes.
type NodeStatus uint32

const (
	NodeConnecting NodeStatus = iota + 1
	NodeConnected
	NodeMonitoring
	NodeValidating
	NodeShutting
)

// NodeEvent is the ledger event a status change announces.
type NodeEvent uint32

const (
	EventClosingLedger NodeEvent = iota + 1
	EventAcceptedLedger
	EventSwitchedLedger
	EventLostSync
)

// TxSetStatus qualifies a have-set announcement.
type TxSetStatus uint32

const (
	SetHave TxSetStatus = iota + 1
	SetCanGet
	SetNeed
)

// LedgerInfoType selects which part of a ledger a query touches.
type LedgerInfoType uint32

const (
	InfoBase LedgerInfoType = iota
	InfoTxNode
	InfoAsNode
	InfoTsCandidate
)

// LedgerType selects which ledger a query addresses.
type LedgerType uint32

const (
	LedgerAccepted LedgerType = iota
	LedgerCurrent
	LedgerClosed
)

// QueryType marks indirect ledger queries.
type QueryType uint32

const QueryIndirect QueryType = 0

// ReplyError is the error code carried in negative responses.
type ReplyError uint32

const (
	ReplyNoLedger ReplyError = iota + 1
	ReplyNoNode
	ReplyBadRequest
)

// ObjectType classifies objects fetched by hash.
type ObjectType uint32

const (
	ObjectUnknown ObjectType = iota
	ObjectLedger
	ObjectTransaction
	ObjectTransactionNode
	ObjectStateNode
	ObjectCASObject
	ObjectFetchPack
	ObjectTransactions
)

// LedgerMapType selects a ledger SHAMap for proof-path queries.
type LedgerMapType uint32

const (
	MapTransaction LedgerMapType = iota + 1
	MapAccountState
)
