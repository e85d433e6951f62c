package protocol

// Payload is a typed message body. Implementations marshal to and from
// the reference node's protobuf layout for their message type.
type Payload interface {
	// Type returns the wire message type of the payload.
	Type() MessageType

	// MarshalBinary renders the payload's protobuf encoding.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary parses a protobuf encoding into the payload.
	// Unknown fields are skipped.
	UnmarshalBinary(data []byte) error
}

// NewPayload returns an empty payload for a registered message type.
func NewPayload(mt MessageType) (Payload, bool) {
	switch mt {
	case TypeManifests:
		return &Manifests{}, true
	case TypePing:
		return &Ping{}, true
	case TypeCluster:
		return &Cluster{}, true
	case TypeEndpoints:
		return &Endpoints{}, true
	case TypeTransaction:
		return &Transaction{}, true
	case TypeGetLedger:
		return &GetLedger{}, true
	case TypeLedgerData:
		return &LedgerData{}, true
	case TypeProposeLedger:
		return &ProposeSet{}, true
	case TypeStatusChange:
		return &StatusChange{}, true
	case TypeHaveSet:
		return &HaveTransactionSet{}, true
	case TypeValidation:
		return &Validation{}, true
	case TypeGetObjects:
		return &GetObjectByHash{}, true
	case TypeValidatorList:
		return &ValidatorList{}, true
	case TypeSquelch:
		return &Squelch{}, true
	case TypeValidatorListCollection:
		return &ValidatorListCollection{}, true
	case TypeProofPathRequest:
		return &ProofPathRequest{}, true
	case TypeProofPathResponse:
		return &ProofPathResponse{}, true
	case TypeReplayDeltaRequest:
		return &ReplayDeltaRequest{}, true
	case TypeReplayDeltaResponse:
		return &ReplayDeltaResponse{}, true
	case TypeGetPeerShardInfoV2:
		return &GetPeerShardInfoV2{}, true
	case TypePeerShardInfoV2:
		return &PeerShardInfoV2{}, true
	case TypeHaveTransactions:
		return &HaveTransactions{}, true
	case TypeTransactions:
		return &Transactions{}, true
	}
	return nil, false
}

// KnownTypes lists every registered message type in ascending order.
func KnownTypes() []MessageType {
	return []MessageType{
		TypeManifests,
		TypePing,
		TypeCluster,
		TypeEndpoints,
		TypeTransaction,
		TypeGetLedger,
		TypeLedgerData,
		TypeProposeLedger,
		TypeStatusChange,
		TypeHaveSet,
		TypeValidation,
		TypeGetObjects,
		TypeValidatorList,
		TypeSquelch,
		TypeValidatorListCollection,
		TypeProofPathRequest,
		TypeProofPathResponse,
		TypeReplayDeltaRequest,
		TypeReplayDeltaResponse,
		TypeGetPeerShardInfoV2,
		TypePeerShardInfoV2,
		TypeHaveTransactions,
		TypeTransactions,
	}
}
