package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/ripemd160"
)

// NodeIDSize is the length of a node identifier in bytes.
const NodeIDSize = 20

// NodeID is the short identifier of a peer, the RIPEMD160 digest of the
// SHA256 of its compressed public key. The reference node uses the same
// derivation for peer slots and squelching.
type NodeID [NodeIDSize]byte

// NodeIDFromPublic derives the node identifier for a public key.
func NodeIDFromPublic(pub *secp256k1.PublicKey) NodeID {
	sha := sha256.Sum256(pub.SerializeCompressed())
	r := ripemd160.New()
	r.Write(sha[:])

	var id NodeID
	copy(id[:], r.Sum(nil))
	return id
}

// String returns the full hex form of the node identifier.
func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns an 8-character prefix suitable for log fields.
func (id NodeID) Short() string {
	return hex.EncodeToString(id[:4])
}
