package crypto

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/sirupsen/logrus"
)

// CompressedPublicKeySize is the length of a serialized compressed
// secp256k1 public key.
const CompressedPublicKeySize = 33

// PrivateKeySize is the length of a raw secp256k1 private scalar.
const PrivateKeySize = 32

var (
	// ErrInvalidPrivateKey indicates a private key that is zero, out of
	// range, or the wrong length
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidPublicKey indicates bytes that do not parse as a
	// compressed secp256k1 point
	ErrInvalidPublicKey = errors.New("invalid public key")
)

// KeyPair represents a secp256k1 node identity used for peer handshakes.
type KeyPair struct {
	priv *secp256k1.PrivateKey
}

// GenerateKeyPair creates a new random secp256k1 key pair.
func GenerateKeyPair() (*KeyPair, error) {
	logger := NewLogger("GenerateKeyPair")
	logger.Entry("generating node key")

	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		logger.WithField("error", err.Error()).Error("key generation failed")
		return nil, err
	}

	kp := &KeyPair{priv: priv}
	logger.WithFields(logrus.Fields{
		"node_id": kp.NodeID().String(),
	}).Debug("node key generated")
	logger.Exit()
	return kp, nil
}

// FromPrivateKeyBytes creates a key pair from an existing 32-byte private
// scalar. The scalar must be non-zero and below the curve order.
func FromPrivateKeyBytes(secret []byte) (*KeyPair, error) {
	if len(secret) != PrivateKeySize {
		return nil, ErrInvalidPrivateKey
	}
	if isZeroKey(secret) {
		return nil, ErrInvalidPrivateKey
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(secret); overflow {
		return nil, ErrInvalidPrivateKey
	}
	if scalar.IsZero() {
		return nil, ErrInvalidPrivateKey
	}

	return &KeyPair{priv: secp256k1.NewPrivateKey(&scalar)}, nil
}

// Public returns the public half of the key pair.
func (kp *KeyPair) Public() *secp256k1.PublicKey {
	return kp.priv.PubKey()
}

// PublicCompressed returns the 33-byte compressed public key carried in
// handshake headers.
func (kp *KeyPair) PublicCompressed() []byte {
	return kp.priv.PubKey().SerializeCompressed()
}

// PrivateBytes returns the raw 32-byte private scalar.
func (kp *KeyPair) PrivateBytes() []byte {
	return kp.priv.Serialize()
}

// NodeID returns the RIPEMD160 identifier derived from the public key.
func (kp *KeyPair) NodeID() NodeID {
	return NodeIDFromPublic(kp.priv.PubKey())
}

// SignDigest produces a DER-encoded deterministic ECDSA signature over a
// 32-byte digest. The session binding is signed directly as the digest.
func (kp *KeyPair) SignDigest(digest [32]byte) []byte {
	return ecdsa.Sign(kp.priv, digest[:]).Serialize()
}

// VerifyDigest checks a DER-encoded ECDSA signature over a 32-byte digest
// against a public key.
func VerifyDigest(pub *secp256k1.PublicKey, digest [32]byte, der []byte) bool {
	sig, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return false
	}
	return sig.Verify(digest[:], pub)
}

// ParsePublicKey parses a 33-byte compressed secp256k1 public key.
func ParsePublicKey(b []byte) (*secp256k1.PublicKey, error) {
	if len(b) != CompressedPublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	return pub, nil
}

// isZeroKey checks if a key consists of all zeros.
func isZeroKey(key []byte) bool {
	for _, b := range key {
		if b != 0 {
			return false
		}
	}
	return true
}
