package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
)

// xrplAlphabet is the base58 dictionary used by XRPL tokens. It differs
// from the Bitcoin ordering, which is why node publics start with 'n'.
const xrplAlphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

// TokenNodePublic is the type prefix byte for node public key tokens.
const TokenNodePublic = 0x1C

// tokenChecksumSize is the length of the double-SHA256 checksum trailer.
const tokenChecksumSize = 4

var xrplEncoding = base58.NewAlphabet(xrplAlphabet)

var (
	// ErrTokenEncoding indicates a token that is not valid base58 in the
	// XRPL alphabet
	ErrTokenEncoding = errors.New("node public token is not valid base58")

	// ErrTokenLength indicates a token whose decoded payload has the
	// wrong length for a node public key
	ErrTokenLength = errors.New("node public token has wrong length")

	// ErrTokenChecksum indicates a token whose checksum trailer does not
	// match its payload
	ErrTokenChecksum = errors.New("node public token checksum mismatch")

	// ErrTokenPrefix indicates a token that is not of the node-public type
	ErrTokenPrefix = errors.New("node public token has wrong type prefix")
)

// EncodeNodePublic renders a public key as an XRPL Base58Check node-public
// token: prefix byte, 33-byte compressed key, 4-byte checksum.
func EncodeNodePublic(pub *secp256k1.PublicKey) string {
	payload := make([]byte, 0, 1+CompressedPublicKeySize+tokenChecksumSize)
	payload = append(payload, TokenNodePublic)
	payload = append(payload, pub.SerializeCompressed()...)
	check := tokenChecksum(payload)
	payload = append(payload, check[:]...)
	return base58.EncodeAlphabet(payload, xrplEncoding)
}

// DecodeNodePublic parses an XRPL Base58Check node-public token back into
// a public key. The checksum is verified before the type prefix so that
// corrupted tokens never reach point parsing.
func DecodeNodePublic(token string) (*secp256k1.PublicKey, error) {
	raw, err := base58.DecodeAlphabet(token, xrplEncoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenEncoding, err)
	}
	if len(raw) != 1+CompressedPublicKeySize+tokenChecksumSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTokenLength, len(raw))
	}

	payload, trailer := raw[:len(raw)-tokenChecksumSize], raw[len(raw)-tokenChecksumSize:]
	check := tokenChecksum(payload)
	if subtle.ConstantTimeCompare(trailer, check[:]) != 1 {
		return nil, ErrTokenChecksum
	}
	if payload[0] != TokenNodePublic {
		return nil, fmt.Errorf("%w: 0x%02X", ErrTokenPrefix, payload[0])
	}

	return ParsePublicKey(payload[1:])
}

// tokenChecksum computes the first four bytes of SHA256(SHA256(payload)).
func tokenChecksum(payload []byte) [tokenChecksumSize]byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])

	var check [tokenChecksumSize]byte
	copy(check[:], second[:tokenChecksumSize])
	return check
}
