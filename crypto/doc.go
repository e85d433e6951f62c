// Package crypto implements the cryptographic identity of a synthetic
// XRPL peer.
//
// This package handles secp256k1 node keys and deterministic ECDSA
// signatures, the Base58Check node-public token encoding, RIPEMD160 node
// IDs, per-instance self-signed TLS identities, and the session-binding
// digest that ties a handshake signature to its TLS channel.
//
// Example:
//
//	keys, err := crypto.GenerateKeyPair()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Node public:", crypto.EncodeNodePublic(keys.Public()))
//	fmt.Println("Node ID:", keys.NodeID())
package crypto
