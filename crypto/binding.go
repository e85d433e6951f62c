package crypto

import (
	"crypto/sha512"
	"crypto/tls"
	"errors"
)

// BindingSize is the length of the session-binding digest signed during
// the handshake.
const BindingSize = 32

// finishedExportSize is the length of each exported keying-material value
// standing in for a TLS finished message.
const finishedExportSize = 64

// Exporter labels for the two halves of the session binding. Both sides
// export both values and pick local/peer by TLS role, so the derived
// binding is identical on each end of the connection.
const (
	clientFinishedLabel = "EXPORTER xrpl peer client finished"
	serverFinishedLabel = "EXPORTER xrpl peer server finished"
)

// ErrHandshakeIncomplete indicates a binding was requested before the TLS
// handshake finished
var ErrHandshakeIncomplete = errors.New("TLS handshake not complete")

// MixFinished folds the local and peer finished values into the 32-byte
// session binding: SHA512 each side, XOR the digests, SHA512 the result
// and keep the first half. Swapping the arguments yields the same binding.
func MixFinished(local, peer []byte) [BindingSize]byte {
	f := sha512.Sum512(local)
	pf := sha512.Sum512(peer)

	var mixed [sha512.Size]byte
	for i := range mixed {
		mixed[i] = f[i] ^ pf[i]
	}

	folded := sha512.Sum512(mixed[:])

	var binding [BindingSize]byte
	copy(binding[:], folded[:BindingSize])
	return binding
}

// SessionBinding derives the handshake binding from a completed TLS
// connection. isClient selects which exported value counts as local, so
// initiator and responder agree on the result.
func SessionBinding(cs tls.ConnectionState, isClient bool) ([BindingSize]byte, error) {
	var binding [BindingSize]byte

	if !cs.HandshakeComplete {
		return binding, ErrHandshakeIncomplete
	}

	clientPart, err := cs.ExportKeyingMaterial(clientFinishedLabel, nil, finishedExportSize)
	if err != nil {
		return binding, err
	}
	serverPart, err := cs.ExportKeyingMaterial(serverFinishedLabel, nil, finishedExportSize)
	if err != nil {
		return binding, err
	}

	if isClient {
		return MixFinished(clientPart, serverPart), nil
	}
	return MixFinished(serverPart, clientPart), nil
}
