package handshake

import "errors"

// Handshake failures. All of them are fatal to the connection; oversized
// header blocks and identifiers surface the limits package sentinels.
var (
	// ErrTLSHandshake indicates the TLS exchange itself failed
	ErrTLSHandshake = errors.New("tls handshake failed")

	// ErrHTTPParse indicates a malformed request or status line
	ErrHTTPParse = errors.New("malformed http header block")

	// ErrMissingHeader indicates a required upgrade header was absent
	ErrMissingHeader = errors.New("missing expected header")

	// ErrBadUpgrade indicates the peer's upgrade exchange was not the
	// expected 101 switch
	ErrBadUpgrade = errors.New("invalid upgrade exchange")

	// ErrProtocolMismatch indicates no shared XRPL protocol version
	ErrProtocolMismatch = errors.New("no common protocol version")

	// ErrBadRole indicates the peer connected as something other than Peer
	ErrBadRole = errors.New("unexpected Connect-As role")

	// ErrSignature indicates the session signature did not verify
	ErrSignature = errors.New("session signature verification failed")

	// ErrNetworkMismatch indicates the peer runs on a different network
	ErrNetworkMismatch = errors.New("network id mismatch")
)
