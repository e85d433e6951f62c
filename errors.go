package xrplsynth

import "errors"

// Node-level errors. Handshake, codec, and session failures surface
// through the sentinels of their own packages.
var (
	// ErrShutdown indicates the node has been shut down.
	ErrShutdown = errors.New("node is shut down")

	// ErrUnknownPeer indicates no ready session exists for the address.
	ErrUnknownPeer = errors.New("unknown peer")

	// ErrAlreadyListening indicates a second StartListening call.
	ErrAlreadyListening = errors.New("already listening")

	// ErrNoIdentity indicates key generation was disabled without
	// providing a static key.
	ErrNoIdentity = errors.New("no identity configured")
)
