// Package handshake drives a raw TCP connection to a frame-ready XRPL
// peer link.
//
// A handshake runs in three stages: a TLS exchange with certificate
// verification disabled on both sides, derivation of the 32-byte session
// binding from the TLS channel, and an HTTP/1.1 upgrade in which each
// side proves possession of its node key by signing the binding. The
// Initiate and Respond entry points cover the two roles; both return the
// TLS stream plus an Info describing the authenticated peer.
//
// Any bytes a peer pipelines after its header block are returned in
// Info.Leftover so the frame decoder sees them first.
package handshake
