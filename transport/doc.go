// Package transport runs the per-peer session machinery: one reader
// feeding the frame decoder, one writer draining a FIFO send queue, and
// a small state machine from TCP establishment through handshake to
// close.
//
// Sessions deliver decoded messages to an owner-provided inbound
// channel and never drop traffic; delivery blocks while the owner is
// behind. Raw sessions skip the handshake entirely so a caller can push
// arbitrary bytes at a peer and watch how it reacts.
package transport
