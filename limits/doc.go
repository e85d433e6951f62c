// Package limits provides centralized size constants and validation functions
// for the XRPL peer wire protocol. This package ensures consistent size
// enforcement across all components of the synthetic peer.
//
// # Frame Size Hierarchy
//
// The package defines a hierarchy of size limits that bound different stages
// of message processing on a peer connection:
//
//   - MaxWirePayload (268435455 bytes): The largest payload length expressible
//     in a frame header. The size field is 28 bits wide; the top nibble of the
//     first header byte carries the compression flags.
//
//   - MaxMessagePayload (64MB): The largest message payload a peer will buffer
//     or emit. This matches the reference node's maximum message size and
//     bounds memory use per connection.
//
//   - MaxHandshakeBlock (8192 bytes): The maximum size of an HTTP upgrade
//     request or response, headers included. Oversized blocks are refused
//     before any cryptographic work happens.
//
//   - MaxIdentifier (512 bytes): The maximum length of the User-Agent or
//     Server identifier exchanged during the upgrade.
//
// # Header Layout
//
// Frame headers come in two shapes. HeaderSizeUncompressed (6 bytes) covers
// the common case: a 4-byte big-endian payload size sharing its top nibble
// with the flag bits, then a 2-byte message type. HeaderSizeCompressed
// (10 bytes) appends a 4-byte uncompressed-size field used to pre-size the
// decompression buffer.
//
// # Validation Functions
//
// Each validation function checks a length against its limit and returns a
// structured error with the actual and maximum sizes:
//
//	err := limits.ValidatePayloadSize(len(payload))
//	if err != nil {
//	    // Handle validation error (ErrPayloadTooLarge)
//	}
//
// # Error Types
//
// The package provides sentinel errors that wrap with context:
//
//   - ErrPayloadTooLarge: Returned when a payload exceeds MaxMessagePayload
//   - ErrBlockTooLarge: Returned when an upgrade block exceeds MaxHandshakeBlock
//   - ErrIdentifierTooLong: Returned when an identifier exceeds MaxIdentifier
//
// # Protocol Compliance
//
// The wire constants are fixed by the rippled peer protocol and must not be
// tuned: a frame advertising more than MaxWirePayload bytes cannot exist on
// the wire, and the reference node drops connections that announce payloads
// beyond its own 64MB ceiling.
//
// # Resource Considerations
//
// MaxMessagePayload bounds the memory a single connection can pin while a
// message is being reassembled. All network-received lengths should be
// validated against it before buffers are grown. DefaultQueueDepth and
// DefaultMaxPeers bound per-node memory; delivery blocks rather than drops
// when the inbound queue is full.
package limits
