package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxMessagePayload is the largest message payload a peer will buffer
	// or emit (64 MiB). This matches the reference node's maximum message
	// size and bounds memory use per connection.
	MaxMessagePayload = 64 * 1024 * 1024

	// MaxWirePayload is the largest payload size expressible in a frame
	// header. The size field is 28 bits wide; the top nibble of the first
	// header byte carries the compression flags.
	MaxWirePayload = 0x0FFFFFFF

	// HeaderSizeUncompressed is the wire size of an uncompressed frame
	// header: 4 size bytes sharing the flag nibble, then a 2-byte type.
	HeaderSizeUncompressed = 6

	// HeaderSizeCompressed is the wire size of a compressed frame header:
	// the uncompressed layout plus a 4-byte uncompressed-size trailer.
	HeaderSizeCompressed = 10

	// MaxHandshakeBlock is the maximum size of the HTTP upgrade request or
	// response, headers included. Peers sending larger blocks are refused
	// before any cryptographic work happens.
	MaxHandshakeBlock = 8192

	// MaxIdentifier is the maximum length of the User-Agent / Server
	// identifier exchanged during the upgrade.
	MaxIdentifier = 512

	// DefaultQueueDepth is the default bound on a node's inbound message
	// queue. Delivery blocks when the queue is full; nothing is dropped.
	DefaultQueueDepth = 100

	// DefaultMaxPeers is the default cap on concurrent peer sessions.
	DefaultMaxPeers = 10
)

var (
	// ErrPayloadTooLarge indicates a payload exceeds the protocol maximum
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrBlockTooLarge indicates a handshake block exceeds MaxHandshakeBlock
	ErrBlockTooLarge = errors.New("handshake block too large")

	// ErrIdentifierTooLong indicates an identifier exceeds MaxIdentifier
	ErrIdentifierTooLong = errors.New("identifier too long")
)

// ValidatePayloadSize validates a payload length against MaxMessagePayload.
// Returns an error with context including the actual and maximum sizes.
func ValidatePayloadSize(n int) error {
	if n < 0 || n > MaxMessagePayload {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrPayloadTooLarge, n, MaxMessagePayload)
	}
	return nil
}

// ValidateHandshakeBlock validates a handshake block length against
// MaxHandshakeBlock. Returns an error with context if the block is too large.
func ValidateHandshakeBlock(n int) error {
	if n > MaxHandshakeBlock {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrBlockTooLarge, n, MaxHandshakeBlock)
	}
	return nil
}

// ValidateIdentifier validates a peer identifier against MaxIdentifier.
// Empty identifiers are allowed; the façade substitutes a default.
func ValidateIdentifier(s string) error {
	if len(s) > MaxIdentifier {
		return fmt.Errorf("%w: length %d exceeds limit %d", ErrIdentifierTooLong, len(s), MaxIdentifier)
	}
	return nil
}
