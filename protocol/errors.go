package protocol

import "errors"

var (
	// ErrInvalidIndicator indicates a first header byte that matches
	// neither the uncompressed nor the compressed layout
	ErrInvalidIndicator = errors.New("invalid compression indicator")

	// ErrProtocolFlag indicates reserved header flag bits set on a
	// compressed frame
	ErrProtocolFlag = errors.New("reserved compression flag bits set")

	// ErrUnsupportedCompression indicates a compression algorithm other
	// than LZ4
	ErrUnsupportedCompression = errors.New("unsupported compression algorithm")

	// ErrDecompression indicates an LZ4 payload that failed to inflate
	ErrDecompression = errors.New("payload decompression failed")

	// ErrLengthMismatch indicates an inflated payload whose size differs
	// from the size announced in the header
	ErrLengthMismatch = errors.New("decompressed length mismatch")

	// ErrUnknownMessageType indicates a frame whose type is not in the
	// registry
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrPayloadDecode indicates a payload that failed protobuf decoding
	ErrPayloadDecode = errors.New("payload decode failed")
)
