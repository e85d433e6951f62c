package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/opd-ai/xrplsynth/limits"
)

const (
	// compressedFlag marks a compressed frame in the first header byte.
	compressedFlag = 0x80

	// reservedFlagMask covers the two flag bits that must stay zero on
	// compressed frames.
	reservedFlagMask = 0x0C

	// algorithmMask extracts the compression nibble from the first byte.
	algorithmMask = 0xF0

	// algorithmLZ4 is the only compression nibble the protocol defines.
	algorithmLZ4 = 0x90

	// payloadSizeMask strips the flag nibble from the 32-bit size word.
	payloadSizeMask = 0x0FFFFFFF

	// maxUncompressedPayload is the largest payload an uncompressed frame
	// can announce: the first size byte must keep bits 0xFC clear.
	maxUncompressedPayload = 0x03FFFFFF
)

// Header describes one frame on the wire.
type Header struct {
	// Type is the message type carried by the frame.
	Type MessageType

	// PayloadSize counts the payload bytes that follow the header.
	PayloadSize int

	// UncompressedSize is the payload size after inflation. It equals
	// PayloadSize for uncompressed frames.
	UncompressedSize int

	// Compressed reports whether the payload is an LZ4 block.
	Compressed bool

	// Size is the header's own length on the wire, 6 or 10 bytes.
	Size int
}

// ParseHeader reads a frame header from the front of buf. It returns
// (nil, nil) when buf does not yet hold a complete header; flag errors
// surface as soon as the first byte is available.
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) == 0 {
		return nil, nil
	}

	b0 := buf[0]
	if b0&compressedFlag != 0 {
		return parseCompressedHeader(buf, b0)
	}
	if b0&0xFC != 0 {
		return nil, fmt.Errorf("%w: first byte 0x%02X", ErrInvalidIndicator, b0)
	}
	if len(buf) < limits.HeaderSizeUncompressed {
		return nil, nil
	}

	payload := int(binary.BigEndian.Uint32(buf[0:4]))
	return &Header{
		Type:             MessageType(binary.BigEndian.Uint16(buf[4:6])),
		PayloadSize:      payload,
		UncompressedSize: payload,
		Size:             limits.HeaderSizeUncompressed,
	}, nil
}

// parseCompressedHeader validates the flag nibble and reads the 10-byte
// compressed layout.
func parseCompressedHeader(buf []byte, b0 byte) (*Header, error) {
	if b0&reservedFlagMask != 0 {
		return nil, fmt.Errorf("%w: first byte 0x%02X", ErrProtocolFlag, b0)
	}
	if b0&algorithmMask != algorithmLZ4 {
		return nil, fmt.Errorf("%w: algorithm nibble 0x%02X", ErrUnsupportedCompression, b0&algorithmMask)
	}
	if len(buf) < limits.HeaderSizeCompressed {
		return nil, nil
	}

	payload := int(binary.BigEndian.Uint32(buf[0:4]) & payloadSizeMask)
	uncompressed := int(binary.BigEndian.Uint32(buf[6:10]))
	if err := limits.ValidatePayloadSize(payload); err != nil {
		return nil, err
	}
	if err := limits.ValidatePayloadSize(uncompressed); err != nil {
		return nil, err
	}

	return &Header{
		Type:             MessageType(binary.BigEndian.Uint16(buf[4:6])),
		PayloadSize:      payload,
		UncompressedSize: uncompressed,
		Compressed:       true,
		Size:             limits.HeaderSizeCompressed,
	}, nil
}

// AppendFrame appends an uncompressed frame carrying payload to dst.
func AppendFrame(dst []byte, mt MessageType, payload []byte) ([]byte, error) {
	if len(payload) > maxUncompressedPayload {
		return nil, fmt.Errorf("%w: payload size %d exceeds frame limit %d",
			limits.ErrPayloadTooLarge, len(payload), maxUncompressedPayload)
	}

	var header [limits.HeaderSizeUncompressed]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(len(payload)))
	binary.BigEndian.PutUint16(header[4:6], uint16(mt))

	dst = append(dst, header[:]...)
	return append(dst, payload...), nil
}
