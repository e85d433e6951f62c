package protocol

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// Message is one decoded frame: its registered payload plus the exact
// payload bytes after any inflation.
type Message struct {
	Type    MessageType
	Payload Payload
	Raw     []byte
}

// Decoder incrementally parses frames from a byte stream. Feed bytes in
// any chunking; Next yields complete messages in order. Any error is
// fatal to the stream and the decoder must be discarded.
type Decoder struct {
	buf []byte
}

// Feed appends stream bytes to the decode buffer.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Buffered reports how many undecoded bytes the decoder holds.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Next returns the next complete message, or (nil, nil) when more bytes
// are needed.
func (d *Decoder) Next() (*Message, error) {
	hdr, err := ParseHeader(d.buf)
	if err != nil {
		return nil, err
	}
	if hdr == nil {
		return nil, nil
	}

	total := hdr.Size + hdr.PayloadSize
	if len(d.buf) < total {
		return nil, nil
	}

	body, err := extractPayload(hdr, d.buf[hdr.Size:total])
	if err != nil {
		return nil, err
	}

	payload, ok := NewPayload(hdr.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessageType, uint16(hdr.Type))
	}
	if err := payload.UnmarshalBinary(body); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPayloadDecode, hdr.Type, err)
	}

	d.buf = d.buf[total:]
	return &Message{Type: hdr.Type, Payload: payload, Raw: body}, nil
}

// extractPayload returns the frame body ready for protobuf decoding,
// inflating LZ4 blocks and copying uncompressed bytes out of the stream
// buffer.
func extractPayload(hdr *Header, wire []byte) ([]byte, error) {
	if !hdr.Compressed {
		body := make([]byte, len(wire))
		copy(body, wire)
		return body, nil
	}

	body := make([]byte, hdr.UncompressedSize)
	n, err := lz4.UncompressBlock(wire, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	if n != hdr.UncompressedSize {
		return nil, fmt.Errorf("%w: inflated %d bytes, header says %d",
			ErrLengthMismatch, n, hdr.UncompressedSize)
	}
	return body, nil
}

// EncodeMessage renders a payload as a single uncompressed frame.
func EncodeMessage(p Payload) ([]byte, error) {
	body, err := p.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return AppendFrame(nil, p.Type(), body)
}
