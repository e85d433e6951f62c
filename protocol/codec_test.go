package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/pierrec/lz4/v4"

	"github.com/opd-ai/xrplsynth/limits"
)

func TestDecoderRoundTripAllTypes(t *testing.T) {
	samples := samplePayloads()

	var stream []byte
	order := KnownTypes()
	for _, mt := range order {
		frame, err := EncodeMessage(samples[mt])
		if err != nil {
			t.Fatalf("%s: encode failed: %v", mt, err)
		}
		stream = append(stream, frame...)
	}

	var dec Decoder
	dec.Feed(stream)
	for _, mt := range order {
		msg, err := dec.Next()
		if err != nil {
			t.Fatalf("%s: Next failed: %v", mt, err)
		}
		if msg == nil {
			t.Fatalf("%s: Next returned no message with %d bytes buffered", mt, dec.Buffered())
		}
		if msg.Type != mt {
			t.Fatalf("decoded type %s, want %s", msg.Type, mt)
		}
		if !reflect.DeepEqual(msg.Payload, samples[mt]) {
			t.Errorf("%s: payload mismatch\n got %#v\nwant %#v", mt, msg.Payload, samples[mt])
		}
	}

	if msg, err := dec.Next(); msg != nil || err != nil {
		t.Errorf("drained decoder: Next = (%v, %v), want (nil, nil)", msg, err)
	}
	if dec.Buffered() != 0 {
		t.Errorf("drained decoder holds %d bytes", dec.Buffered())
	}
}

// Byte-at-a-time delivery must produce the same messages in the same order.
func TestDecoderDribble(t *testing.T) {
	sent := []Payload{
		&Ping{Kind: PingTypePing, Seq: 1},
		&Validation{Blob: filled(64, 0x01)},
		&Ping{Kind: PingTypePong, Seq: 1, PingTime: 17},
	}

	var stream []byte
	for _, p := range sent {
		frame, err := EncodeMessage(p)
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		stream = append(stream, frame...)
	}

	var dec Decoder
	var got []Payload
	for _, c := range stream {
		dec.Feed([]byte{c})
		for {
			msg, err := dec.Next()
			if err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			if msg == nil {
				break
			}
			got = append(got, msg.Payload)
		}
	}

	if len(got) != len(sent) {
		t.Fatalf("decoded %d messages, want %d", len(got), len(sent))
	}
	for i := range sent {
		if !reflect.DeepEqual(got[i], sent[i]) {
			t.Errorf("message %d mismatch: got %#v, want %#v", i, got[i], sent[i])
		}
	}
}

func TestDecoderPartialTail(t *testing.T) {
	first, err := EncodeMessage(&Ping{Kind: PingTypePing, Seq: 3})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	second, err := EncodeMessage(&Validation{Blob: filled(48, 0x20)})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var dec Decoder
	dec.Feed(first)
	dec.Feed(second[:len(second)-5])

	msg, err := dec.Next()
	if err != nil || msg == nil {
		t.Fatalf("first frame: Next = (%v, %v)", msg, err)
	}
	if msg.Type != TypePing {
		t.Fatalf("first frame type = %s, want %s", msg.Type, TypePing)
	}

	if msg, err := dec.Next(); msg != nil || err != nil {
		t.Fatalf("partial frame: Next = (%v, %v), want (nil, nil)", msg, err)
	}
	if dec.Buffered() != len(second)-5 {
		t.Errorf("Buffered = %d, want %d", dec.Buffered(), len(second)-5)
	}

	dec.Feed(second[len(second)-5:])
	msg, err = dec.Next()
	if err != nil || msg == nil {
		t.Fatalf("completed frame: Next = (%v, %v)", msg, err)
	}
	if msg.Type != TypeValidation {
		t.Errorf("completed frame type = %s, want %s", msg.Type, TypeValidation)
	}
}

// compressFrame wraps payload in a 10-byte compressed header plus an LZ4
// block, announcing announce as the inflated size.
func compressFrame(t *testing.T, mt MessageType, payload []byte, announce int) []byte {
	t.Helper()

	var c lz4.Compressor
	block := make([]byte, lz4.CompressBlockBound(len(payload)))
	n, err := c.CompressBlock(payload, block)
	if err != nil {
		t.Fatalf("CompressBlock failed: %v", err)
	}
	if n == 0 {
		t.Fatal("CompressBlock produced no output")
	}

	frame := make([]byte, limits.HeaderSizeCompressed)
	binary.BigEndian.PutUint32(frame[0:4], 0x90000000|uint32(n))
	binary.BigEndian.PutUint16(frame[4:6], uint16(mt))
	binary.BigEndian.PutUint32(frame[6:10], uint32(announce))
	return append(frame, block[:n]...)
}

func TestDecoderCompressedFrame(t *testing.T) {
	// Repetitive blob so the block genuinely compresses.
	want := &Validation{Blob: bytes.Repeat([]byte{0x42}, 256)}
	body, err := want.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	frame := compressFrame(t, TypeValidation, body, len(body))
	if len(frame) >= len(body)+limits.HeaderSizeCompressed {
		t.Fatalf("block did not compress: %d bytes for %d byte payload", len(frame), len(body))
	}

	var dec Decoder
	dec.Feed(frame)
	msg, err := dec.Next()
	if err != nil || msg == nil {
		t.Fatalf("Next = (%v, %v)", msg, err)
	}
	if msg.Type != TypeValidation {
		t.Errorf("Type = %s, want %s", msg.Type, TypeValidation)
	}
	if !bytes.Equal(msg.Raw, body) {
		t.Error("inflated bytes differ from the original payload")
	}
	if !reflect.DeepEqual(msg.Payload, want) {
		t.Errorf("payload mismatch: got %#v", msg.Payload)
	}
}

func TestDecoderCompressedErrors(t *testing.T) {
	body, err := (&Validation{Blob: bytes.Repeat([]byte{0x42}, 256)}).MarshalBinary()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var dec Decoder
	dec.Feed(compressFrame(t, TypeValidation, body, len(body)+4))
	if _, err := dec.Next(); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("inflated size overstated: Next = %v, want ErrLengthMismatch", err)
	}

	dec = Decoder{}
	dec.Feed(compressFrame(t, TypeValidation, body, len(body)-1))
	if _, err := dec.Next(); !errors.Is(err, ErrDecompression) {
		t.Errorf("inflated size understated: Next = %v, want ErrDecompression", err)
	}

	// A run of 0xFF tokens is not a valid LZ4 block.
	garbage := bytes.Repeat([]byte{0xFF}, 24)
	frame := make([]byte, limits.HeaderSizeCompressed)
	binary.BigEndian.PutUint32(frame[0:4], 0x90000000|uint32(len(garbage)))
	binary.BigEndian.PutUint16(frame[4:6], uint16(TypeValidation))
	binary.BigEndian.PutUint32(frame[6:10], 64)
	dec = Decoder{}
	dec.Feed(append(frame, garbage...))
	if _, err := dec.Next(); !errors.Is(err, ErrDecompression) {
		t.Errorf("garbage block: Next = %v, want ErrDecompression", err)
	}
}

func TestDecoderUnknownType(t *testing.T) {
	frame, err := AppendFrame(nil, MessageType(4), []byte{0x08, 0x01})
	if err != nil {
		t.Fatalf("AppendFrame failed: %v", err)
	}

	var dec Decoder
	dec.Feed(frame)
	if _, err := dec.Next(); !errors.Is(err, ErrUnknownMessageType) {
		t.Errorf("Next = %v, want ErrUnknownMessageType", err)
	}
}

func TestDecoderPayloadDecodeError(t *testing.T) {
	// A lone field-1 varint tag with no value cannot parse as a ping.
	frame, err := AppendFrame(nil, TypePing, []byte{0x08})
	if err != nil {
		t.Fatalf("AppendFrame failed: %v", err)
	}

	var dec Decoder
	dec.Feed(frame)
	if _, err := dec.Next(); !errors.Is(err, ErrPayloadDecode) {
		t.Errorf("Next = %v, want ErrPayloadDecode", err)
	}
}

func TestDecoderHeaderErrorSurfacesEarly(t *testing.T) {
	var dec Decoder
	dec.Feed([]byte{0x04})
	if _, err := dec.Next(); !errors.Is(err, ErrInvalidIndicator) {
		t.Errorf("Next = %v, want ErrInvalidIndicator", err)
	}
}
