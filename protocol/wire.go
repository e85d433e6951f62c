package protocol

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Append helpers for the hand-rolled payload codecs. Optional scalar
// fields are appended through the *IfSet variants, which skip zero values.

func appendUint32(b []byte, num protowire.Number, v uint32) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendUint32IfSet(b []byte, num protowire.Number, v uint32) []byte {
	if v == 0 {
		return b
	}
	return appendUint32(b, num, v)
}

func appendUint64(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendUint64IfSet(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	return appendUint64(b, num, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	if v {
		return protowire.AppendVarint(b, 1)
	}
	return protowire.AppendVarint(b, 0)
}

func appendBoolIfSet(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendBool(b, num, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendBytesIfSet(b []byte, num protowire.Number, v []byte) []byte {
	if v == nil {
		return b
	}
	return appendBytes(b, num, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendStringIfSet(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	return appendString(b, num, v)
}

// readVarint consumes a varint field value and returns the remainder.
func readVarint(b []byte) (uint64, []byte, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, nil, protowire.ParseError(n)
	}
	return v, b[n:], nil
}

// readBytes consumes a length-delimited field value. The value is copied
// so decoded payloads never alias the decoder's stream buffer.
func readBytes(b []byte) ([]byte, []byte, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, nil, protowire.ParseError(n)
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, b[n:], nil
}

// readString consumes a length-delimited field value as a string.
func readString(b []byte) (string, []byte, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return "", nil, protowire.ParseError(n)
	}
	return string(v), b[n:], nil
}

// skipField consumes a field value of any wire type. Unknown fields and
// known fields with an unexpected wire type both pass through here.
func skipField(b []byte, num protowire.Number, typ protowire.Type) ([]byte, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	return b[n:], nil
}
