// Package protocol implements the XRPL peer wire format.
//
// A frame is a binary header followed by a protobuf payload. Uncompressed
// headers are six bytes: a 32-bit big-endian payload size whose top nibble
// must be zero, then a 16-bit big-endian message type. Compressed headers
// are ten bytes: the first byte carries the compression flag nibble
// (high bit set, algorithm bits selecting LZ4), the masked size counts the
// compressed payload, and a 32-bit big-endian uncompressed size follows
// the message type. The encoder only ever emits uncompressed frames; the
// decoder accepts both shapes.
//
// Payload codecs are hand-rolled over protowire against the reference
// node's field numbering. Unknown fields are skipped on decode; optional
// scalar fields at their zero value are omitted on encode.
package protocol
