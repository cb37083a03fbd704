// Package cbor implements the canonical CBOR (RFC 8949) subset Cardano
// transactions require: a streaming token writer only, no decoder. Every
// token is emitted directly to the destination writer (normally a live
// BLAKE2b hash context) so that callers never hold a serialized copy of
// the structure being hashed.
package cbor

import (
	"encoding/binary"
	"errors"
	"io"
)

// MajorType is a CBOR major type (RFC 8949 §3).
type MajorType byte

const (
	Unsigned MajorType = 0
	Negative MajorType = 1
	Bytes    MajorType = 2
	Text     MajorType = 3
	Array    MajorType = 4
	Map      MajorType = 5
	Tag      MajorType = 6
	Simple   MajorType = 7
)

const (
	simpleNull         = 22
	simpleBreak        = 31
	indefiniteLength   = 31
	additionalOneByte  = 24
	additionalTwoByte  = 25
	additionalFourByte = 26
	additionalEigByte  = 27
)

// ErrNegativeOverflow is returned when a negative value's magnitude does
// not fit the CBOR negative-integer encoding (n = -(v+1), v must be >= 0).
var ErrNegativeOverflow = errors.New("cbor: value is not representable as a CBOR negative integer")

// Writer emits canonical CBOR tokens to an underlying io.Writer.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w (typically a streaming hash.Hash) in a token Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// writeHead emits the shortest canonical (major-type, argument) head per
// spec.md §4.7's length table.
func (w *Writer) writeHead(major MajorType, value uint64) error {
	head := byte(major) << 5
	switch {
	case value < 24:
		_, err := w.w.Write([]byte{head | byte(value)})
		return err
	case value < 1<<8:
		buf := [2]byte{head | additionalOneByte, byte(value)}
		_, err := w.w.Write(buf[:])
		return err
	case value < 1<<16:
		var buf [3]byte
		buf[0] = head | additionalTwoByte
		binary.BigEndian.PutUint16(buf[1:], uint16(value))
		_, err := w.w.Write(buf[:])
		return err
	case value < 1<<32:
		var buf [5]byte
		buf[0] = head | additionalFourByte
		binary.BigEndian.PutUint32(buf[1:], uint32(value))
		_, err := w.w.Write(buf[:])
		return err
	default:
		var buf [9]byte
		buf[0] = head | additionalEigByte
		binary.BigEndian.PutUint64(buf[1:], value)
		_, err := w.w.Write(buf[:])
		return err
	}
}

// WriteUnsigned emits an unsigned integer token.
func (w *Writer) WriteUnsigned(v uint64) error {
	return w.writeHead(Unsigned, v)
}

// WriteNegative emits a negative integer token for value n < 0, encoded as
// v = -(n+1). Callers pass the already-negated magnitude v (so n = -1 is
// WriteNegative(0), n = -256 is WriteNegative(255)).
func (w *Writer) WriteNegative(v uint64) error {
	return w.writeHead(Negative, v)
}

// WriteInt emits either an unsigned or a negative integer token depending
// on the sign of n, choosing the correct major type automatically.
func (w *Writer) WriteInt(n int64) error {
	if n >= 0 {
		return w.WriteUnsigned(uint64(n))
	}
	// n < 0: v = -(n+1). Guard the int64 overflow case n == math.MinInt64.
	if n == -9223372036854775808 {
		return w.WriteNegative(9223372036854775807)
	}
	return w.WriteNegative(uint64(-(n + 1)))
}

// WriteBytesHeader emits a definite-length byte-string head; the caller
// then streams exactly length bytes of content via Raw.
func (w *Writer) WriteBytesHeader(length uint64) error {
	return w.writeHead(Bytes, length)
}

// WriteBytes emits a complete byte string (header + content) in one call.
func (w *Writer) WriteBytes(data []byte) error {
	if err := w.WriteBytesHeader(uint64(len(data))); err != nil {
		return err
	}
	_, err := w.w.Write(data)
	return err
}

// WriteTextHeader emits a definite-length text-string head.
func (w *Writer) WriteTextHeader(length uint64) error {
	return w.writeHead(Text, length)
}

// WriteText emits a complete UTF-8 text string.
func (w *Writer) WriteText(s string) error {
	if err := w.WriteTextHeader(uint64(len(s))); err != nil {
		return err
	}
	_, err := w.w.Write([]byte(s))
	return err
}

// WriteArrayHeader emits a definite-length array head for n elements.
func (w *Writer) WriteArrayHeader(n uint64) error {
	return w.writeHead(Array, n)
}

// WriteIndefiniteArrayHeader opens an indefinite-length array; close it
// with WriteBreak once every element has been written.
func (w *Writer) WriteIndefiniteArrayHeader() error {
	_, err := w.w.Write([]byte{byte(Array)<<5 | indefiniteLength})
	return err
}

// WriteBreak closes an indefinite-length array opened with
// WriteIndefiniteArrayHeader.
func (w *Writer) WriteBreak() error {
	_, err := w.w.Write([]byte{byte(Simple)<<5 | simpleBreak})
	return err
}

// WriteMapHeader emits a definite-length map head for n key/value pairs.
func (w *Writer) WriteMapHeader(n uint64) error {
	return w.writeHead(Map, n)
}

// WriteTag emits a semantic tag head; the tagged value follows immediately.
func (w *Writer) WriteTag(tag uint64) error {
	return w.writeHead(Tag, tag)
}

// WriteNull emits the CBOR null simple value.
func (w *Writer) WriteNull() error {
	_, err := w.w.Write([]byte{byte(Simple)<<5 | simpleNull})
	return err
}

// Raw streams already-encoded bytes straight through, used for content
// following a *Header call (byte-string / text-string payloads) so the
// caller never has to materialize the full token in memory.
func (w *Writer) Raw(data []byte) error {
	_, err := w.w.Write(data)
	return err
}

// HeadLen returns the number of bytes writeHead(major, value) would emit,
// without writing anything. Builders use this to size a map/array ahead of
// writing its header when the count is computed rather than literal.
func HeadLen(value uint64) int {
	switch {
	case value < 24:
		return 1
	case value < 1<<8:
		return 2
	case value < 1<<16:
		return 3
	case value < 1<<32:
		return 5
	default:
		return 9
	}
}

// MapKeyFulfillsCanonicalOrdering reports whether next may legally follow
// prev as the next key in a canonical CBOR map: shorter encoded keys sort
// first, and among equal-length keys, lexicographic byte order applies.
// Equal keys are rejected, matching spec.md §4.7.
func MapKeyFulfillsCanonicalOrdering(prev, next []byte) bool {
	if len(prev) != len(next) {
		return len(prev) < len(next)
	}
	for i := range prev {
		if prev[i] != next[i] {
			return prev[i] < next[i]
		}
	}
	return false // equal keys are not a valid ordering
}
