// Package irbyte provides the byte-level read/write primitives every
// higher-level package in this module builds on: a position-tracking
// big-endian Reader over an in-memory byte slice, and a pooled-buffer
// big-endian Writer.
//
// All multi-byte values are serialized explicitly, byte by byte, rather
// than by reinterpreting struct memory with unsafe.Pointer — the wire
// format mandates a fixed big-endian layout regardless of host
// endianness, so there is nothing to gain from a platform-dependent
// shortcut here.
package irbyte

import (
	"encoding/binary"
	"math"

	"github.com/clpir-go/clpir/errs"
)

// Reader reads typed values from an in-memory byte slice, tracking its
// position for error reporting. It never blocks: every TryRead method
// either fully satisfies the request or returns an error, leaving Pos
// unchanged. A short buffer yields errs.ErrIncompleteStream;
// TryReadString and TryReadBytes also return errs.ErrCorrupt for a
// negative or oversized length.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a Reader over buf. The Reader does not copy buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current read position, for error context.
func (r *Reader) Pos() int { return r.pos }

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

// Remaining returns the unread tail of the buffer without advancing pos.
func (r *Reader) Remaining() []byte { return r.buf[r.pos:] }

func (r *Reader) require(n int) ([]byte, error) {
	if r.Len() < n {
		return nil, errs.ErrIncompleteStream
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// TryReadByte reads a single tag/raw byte.
func (r *Reader) TryReadByte() (byte, error) {
	b, err := r.require(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// PeekByte reads the next byte without advancing pos. Returns
// errs.ErrIncompleteStream if the buffer is exhausted.
func (r *Reader) PeekByte() (byte, error) {
	if r.Len() < 1 {
		return 0, errs.ErrIncompleteStream
	}
	return r.buf[r.pos], nil
}

// TryReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) TryReadUint8() (uint8, error) {
	b, err := r.require(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// TryReadUint16 reads a big-endian unsigned 16-bit integer.
func (r *Reader) TryReadUint16() (uint16, error) {
	b, err := r.require(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// TryReadUint32 reads a big-endian unsigned 32-bit integer.
func (r *Reader) TryReadUint32() (uint32, error) {
	b, err := r.require(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// TryReadUint64 reads a big-endian unsigned 64-bit integer.
func (r *Reader) TryReadUint64() (uint64, error) {
	b, err := r.require(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// TryReadInt8 reads a signed 8-bit integer.
func (r *Reader) TryReadInt8() (int8, error) {
	u, err := r.TryReadUint8()
	return int8(u), err
}

// TryReadInt16 reads a big-endian signed 16-bit integer.
func (r *Reader) TryReadInt16() (int16, error) {
	u, err := r.TryReadUint16()
	return int16(u), err
}

// TryReadInt32 reads a big-endian signed 32-bit integer.
func (r *Reader) TryReadInt32() (int32, error) {
	u, err := r.TryReadUint32()
	return int32(u), err
}

// TryReadInt64 reads a big-endian signed 64-bit integer.
func (r *Reader) TryReadInt64() (int64, error) {
	u, err := r.TryReadUint64()
	return int64(u), err
}

// TryReadFloat64 reads a big-endian IEEE-754 double.
func (r *Reader) TryReadFloat64() (float64, error) {
	u, err := r.TryReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

// maxReasonableAlloc bounds a single length-prefixed read. Length tags
// top out at a u32 (spec.md §4.1), but a value anywhere near that range
// can never be satisfied by a real record's remaining bytes and has no
// business being treated as "just needs more bytes" — spec.md §4.3
// calls this out specifically ("a string length cannot fit in memory"),
// distinct from a buffer that is merely short so far.
const maxReasonableAlloc = 1 << 28 // 256 MiB

// TryReadString reads n raw bytes and returns them as a string (a copy,
// so the returned value outlives the reader's backing slice).
func (r *Reader) TryReadString(n int) (string, error) {
	if n < 0 || n > maxReasonableAlloc {
		return "", errs.ErrCorrupt
	}
	b, err := r.require(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// TryReadBytes reads n raw bytes and returns them as a freshly allocated
// slice.
func (r *Reader) TryReadBytes(n int) ([]byte, error) {
	if n < 0 || n > maxReasonableAlloc {
		return nil, errs.ErrCorrupt
	}
	b, err := r.require(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}
