package irbyte

import (
	"encoding/binary"
	"math"

	"github.com/clpir-go/clpir/internal/pool"
)

// Writer appends typed values to a pooled ByteBuffer in the wire format's
// mandated big-endian layout. A Writer is not safe for concurrent use.
type Writer struct {
	buf *pool.ByteBuffer
}

// NewWriter creates a Writer over a freshly acquired record-scratch
// buffer. Callers own the Writer's lifecycle and must call Release when
// done with it.
func NewWriter() *Writer {
	return &Writer{buf: pool.GetRecordBuffer()}
}

// NewWriterWithBuffer creates a Writer over a caller-supplied buffer
// (e.g. the stream-tier buffer obtained from pool.GetStreamBuffer).
func NewWriterWithBuffer(buf *pool.ByteBuffer) *Writer {
	return &Writer{buf: buf}
}

// Release returns the Writer's buffer to the pool it came from. Callers
// that supplied their own buffer via NewWriterWithBuffer should not call
// Release; they own that buffer's lifecycle.
func (w *Writer) Release() {
	if w.buf != nil {
		pool.PutRecordBuffer(w.buf)
		w.buf = nil
	}
}

// Bytes returns the bytes written so far. The returned slice shares the
// Writer's backing array; it is invalidated by the next write.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// Reset empties the writer, retaining its buffer's capacity for reuse.
func (w *Writer) Reset() { w.buf.Reset() }

// WriteByte appends a single byte (tag or raw).
func (w *Writer) WriteByte(b byte) {
	w.buf.MustWrite([]byte{b})
}

// WriteBytes appends raw bytes verbatim.
func (w *Writer) WriteBytes(b []byte) {
	w.buf.MustWrite(b)
}

// WriteUint8 appends an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) {
	w.buf.MustWrite([]byte{v})
}

// WriteUint16 appends a big-endian unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	w.buf.MustWrite(tmp[:])
}

// WriteUint32 appends a big-endian unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	w.buf.MustWrite(tmp[:])
}

// WriteUint64 appends a big-endian unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	w.buf.MustWrite(tmp[:])
}

// WriteInt8 appends a signed 8-bit integer.
func (w *Writer) WriteInt8(v int8) { w.WriteUint8(uint8(v)) }

// WriteInt16 appends a big-endian signed 16-bit integer.
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }

// WriteInt32 appends a big-endian signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

// WriteInt64 appends a big-endian signed 64-bit integer.
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

// WriteFloat64 appends a big-endian IEEE-754 double.
func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}
