// Package pool provides a sync.Pool-backed growable byte buffer that
// backs irbyte.Writer, so the encoder's per-record staging buffers are
// reused rather than allocated per record.
package pool

import "sync"

// Default and max-retained sizes for the two buffer tiers the codec uses:
// small scratch buffers for a single record's key/value/schema staging
// areas, and a larger tier for the producer's or consumer's whole
// in-flight stream buffer.
const (
	RecordBufferDefaultSize  = 1024 * 4   // 4KiB
	RecordBufferMaxThreshold = 1024 * 64  // 64KiB
	StreamBufferDefaultSize  = 1024 * 256 // 256KiB
	StreamBufferMaxThreshold = 1024 * 1024 * 8
)

// ByteBuffer is a growable byte slice wrapper sized for reuse from a pool.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the given default capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Reset empties the buffer but retains its capacity for reuse.
func (bb *ByteBuffer) Reset() { bb.B = bb.B[:0] }

// Len returns the number of bytes currently held.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// Cap returns the buffer's capacity.
func (bb *ByteBuffer) Cap() int { return cap(bb.B) }

// MustWrite appends data, growing the buffer if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Slice returns bb.B[start:end]. Panics on out-of-range indices.
func (bb *ByteBuffer) Slice(start, end int) []byte {
	if start < 0 || end < start || end > cap(bb.B) {
		panic("pool: Slice: invalid indices")
	}

	return bb.B[start:end]
}

// SetLength resizes the buffer to exactly n bytes. Panics if n exceeds
// capacity.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 || n > cap(bb.B) {
		panic("pool: SetLength: invalid length")
	}
	bb.B = bb.B[:n]
}

// Extend grows the buffer's length by n bytes if capacity allows it
// without reallocating, reporting whether it succeeded.
func (bb *ByteBuffer) Extend(n int) bool {
	curLen := len(bb.B)
	if cap(bb.B)-curLen < n {
		return false
	}

	bb.B = bb.B[:curLen+n]

	return true
}

// ExtendOrGrow extends the buffer by n bytes, reallocating if needed.
func (bb *ByteBuffer) ExtendOrGrow(n int) {
	if bb.Extend(n) {
		return
	}

	start := len(bb.B)
	bb.Grow(n)
	bb.B = bb.B[:start+n]
}

// Grow ensures the buffer can accept requiredBytes more bytes without a
// further reallocation. Small buffers grow by a fixed increment; larger
// ones grow by a quarter of their current capacity.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := RecordBufferDefaultSize
	if cap(bb.B) > 4*RecordBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write implements io.Writer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// ByteBufferPool pools ByteBuffers of a given default/max size to keep
// record encoding allocation-free in steady state.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool whose buffers start at defaultSize and
// are discarded (not retained) once they grow past maxThreshold.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any { return NewByteBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool, discarding it instead if it grew
// past the pool's max threshold.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

var (
	recordPool = NewByteBufferPool(RecordBufferDefaultSize, RecordBufferMaxThreshold)
	streamPool = NewByteBufferPool(StreamBufferDefaultSize, StreamBufferMaxThreshold)
)

// GetRecordBuffer retrieves a scratch buffer sized for one record's
// key/value staging area.
func GetRecordBuffer() *ByteBuffer { return recordPool.Get() }

// PutRecordBuffer returns a scratch buffer obtained from GetRecordBuffer.
func PutRecordBuffer(bb *ByteBuffer) { recordPool.Put(bb) }

// GetStreamBuffer retrieves a buffer sized for a whole in-flight stream.
func GetStreamBuffer() *ByteBuffer { return streamPool.Get() }

// PutStreamBuffer returns a buffer obtained from GetStreamBuffer.
func PutStreamBuffer(bb *ByteBuffer) { streamPool.Put(bb) }
