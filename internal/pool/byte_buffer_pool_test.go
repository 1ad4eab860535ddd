package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBufferExtendOrGrow(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.ExtendOrGrow(10)
	require.Len(t, bb.Bytes(), 10)
	require.GreaterOrEqual(t, bb.Cap(), 10)
}

func TestByteBufferReset(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.MustWrite([]byte("hello"))
	require.Equal(t, 5, bb.Len())

	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.GreaterOrEqual(t, bb.Cap(), 5)
}

func TestByteBufferPoolDiscardsOversized(t *testing.T) {
	p := NewByteBufferPool(4, 8)

	bb := p.Get()
	bb.Grow(100)
	p.Put(bb)

	fresh := p.Get()
	require.Less(t, fresh.Cap(), 100)
}

func TestRecordAndStreamBuffers(t *testing.T) {
	rb := GetRecordBuffer()
	rb.MustWrite([]byte{1, 2, 3})
	PutRecordBuffer(rb)

	sb := GetStreamBuffer()
	sb.MustWrite([]byte{4, 5})
	PutStreamBuffer(sb)
}
