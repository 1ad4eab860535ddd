package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// LZ4Compressor wraps pierrec/lz4's raw block codec, favoring
// decompression speed over ratio. It is the right choice for streams a
// consumer reads far more often than a producer writes.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// blockEncoders pools lz4.Compressor values. The encoder keeps a hash
// table sized for the block it last compressed, so reusing one across
// calls avoids re-allocating that table per record batch.
var blockEncoders = sync.Pool{
	New: func() any { return new(lz4.Compressor) },
}

// NewLZ4Compressor creates an LZ4 Codec over raw (headerless) blocks.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress LZ4-encodes data as a single raw block.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	enc := blockEncoders.Get().(*lz4.Compressor)
	defer blockEncoders.Put(enc)

	n, err := enc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// maxLZ4DecodeBuffer bounds how far Decompress will grow its scratch
// buffer before giving up; past this, a short-buffer error is treated as
// genuinely corrupt input rather than an underestimate.
const maxLZ4DecodeBuffer = 128 * 1024 * 1024

// Decompress reverses Compress. Raw LZ4 blocks carry no stored output
// size, so the decompressed length is unknown ahead of time: Decompress
// guesses a buffer 4x the input size (LZ4's typical expansion on the
// text-heavy records this codec wraps) and doubles it each time
// UncompressBlock reports the buffer was too small, up to
// maxLZ4DecodeBuffer.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	for size := len(data) * 4; size <= maxLZ4DecodeBuffer; size *= 2 {
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(data, dst)
		if err == nil {
			return dst[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, err
		}
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
