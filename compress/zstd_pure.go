//go:build !cgo

package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// newPooledZstdReader and newPooledZstdWriter back the two sync.Pools
// below. klauspost/compress/zstd documents its encoders and decoders as
// allocation-free once warmed up, so this codec keeps one of each around
// per goroutine rather than building a fresh one per stream.

func newPooledZstdReader() any {
	r, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(false),
	)
	if err != nil {
		panic(fmt.Sprintf("compress: building pooled zstd reader: %v", err))
	}

	return r
}

func newPooledZstdWriter() any {
	w, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderCRC(false),
	)
	if err != nil {
		panic(fmt.Sprintf("compress: building pooled zstd writer: %v", err))
	}

	return w
}

var (
	zstdReaders = sync.Pool{New: newPooledZstdReader}
	zstdWriters = sync.Pool{New: newPooledZstdWriter}
)

// Compress zstd-encodes data at the library's default speed/ratio
// tradeoff, borrowing an encoder from the pool instead of building one
// per call.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	w := zstdWriters.Get().(*zstd.Encoder)
	defer zstdWriters.Put(w)

	// EncodeAll carries no state across calls, so the pooled encoder is
	// safe to hand back immediately after use.
	return w.EncodeAll(data, nil), nil
}

// Decompress reverses Compress, surfacing a wrapped error for input that
// isn't a valid zstd frame (truncated, corrupted, or produced by a
// different algorithm).
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r := zstdReaders.Get().(*zstd.Decoder)
	defer zstdReaders.Put(r)

	out, err := r.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("compress: zstd decode: %w", err)
	}

	return out, nil
}
