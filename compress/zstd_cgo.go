//go:build cgo

package compress

import "github.com/valyala/gozstd"

// Compress delegates to gozstd's cgo binding at a moderate compression
// level — a fixed middle ground between gozstd's fast and best-ratio
// presets, chosen because this codec wraps whole streams rather than
// per-record payloads where level tuning would matter more.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress reverses Compress.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
