package compress

import "github.com/klauspost/compress/s2"

// S2Compressor wraps klauspost/compress's S2 format, a Snappy-compatible
// codec that trades some ratio for compression speed — a middle ground
// between NoOpCompressor and ZstdCompressor for streams where producer
// CPU budget matters as much as wire size.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates an S2 Codec with the library's default block
// format.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress S2-encodes data. An empty input yields a nil result rather
// than an empty S2 frame.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress reverses Compress.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}
