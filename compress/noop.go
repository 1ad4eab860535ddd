package compress

// NoOpCompressor is the identity codec: Compress and Decompress both hand
// back the input unchanged. It lets a caller select "no outer
// compression" through the same Codec interface the real algorithms
// use — handy for measuring the encoder's own output size without an
// extra compression pass layered on top, or when a transport downstream
// already compresses the bytes itself.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates an identity Codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data unchanged. The result aliases data's backing
// array, so a caller that later mutates one slice mutates the other.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged, for the same reason Compress does.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
