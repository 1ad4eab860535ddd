package compress

// ZstdCompressor wraps Zstandard, the best-ratio algorithm this package
// offers. Its Compress/Decompress implementations live in zstd_cgo.go or
// zstd_pure.go, selected by the cgo build tag, since the two libraries
// behind them (valyala/gozstd and klauspost/compress/zstd) have
// incompatible APIs.
//
// Favor this codec for a stream that will be archived or shipped over a
// constrained link and decompressed rarely relative to how often it's
// written — the preamble's JSON metadata and any record batch with
// repeating keys both compress well under it.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstd Codec at the library's default level.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
