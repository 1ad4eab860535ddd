// Package compress provides compression and decompression codecs for an
// emitted IR byte stream.
//
// A producer may compress the full byte sequence a stream writer emits
// (preamble plus records plus the end-of-stream tag) before handing it to
// a transport; a consumer decompresses before handing the bytes back to a
// stream reader. Compression never sees or changes the tag/value grammar
// itself, so it composes cleanly with any wire revision.
//
// # Supported Algorithms
//
//   - None: no compression, fastest, largest
//   - Zstd: best compression ratio, moderate speed
//   - S2: balanced compression and speed
//   - LZ4: fastest decompression, moderate compression
//
// # Architecture
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Selection Guide
//
// | Workload              | Recommended | Reason                         |
// |------------------------|-------------|---------------------------------|
// | Archival / cold storage| Zstd        | best ratio                      |
// | Network transmission   | Zstd or S2  | reduce bandwidth                |
// | Low-latency ingestion  | LZ4 or S2   | minimize added latency          |
// | CPU-constrained        | None        | no compression overhead         |
//
// # Thread Safety
//
// All codec implementations are safe for concurrent use.
//
// # Error Handling
//
// Decompression returns an error for corrupted or truncated input; all
// errors are wrapped with context.
package compress
