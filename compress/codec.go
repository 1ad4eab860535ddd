package compress

import "fmt"

// CompressionType identifies an outer-stream compression algorithm
// applied on top of an already-encoded IR byte stream.
//
// Compression in this package is strictly an outer-envelope concern: it
// never touches the tag/value grammar emitted by irrecord or irstream. A
// producer may compress the bytes a stream writer already emitted before
// handing them to a transport, and a consumer decompresses before handing
// the bytes back to a stream reader.
type CompressionType uint8

const (
	// CompressionNone disables compression.
	CompressionNone CompressionType = 0x1
	// CompressionZstd selects Zstandard.
	CompressionZstd CompressionType = 0x2
	// CompressionS2 selects S2 (a Snappy-compatible format).
	CompressionS2 CompressionType = 0x3
	// CompressionLZ4 selects LZ4.
	CompressionLZ4 CompressionType = 0x4
)

// String returns a human-readable name for the compression type.
func (t CompressionType) String() string {
	switch t {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Compressor compresses an already-encoded IR byte stream.
//
// The bytes handed to Compress are typically a whole stream segment —
// preamble plus one or more records — rather than an individual field:
// the preamble's JSON metadata and repeated record key/tag sequences are
// what most of these algorithms find to chew on. CLP-encoded string
// values are already partially compacted by the time they reach here, so
// further gains mostly come from cross-record repetition rather than
// from compressing any single value harder.
type Compressor interface {
	// Compress returns a compressed copy of data. data itself is left
	// unmodified. Every codec except NoOpCompressor returns a newly
	// allocated slice; NoOpCompressor returns data itself.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor's output.
//
// Implementations must reject input that doesn't match their own
// algorithm's framing rather than silently returning garbage; see each
// concrete type's Decompress for what counts as invalid input.
type Decompressor interface {
	// Decompress returns the original, uncompressed data. data itself is
	// left unmodified. Every codec except NoOpCompressor returns a newly
	// allocated slice; NoOpCompressor returns data itself.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines Compressor and Decompressor. Every concrete type in
// this package — NoOpCompressor, ZstdCompressor, S2Compressor,
// LZ4Compressor — implements it, so callers can hold a single Codec
// value without caring which algorithm backs it.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats summarizes one compress (or decompress) operation,
// for callers that want to log or export compression effectiveness
// rather than just use the result.
type CompressionStats struct {
	Algorithm           CompressionType
	OriginalSize        int64
	CompressedSize      int64
	CompressionTimeNs   int64
	DecompressionTimeNs int64
}

// CompressionRatio returns CompressedSize/OriginalSize. Values below 1.0
// indicate the data shrank; 1.0 means no change; above 1.0 means the
// "compressed" form grew, which can happen on tiny or already-dense
// inputs. Returns 0 if OriginalSize is 0.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the percentage of bytes saved, i.e.
// (1 - CompressionRatio()) * 100. Negative values indicate the
// compressed form was larger than the original.
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// builtinCodecs backs GetCodec with one shared instance per algorithm;
// every codec type here is stateless and safe to share across callers.
var builtinCodecs = map[CompressionType]Codec{
	CompressionNone: NewNoOpCompressor(),
	CompressionZstd: NewZstdCompressor(),
	CompressionS2:   NewS2Compressor(),
	CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in Codec for compressionType.
func GetCodec(compressionType CompressionType) (Codec, error) {
	codec, ok := builtinCodecs[compressionType]
	if !ok {
		return nil, fmt.Errorf("compress: unsupported compression type: %s", compressionType)
	}

	return codec, nil
}

// CreateCodec is GetCodec with a caller-supplied label folded into the
// error, for call sites (e.g. a config loader) that want to say which
// configuration field held the bad value.
func CreateCodec(compressionType CompressionType, target string) (Codec, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, fmt.Errorf("compress: invalid %s compression: %s", target, compressionType)
	}

	return codec, nil
}
