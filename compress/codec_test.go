package compress

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// logLinePayload renders n repeated JSON-shaped log lines as the kind of
// byte stream this package actually compresses: a preamble-ish header
// followed by many structurally similar records.
func logLinePayload(n int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		fmt.Fprintf(&buf, `{"level":"INFO","service":"billing","trace_id":"t-%06d","message":"request completed"}`+"\n", i)
	}

	return buf.Bytes()
}

func allCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"LZ4":  NewLZ4Compressor(),
		"S2":   NewS2Compressor(),
		"Zstd": NewZstdCompressor(),
	}
}

func TestCompressionTypeString(t *testing.T) {
	cases := map[CompressionType]string{
		CompressionNone:       "None",
		CompressionZstd:       "Zstd",
		CompressionS2:         "S2",
		CompressionLZ4:        "LZ4",
		CompressionType(0xFF): "Unknown",
	}

	for typ, want := range cases {
		require.Equal(t, want, typ.String())
	}
}

func TestCompressionStatsCalculations(t *testing.T) {
	tests := map[string]struct {
		stats           CompressionStats
		expectedRatio   float64
		expectedSavings float64
	}{
		"good compression": {
			stats:           CompressionStats{OriginalSize: 1000, CompressedSize: 300},
			expectedRatio:   0.3,
			expectedSavings: 70.0,
		},
		"no benefit": {
			stats:           CompressionStats{OriginalSize: 500, CompressedSize: 500},
			expectedRatio:   1.0,
			expectedSavings: 0.0,
		},
		"overhead": {
			stats:           CompressionStats{OriginalSize: 100, CompressedSize: 120},
			expectedRatio:   1.2,
			expectedSavings: -20.0,
		},
		"zero original size": {
			stats:           CompressionStats{OriginalSize: 0, CompressedSize: 100},
			expectedRatio:   0.0,
			expectedSavings: 100.0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.InDelta(t, tt.expectedRatio, tt.stats.CompressionRatio(), 0.001)
			require.InDelta(t, tt.expectedSavings, tt.stats.SpaceSavings(), 0.001)
		})
	}
}

func TestGetCodecAndCreateCodec(t *testing.T) {
	for _, typ := range []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4} {
		codec, err := GetCodec(typ)
		require.NoError(t, err)
		require.NotNil(t, codec)
	}

	_, err := GetCodec(CompressionType(0xFF))
	require.Error(t, err)

	_, err = CreateCodec(CompressionType(0xFF), "record_codec")
	require.ErrorContains(t, err, "record_codec")
}

func TestNoOpCompressorAliasesInput(t *testing.T) {
	compressor := NewNoOpCompressor()

	data := []byte("hello world")
	compressed, err := compressor.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &compressed[0])

	decompressed, err := compressor.Decompress(compressed)
	require.NoError(t, err)
	require.Same(t, &compressed[0], &decompressed[0])
}

func TestNoOpCompressorNilAndEmpty(t *testing.T) {
	compressor := NewNoOpCompressor()

	compressed, err := compressor.Compress(nil)
	require.NoError(t, err)
	require.Nil(t, compressed)

	empty := []byte{}
	compressed, err = compressor.Compress(empty)
	require.NoError(t, err)
	require.Equal(t, empty, compressed)
}

// TestAllCodecsRoundTrip exercises every codec against payload shapes an
// IR stream actually produces: empty, a handful of records, and a large
// batch of near-identical records (the case real compression ratio comes
// from, per TestFullStreamRoundTrip in irstream).
func TestAllCodecsRoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"empty":        {},
		"single_byte":  {0x42},
		"few_records":  logLinePayload(3),
		"many_records": logLinePayload(500),
		"binary_noise": {0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD, 0xFC},
		"all_zero_1MB": make([]byte, 1024*1024),
	}

	for codecName, codec := range allCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for payloadName, payload := range payloads {
				t.Run(payloadName, func(t *testing.T) {
					compressed, err := codec.Compress(payload)
					require.NoError(t, err)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, payload, decompressed)
				})
			}
		})
	}
}

// TestRealCodecsCompressRepeatedRecords checks that the three
// non-identity codecs actually shrink a stream of repeated log records,
// not merely round-trip it.
func TestRealCodecsCompressRepeatedRecords(t *testing.T) {
	payload := logLinePayload(500)

	for _, codecName := range []string{"LZ4", "S2", "Zstd"} {
		t.Run(codecName, func(t *testing.T) {
			codec := allCodecs()[codecName]

			compressed, err := codec.Compress(payload)
			require.NoError(t, err)
			require.Less(t, len(compressed), len(payload)/4,
				"500 near-identical records should compress to well under a quarter of their raw size")
		})
	}
}

func TestRealCodecsRejectGarbageInput(t *testing.T) {
	garbage := [][]byte{
		{0xFF, 0xFF, 0xFF, 0xFF},
		[]byte("this is not compressed data"),
		{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
	}

	for _, codecName := range []string{"LZ4", "S2", "Zstd"} {
		t.Run(codecName, func(t *testing.T) {
			codec := allCodecs()[codecName]
			for _, input := range garbage {
				_, err := codec.Decompress(input)
				require.Error(t, err)
			}
		})
	}
}

func TestAllCodecsConcurrentUse(t *testing.T) {
	const goroutines = 20
	payload := logLinePayload(50)

	for codecName, codec := range allCodecs() {
		t.Run(codecName, func(t *testing.T) {
			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			errs := make(chan error, goroutines*2)
			for i := 0; i < goroutines; i++ {
				go func() {
					_, err := codec.Compress(payload)
					errs <- err
				}()
				go func() {
					out, err := codec.Decompress(compressed)
					if err == nil && !bytes.Equal(out, payload) {
						err = fmt.Errorf("decompressed payload mismatch")
					}
					errs <- err
				}()
			}
			for i := 0; i < goroutines*2; i++ {
				require.NoError(t, <-errs)
			}
		})
	}
}

func TestAllCodecsImplementCodec(t *testing.T) {
	for name, codec := range allCodecs() {
		t.Run(name, func(t *testing.T) {
			require.Implements(t, (*Codec)(nil), codec)
		})
	}
}
