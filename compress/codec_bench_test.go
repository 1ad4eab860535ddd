package compress

import (
	"fmt"
	"testing"
)

// benchSizes mirrors the payload sizes a single IR stream segment
// realistically spans: a handful of records up through a multi-megabyte
// archival batch.
var benchSizes = []int{1024, 16384, 262144, 1024 * 1024}

func runCodecBenchmark(b *testing.B, codec Codec, data []byte) {
	b.Run("compress", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for i := 0; i < b.N; i++ {
			if _, err := codec.Compress(data); err != nil {
				b.Fatal(err)
			}
		}
	})

	compressed, err := codec.Compress(data)
	if err != nil {
		b.Fatal(err)
	}

	b.Run("decompress", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for i := 0; i < b.N; i++ {
			if _, err := codec.Decompress(compressed); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkCodecsOnLogRecords benchmarks every codec against a repeated
// JSON-log-record payload — this package's typical input shape — across
// a range of stream sizes.
func BenchmarkCodecsOnLogRecords(b *testing.B) {
	for codecName, codec := range allCodecs() {
		b.Run(codecName, func(b *testing.B) {
			for _, size := range benchSizes {
				data := logLinePayload(size / 89) // 89 bytes per rendered line
				b.Run(fmt.Sprintf("%dKB", size/1024), func(b *testing.B) {
					runCodecBenchmark(b, codec, data)
				})
			}
		})
	}
}

// BenchmarkCodecsOnIncompressibleData benchmarks the worst case for each
// real codec: pseudo-random bytes with no repeating structure for the
// algorithm to exploit.
func BenchmarkCodecsOnIncompressibleData(b *testing.B) {
	for codecName, codec := range allCodecs() {
		if codecName == "NoOp" {
			continue
		}
		b.Run(codecName, func(b *testing.B) {
			for _, size := range benchSizes {
				data := make([]byte, size)
				for i := range data {
					data[i] = byte((i*31 + i*i*7) % 256)
				}
				b.Run(fmt.Sprintf("%dKB", size/1024), func(b *testing.B) {
					runCodecBenchmark(b, codec, data)
				})
			}
		})
	}
}
