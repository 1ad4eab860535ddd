package irstream

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clpir-go/clpir/compress"
	"github.com/clpir-go/clpir/errs"
	"github.com/clpir-go/clpir/irbyte"
	"github.com/clpir-go/clpir/irrecord"
	"github.com/clpir-go/clpir/irschema"
	"github.com/clpir-go/clpir/irtag"
)

func TestWriteReadPreambleRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePreamble(&buf, "%Y-%m-%d %H:%M:%S", "strftime", "UTC", 1700000000000))

	require.Equal(t, irtag.MagicFourByte[:], buf.Bytes()[:4])

	meta, err := ReadPreamble(irbyte.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, ModuleVersion, meta.Version)
	require.Equal(t, "UTC", meta.TZID)
	require.NotNil(t, meta.ReferenceTimestamp)
	require.Equal(t, int64(1700000000000), *meta.ReferenceTimestamp)
}

func TestReadPreambleRecognizesLegacyMagic(t *testing.T) {
	var body bytes.Buffer
	body.WriteString(`{"VERSION":"1.0.0","VARIABLES_SCHEMA_ID":"x","VARIABLE_ENCODING_METHODS_ID":"x",` +
		`"TIMESTAMP_PATTERN":"p","TIMESTAMP_PATTERN_SYNTAX":"s","TZ_ID":"UTC","REFERENCE_TIMESTAMP":5}`)

	var stream bytes.Buffer
	stream.Write(irtag.MagicEightByteLegacy[:])
	stream.WriteByte(irtag.EncodingJson)
	stream.WriteByte(irtag.TagLenU16)
	stream.WriteByte(byte(body.Len() >> 8))
	stream.WriteByte(byte(body.Len()))
	stream.Write(body.Bytes())

	meta, err := ReadPreamble(irbyte.NewReader(stream.Bytes()))
	require.NoError(t, err)
	require.Equal(t, "1.0.0", meta.Version)
}

func TestReadPreambleRejectsUnsupportedVersion(t *testing.T) {
	body := []byte(`{"VERSION":"99.0.0","VARIABLES_SCHEMA_ID":"x","VARIABLE_ENCODING_METHODS_ID":"x",` +
		`"TIMESTAMP_PATTERN":"p","TIMESTAMP_PATTERN_SYNTAX":"s","TZ_ID":"UTC","REFERENCE_TIMESTAMP":1}`)

	var stream bytes.Buffer
	stream.Write(irtag.MagicFourByte[:])
	stream.WriteByte(irtag.EncodingJson)
	stream.WriteByte(irtag.TagLenU16)
	stream.WriteByte(byte(len(body) >> 8))
	stream.WriteByte(byte(len(body)))
	stream.Write(body)

	_, err := ReadPreamble(irbyte.NewReader(stream.Bytes()))
	require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
}

func TestReadPreambleRejectsBadMagic(t *testing.T) {
	data := append([]byte{0xde, 0xad, 0xbe, 0xef}, 0x01)
	_, err := ReadPreamble(irbyte.NewReader(data))
	require.ErrorIs(t, err, errs.ErrInvalidMagic)
}

func TestReadPreambleRejectsMissingRequiredKey(t *testing.T) {
	body := []byte(`{"VERSION":"1.0.0","VARIABLES_SCHEMA_ID":"x","VARIABLE_ENCODING_METHODS_ID":"x",` +
		`"TIMESTAMP_PATTERN":"p","TIMESTAMP_PATTERN_SYNTAX":"s","REFERENCE_TIMESTAMP":5}`) // TZ_ID missing

	var stream bytes.Buffer
	stream.Write(irtag.MagicFourByte[:])
	stream.WriteByte(irtag.EncodingJson)
	stream.WriteByte(irtag.TagLenU16)
	stream.WriteByte(byte(len(body) >> 8))
	stream.WriteByte(byte(len(body)))
	stream.Write(body)

	_, err := ReadPreamble(irbyte.NewReader(stream.Bytes()))
	require.ErrorIs(t, err, errs.ErrInvalidMetadata)
}

func TestWriteEndOfStream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEndOfStream(&buf))
	require.Equal(t, []byte{irtag.TagEndOfStream}, buf.Bytes())
}

// TestFullStreamRoundTrip exercises preamble, multiple records, and
// end-of-stream together, then demonstrates the outer compression
// envelope from SPEC_FULL.md §4: the codec's own bytes are compressed
// and decompressed by an unrelated compress.Codec, never by irstream
// itself.
func TestFullStreamRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePreamble(&buf, "%Y-%m-%d", "strftime", "UTC", 0))

	tree := irschema.New(true)
	enc, err := irrecord.NewEncoder(&buf)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		rec := irrecord.NewObject().
			Set("level", "INFO").
			Set("message", "request completed successfully in under a second")
		require.NoError(t, enc.EncodeRecord(tree, rec))
	}
	require.NoError(t, WriteEndOfStream(&buf))

	raw := buf.Bytes()

	codec := compress.NewZstdCompressor()
	compressed, err := codec.Compress(raw)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(raw), "50 near-identical records should compress well below their raw size")

	decompressed, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, raw, decompressed)

	r := irbyte.NewReader(decompressed)
	meta, err := ReadPreamble(r)
	require.NoError(t, err)
	require.Equal(t, "UTC", meta.TZID)

	dec, err := irrecord.NewDecoder(r)
	require.NoError(t, err)
	decTree := irschema.New(false)
	count := 0
	for {
		_, err := dec.DecodeRecord(decTree)
		if err != nil {
			require.ErrorIs(t, err, errs.ErrEndOfStream)
			break
		}
		count++
	}
	require.Equal(t, 50, count)
}
