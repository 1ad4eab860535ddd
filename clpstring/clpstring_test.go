package clpstring

import (
	"testing"

	"github.com/clpir-go/clpir/irbyte"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"hello world",
		"request 1234 took 56ms",
		"user /home/alice/file.txt logged in at 9999999999",
		"repeated token req-abc123 then req-abc123 again and req-abc123 once more",
		"deadbeefcafe is a hex-looking token",
		"order 007 shipped",
		"status 000 000 padded",
		"plain 0 zero",
	}

	for _, msg := range tests {
		t.Run(msg, func(t *testing.T) {
			enc := EncodeCLPString([]byte(msg))
			dec, err := DecodeCLPString(enc)
			require.NoError(t, err)
			require.Equal(t, msg, string(dec))
		})
	}
}

// TestLeadingZeroDigitRunsAreNotIntVars guards the round-trip above more
// directly: a zero-padded digit run must not become an EncodedVars entry,
// since reconstructing it from a parsed uint64 would drop the padding.
func TestLeadingZeroDigitRunsAreNotIntVars(t *testing.T) {
	enc := EncodeCLPString([]byte("order 007 shipped"))
	require.Empty(t, enc.EncodedVars)
	require.Equal(t, [][]byte{[]byte("007")}, enc.DictVars)

	single := EncodeCLPString([]byte("plain 0 zero"))
	require.Equal(t, []uint64{0}, single.EncodedVars)
	require.Empty(t, single.DictVars)
}

func TestWireRoundTripNarrow(t *testing.T) {
	enc := EncodeCLPString([]byte("request 1234 took 56ms for user alice"))

	wide, err := EncodeVarsWide(enc.EncodedVars)
	require.NoError(t, err)
	require.False(t, wide)

	w := irbyte.NewWriter()
	defer w.Release()
	require.NoError(t, WriteEncoded(w, enc, wide))

	r := irbyte.NewReader(w.Bytes())
	got, err := ReadEncoded(r, wide)
	require.NoError(t, err)
	require.Equal(t, enc.Logtype, got.Logtype)
	require.Equal(t, enc.EncodedVars, got.EncodedVars)
	require.Equal(t, enc.DictVars, got.DictVars)

	dec, err := DecodeCLPString(got)
	require.NoError(t, err)
	require.Equal(t, "request 1234 took 56ms for user alice", string(dec))
}

func TestWireRoundTripWide(t *testing.T) {
	enc := ClpEncodedText{
		Logtype:     append([]byte{VarPlaceholder, kindIntVar}, []byte(" done")...),
		EncodedVars: []uint64{1 << 40},
	}

	wide, err := EncodeVarsWide(enc.EncodedVars)
	require.NoError(t, err)
	require.True(t, wide)

	w := irbyte.NewWriter()
	defer w.Release()
	require.NoError(t, WriteEncoded(w, enc, wide))

	r := irbyte.NewReader(w.Bytes())
	got, err := ReadEncoded(r, wide)
	require.NoError(t, err)
	require.Equal(t, enc.EncodedVars, got.EncodedVars)
}

func TestDictVarInterning(t *testing.T) {
	msg := "req-abc123 did X then req-abc123 did Y then req-abc123 did Z"
	enc := EncodeCLPString([]byte(msg))
	require.GreaterOrEqual(t, len(enc.DictVars), 3)

	w := irbyte.NewWriter()
	defer w.Release()
	require.NoError(t, WriteEncoded(w, enc, false))

	withoutInterning := 0
	for _, dv := range enc.DictVars {
		withoutInterning += 4 + len(dv)
	}
	// 12 bytes: the three u32 headers (logtype length, var count, dict count).
	require.Less(t, w.Len(), withoutInterning+len(enc.Logtype)+12,
		"interned encoding should be substantially smaller than repeating every occurrence")

	r := irbyte.NewReader(w.Bytes())
	got, err := ReadEncoded(r, false)
	require.NoError(t, err)
	require.Equal(t, enc.DictVars, got.DictVars)

	dec, err := DecodeCLPString(got)
	require.NoError(t, err)
	require.Equal(t, msg, string(dec))
}

func TestDecodeRejectsTruncatedPlaceholder(t *testing.T) {
	clp := ClpEncodedText{Logtype: []byte{VarPlaceholder}}
	_, err := DecodeCLPString(clp)
	require.Error(t, err)
}

func TestDecodeRejectsMissingVariable(t *testing.T) {
	clp := ClpEncodedText{Logtype: []byte{VarPlaceholder, kindIntVar}}
	_, err := DecodeCLPString(clp)
	require.Error(t, err)
}
