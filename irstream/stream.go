// Package irstream implements stream framing (spec.md §4.6, component
// C7): the preamble magic number and JSON metadata block that open a
// stream, and the single terminal byte that closes one.
package irstream

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/buger/jsonparser"

	"github.com/clpir-go/clpir/errs"
	"github.com/clpir-go/clpir/internal/semver"
	"github.com/clpir-go/clpir/irbyte"
	"github.com/clpir-go/clpir/irtag"
)

// SupportedRange is the semver range this module's decoder accepts in a
// preamble's VERSION field.
var SupportedRange = semver.Range{
	Min: semver.Version{Major: 1, Minor: 0, Patch: 0},
	Max: semver.Version{Major: 1, Minor: 999, Patch: 999},
}

// ModuleVersion is the VERSION this module's WritePreamble emits.
const ModuleVersion = "1.0.0"

// Metadata is the preamble's JSON metadata block (spec.md §4.1).
// ReferenceTimestamp is required for the four-byte magic this module
// emits; it is carried as a pointer so its absence is distinguishable
// from an explicit zero.
type Metadata struct {
	Version                   string `json:"VERSION"`
	VariablesSchemaID         string `json:"VARIABLES_SCHEMA_ID"`
	VariableEncodingMethodsID string `json:"VARIABLE_ENCODING_METHODS_ID"`
	TimestampPattern          string `json:"TIMESTAMP_PATTERN"`
	TimestampPatternSyntax    string `json:"TIMESTAMP_PATTERN_SYNTAX"`
	TZID                      string `json:"TZ_ID"`
	ReferenceTimestamp        *int64 `json:"REFERENCE_TIMESTAMP,omitempty"`
}

// requiredKeys mirrors spec.md §4.1's required-key list minus
// REFERENCE_TIMESTAMP, which WritePreamble always supplies for the
// four-byte magic but ReadPreamble checks separately so the error names
// it specifically.
var requiredKeys = []string{
	irtag.MetaVersion,
	irtag.MetaVariablesSchemaID,
	irtag.MetaVariableEncodingMethodsID,
	irtag.MetaTimestampPattern,
	irtag.MetaTimestampPatternSyntax,
	irtag.MetaTZID,
}

// WritePreamble writes the four-byte magic, EncodingJson marker, and
// length-prefixed JSON metadata block to w. referenceTimestamp is
// required: this module only ever emits the four-byte, delta-timestamp
// magic (spec.md §4.1; decided in SPEC_FULL.md §9 — the eight-byte
// legacy magic is recognized on decode only).
func WritePreamble(w io.Writer, timestampPattern, timestampPatternSyntax, tzID string, referenceTimestamp int64) error {
	meta := Metadata{
		Version:                   ModuleVersion,
		VariablesSchemaID:         clpVariablesSchemaID,
		VariableEncodingMethodsID: clpVariableEncodingMethodsID,
		TimestampPattern:          timestampPattern,
		TimestampPatternSyntax:    timestampPatternSyntax,
		TZID:                      tzID,
		ReferenceTimestamp:        &referenceTimestamp,
	}

	body, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidMetadata, err)
	}

	if _, err := w.Write(irtag.MagicFourByte[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{irtag.EncodingJson}); err != nil {
		return err
	}

	buf := irbyte.NewWriter()
	defer buf.Release()
	n := uint64(len(body))
	switch irtag.SelectLenTag(n) {
	case irtag.TagLenU8:
		buf.WriteByte(irtag.TagLenU8)
		buf.WriteUint8(uint8(n))
	case irtag.TagLenU16:
		buf.WriteByte(irtag.TagLenU16)
		buf.WriteUint16(uint16(n))
	default:
		buf.WriteByte(irtag.TagLenU32)
		buf.WriteUint32(uint32(n))
	}
	buf.WriteBytes(body)

	_, err = w.Write(buf.Bytes())
	return err
}

// clpVariablesSchemaID and clpVariableEncodingMethodsID identify the
// fixed CLP logtype-placeholder grammar this module's clpstring
// subcodec implements; they are opaque ids from the consumer's point of
// view, carried in every preamble for forward compatibility with a
// future variable schema revision.
const (
	clpVariablesSchemaID         = "clpir-go/v1"
	clpVariableEncodingMethodsID = "clpir-go/v1"
)

// WriteEndOfStream writes the single terminal 0x00 byte.
func WriteEndOfStream(w io.Writer) error {
	_, err := w.Write([]byte{irtag.TagEndOfStream})
	return err
}

// ReadPreamble reads and validates the magic number and JSON metadata
// block from r, returning the parsed Metadata. The magic may be either
// the four-byte variant this module emits or the eight-byte legacy
// variant recognized for decode compatibility (SPEC_FULL.md §9); both
// are otherwise parsed identically.
func ReadPreamble(r *irbyte.Reader) (Metadata, error) {
	if err := readMagic(r); err != nil {
		return Metadata{}, err
	}

	encoding, err := r.TryReadByte()
	if err != nil {
		return Metadata{}, err
	}
	if encoding != irtag.EncodingJson {
		return Metadata{}, fmt.Errorf("%w: unsupported preamble encoding %#x", errs.ErrInvalidMetadata, encoding)
	}

	n, err := readLength(r)
	if err != nil {
		return Metadata{}, err
	}
	body, err := r.TryReadBytes(n)
	if err != nil {
		return Metadata{}, err
	}

	meta, err := parseMetadataJSON(body)
	if err != nil {
		return Metadata{}, err
	}

	switch res := semver.Check(meta.Version, SupportedRange); res {
	case semver.Supported:
		// fall through
	default:
		return Metadata{}, fmt.Errorf("%w: VERSION %q is %s", errs.ErrUnsupportedVersion, meta.Version, res)
	}

	return meta, nil
}

func readMagic(r *irbyte.Reader) error {
	peek4, err := r.TryReadBytes(4)
	if err != nil {
		return err
	}
	if [4]byte(peek4) == irtag.MagicFourByte {
		return nil
	}
	if [4]byte(peek4) != [4]byte(irtag.MagicEightByteLegacy[:4]) {
		return fmt.Errorf("%w: %x", errs.ErrInvalidMagic, peek4)
	}

	// First four bytes match the eight-byte legacy magic's prefix;
	// consume and check the remaining four before accepting it.
	rest, err := r.TryReadBytes(4)
	if err != nil {
		return err
	}
	full := append(append([]byte{}, peek4...), rest...)
	if [8]byte(full) == irtag.MagicEightByteLegacy {
		return nil
	}
	return fmt.Errorf("%w: %x", errs.ErrInvalidMagic, full)
}

func readLength(r *irbyte.Reader) (int, error) {
	tag, err := r.TryReadByte()
	if err != nil {
		return 0, err
	}
	switch tag {
	case irtag.TagLenU8:
		v, err := r.TryReadUint8()
		return int(v), err
	case irtag.TagLenU16:
		v, err := r.TryReadUint16()
		return int(v), err
	case irtag.TagLenU32:
		v, err := r.TryReadUint32()
		return int(v), err
	default:
		return 0, fmt.Errorf("%w: expected a length-prefix tag, got %#x", errs.ErrInvalidMetadata, tag)
	}
}

// parseMetadataJSON extracts the required keys with jsonparser's
// zero-allocation ObjectEach, ignoring unknown keys per spec.md §4.1.
// REFERENCE_TIMESTAMP is required as well, whichever magic the stream
// opened with: a preamble behind the eight-byte legacy magic that lacks
// it is rejected with errs.ErrInvalidMetadata like any other.
func parseMetadataJSON(body []byte) (Metadata, error) {
	var meta Metadata
	seen := make(map[string]bool, len(requiredKeys))

	err := jsonparser.ObjectEach(body, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		switch string(key) {
		case irtag.MetaVersion:
			meta.Version = string(value)
			seen[irtag.MetaVersion] = true
		case irtag.MetaVariablesSchemaID:
			meta.VariablesSchemaID = string(value)
			seen[irtag.MetaVariablesSchemaID] = true
		case irtag.MetaVariableEncodingMethodsID:
			meta.VariableEncodingMethodsID = string(value)
			seen[irtag.MetaVariableEncodingMethodsID] = true
		case irtag.MetaTimestampPattern:
			meta.TimestampPattern = string(value)
			seen[irtag.MetaTimestampPattern] = true
		case irtag.MetaTimestampPatternSyntax:
			meta.TimestampPatternSyntax = string(value)
			seen[irtag.MetaTimestampPatternSyntax] = true
		case irtag.MetaTZID:
			meta.TZID = string(value)
			seen[irtag.MetaTZID] = true
		case irtag.MetaReferenceTimestamp:
			if dataType != jsonparser.Number {
				return fmt.Errorf("%w: REFERENCE_TIMESTAMP must be numeric", errs.ErrInvalidMetadata)
			}
			ts, err := jsonparser.ParseInt(value)
			if err != nil {
				return fmt.Errorf("%w: REFERENCE_TIMESTAMP: %v", errs.ErrInvalidMetadata, err)
			}
			meta.ReferenceTimestamp = &ts
		}
		// Unknown keys are silently ignored, per spec.md §4.1.
		return nil
	})
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", errs.ErrInvalidMetadata, err)
	}

	for _, k := range requiredKeys {
		if !seen[k] {
			return Metadata{}, fmt.Errorf("%w: missing required key %q", errs.ErrInvalidMetadata, k)
		}
	}
	if meta.ReferenceTimestamp == nil {
		return Metadata{}, fmt.Errorf("%w: missing required key %q", errs.ErrInvalidMetadata, irtag.MetaReferenceTimestamp)
	}

	return meta, nil
}
