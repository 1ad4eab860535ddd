// Package errs collects the sentinel errors returned by the IR codec.
//
// Callers compare against these with errors.Is; call sites wrap them with
// fmt.Errorf("%w: ...", errs.ErrX, detail) to attach positional context.
// The codec never logs or retries on its own — every failure surfaces here.
package errs

import "errors"

var (
	// ErrEndOfStream is returned by DecodeRecord once the terminal 0x00
	// byte has been observed. It is a normal, expected outcome — the Go
	// analogue of io.EOF — not a fault.
	ErrEndOfStream = errors.New("end of stream")

	// ErrIncompleteStream is returned when the reader is exhausted mid-record
	// or mid-value. The caller may retry once more bytes are available.
	ErrIncompleteStream = errors.New("incomplete stream")

	// ErrUnknownTag is returned when a tag byte is not in the catalog for
	// the decoder's current state.
	ErrUnknownTag = errors.New("unknown tag")

	// ErrCorrupt is returned when a tag is valid but structurally
	// inconsistent: type mismatch against the schema, duplicate schema
	// node, oversized length, or a key id past the end of the schema.
	ErrCorrupt = errors.New("corrupt stream")

	// ErrDecode is returned when the CLP string subcodec rejects a string.
	ErrDecode = errors.New("clp string decode failed")

	// ErrEncodeFailed is returned when a value is out of encodable range
	// or a record has a shape the schema tree cannot represent.
	ErrEncodeFailed = errors.New("encode failed")

	// ErrUnsupportedVersion is returned when the preamble VERSION falls
	// outside the supported semver range.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrNotReady identifies API misuse, such as decoding a record before
	// the preamble has been read. No function in this module returns it:
	// Decoder.DecodeRecord does not track whether a preamble was read, and
	// a record read from preamble bytes fails with ErrUnknownTag or
	// ErrCorrupt instead.
	ErrNotReady = errors.New("not ready")

	// ErrNoSnapshot is returned by Tree.Revert when no snapshot is held.
	ErrNoSnapshot = errors.New("no snapshot held")

	// ErrNodeNotFound is returned by Tree.Get for an out-of-range id.
	ErrNodeNotFound = errors.New("schema node not found")

	// ErrNotContainer is returned by Tree.Insert in strict mode when the
	// parent node is not Obj or Array.
	ErrNotContainer = errors.New("parent node is not a container type")

	// ErrIDOverflow is returned when a schema node id or key-id reference
	// would not fit the wire format's widest id tag (16 bits).
	ErrIDOverflow = errors.New("id exceeds encodable range")

	// ErrValueOverflow is returned when a scalar value cannot be
	// represented by any integer/string length tag in the catalog.
	ErrValueOverflow = errors.New("value exceeds encodable range")

	// ErrInvalidMagic is returned when the preamble's magic number does
	// not match a recognized variant.
	ErrInvalidMagic = errors.New("invalid magic number")

	// ErrInvalidMetadata is returned when the preamble metadata JSON is
	// malformed or missing a required key.
	ErrInvalidMetadata = errors.New("invalid preamble metadata")
)
