// Package irvalue implements the tagged-union Value type: the scalar
// payload carried by every schema-tree leaf, plus its wire encode/decode
// against irbyte and the smallest-fits tag selection in irtag.
package irvalue

import (
	"fmt"

	"github.com/clpir-go/clpir/clpstring"
	"github.com/clpir-go/clpir/errs"
	"github.com/clpir-go/clpir/irbyte"
	"github.com/clpir-go/clpir/irschema"
	"github.com/clpir-go/clpir/irtag"
)

// Kind discriminates the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindStr
	KindClpStr
)

// Value is a tagged variant over the scalar leaf types the schema tree
// can hold. Exactly one of the typed fields is meaningful, selected by
// Kind.
type Value struct {
	Kind Kind
	I    int64
	F    float64
	B    bool
	S    []byte
	Clp  clpstring.ClpEncodedText
}

// Null, Int, Float, Bool, Str, and ClpStr are constructors for each
// Value variant.
func Null() Value                     { return Value{Kind: KindNull} }
func Int(v int64) Value               { return Value{Kind: KindInt, I: v} }
func Float(v float64) Value           { return Value{Kind: KindFloat, F: v} }
func Bool(v bool) Value               { return Value{Kind: KindBool, B: v} }
func Str(v []byte) Value              { return Value{Kind: KindStr, S: v} }
func ClpStr(v clpstring.ClpEncodedText) Value { return Value{Kind: KindClpStr, Clp: v} }

// SchemaType returns the schema-tree node type this Value's kind maps to,
// per spec.md §3.2: Int→Int, Float→Float, Bool→Bool, Str/ClpStr→Str,
// Null→Obj (an Obj node used as a leaf denotes an explicit null). Array
// is not reachable from a bare Value: it is a record-level concept
// wrapping a ClpStr payload (see irrecord).
func (v Value) SchemaType() irschema.NodeType {
	switch v.Kind {
	case KindInt:
		return irschema.Int
	case KindFloat:
		return irschema.Float
	case KindBool:
		return irschema.Bool
	case KindStr, KindClpStr:
		return irschema.Str
	case KindNull:
		return irschema.Obj
	default:
		return irschema.Obj
	}
}

// Matches reports whether v's schema type is compatible with node's
// declared type, per the mapping in spec.md §3.2. typ is passed
// separately from v.SchemaType() because an Array node's leaf is a
// Value{Kind: KindClpStr}, not a Value{Kind: ...Array...} — there is no
// such kind.
func Matches(v Value, typ irschema.NodeType) bool {
	switch typ {
	case irschema.Array:
		return v.Kind == KindClpStr
	case irschema.Obj:
		return v.Kind == KindNull
	default:
		return v.SchemaType() == typ
	}
}

// Encode writes v's tag and payload to w. node carries the running
// prev_val used for integer delta encoding (spec.md §4.3); it may be nil
// for values that are not Int (Null/Float/Bool/Str/ClpStr never touch
// prev_val).
func Encode(w *irbyte.Writer, v Value, node *irschema.Node) error {
	switch v.Kind {
	case KindNull:
		w.WriteByte(irtag.TagValueNull)
		return nil

	case KindBool:
		if v.B {
			w.WriteByte(irtag.TagBoolTrue)
		} else {
			w.WriteByte(irtag.TagBoolFalse)
		}
		return nil

	case KindFloat:
		w.WriteByte(irtag.TagFloat64)
		w.WriteFloat64(v.F)
		return nil

	case KindInt:
		delta := v.I
		if node != nil {
			delta = v.I - node.PrevVal
			node.PrevVal = v.I
		}
		return encodeInt(w, delta)

	case KindStr:
		return encodeRawString(w, v.S)

	case KindClpStr:
		return encodeClpStr(w, v.Clp)

	default:
		return fmt.Errorf("%w: unknown value kind %d", errs.ErrEncodeFailed, v.Kind)
	}
}

func encodeInt(w *irbyte.Writer, delta int64) error {
	switch irtag.SelectIntTag(delta) {
	case irtag.TagInt8:
		w.WriteByte(irtag.TagInt8)
		w.WriteInt8(int8(delta))
	case irtag.TagInt16:
		w.WriteByte(irtag.TagInt16)
		w.WriteInt16(int16(delta))
	case irtag.TagInt32:
		w.WriteByte(irtag.TagInt32)
		w.WriteInt32(int32(delta))
	default:
		w.WriteByte(irtag.TagInt64)
		w.WriteInt64(delta)
	}
	return nil
}

func encodeRawString(w *irbyte.Writer, s []byte) error {
	n := uint64(len(s))
	if n > 0xffffffff {
		return fmt.Errorf("%w: string length %d exceeds u32 range", errs.ErrValueOverflow, n)
	}
	switch irtag.SelectLenTag(n) {
	case irtag.TagLenU8:
		w.WriteByte(irtag.TagLenU8)
		w.WriteUint8(uint8(n))
	case irtag.TagLenU16:
		w.WriteByte(irtag.TagLenU16)
		w.WriteUint16(uint16(n))
	default:
		w.WriteByte(irtag.TagLenU32)
		w.WriteUint32(uint32(n))
	}
	w.WriteBytes(s)
	return nil
}

func encodeClpStr(w *irbyte.Writer, clp clpstring.ClpEncodedText) error {
	wide, err := clpstring.EncodeVarsWide(clp.EncodedVars)
	if err != nil {
		return err
	}
	if wide {
		w.WriteByte(irtag.TagCLPStr8)
	} else {
		w.WriteByte(irtag.TagCLPStr4)
	}
	return clpstring.WriteEncoded(w, clp, wide)
}

// Decode reads one tag and its payload, dispatching per spec.md §4.1. It
// fails if the tag is unknown for a value position, the buffer is
// exhausted mid-payload, or (for CLP strings) the subcodec rejects the
// payload.
func Decode(r *irbyte.Reader, tag byte, node *irschema.Node) (Value, error) {
	switch tag {
	case irtag.TagValueNull:
		return Null(), nil

	case irtag.TagBoolTrue:
		return Bool(true), nil
	case irtag.TagBoolFalse:
		return Bool(false), nil

	case irtag.TagFloat64:
		f, err := r.TryReadFloat64()
		if err != nil {
			return Value{}, err
		}
		return Float(f), nil

	case irtag.TagInt8, irtag.TagInt16, irtag.TagInt32, irtag.TagInt64:
		delta, err := decodeIntPayload(r, tag)
		if err != nil {
			return Value{}, err
		}
		curr := delta
		if node != nil {
			curr = node.PrevVal + delta
			node.PrevVal = curr
		}
		return Int(curr), nil

	case irtag.TagLenU8, irtag.TagLenU16, irtag.TagLenU32:
		s, err := decodeRawStringPayload(r, tag)
		if err != nil {
			return Value{}, err
		}
		return Str(s), nil

	case irtag.TagCLPStr4, irtag.TagCLPStr8:
		wide := tag == irtag.TagCLPStr8
		clp, err := clpstring.ReadEncoded(r, wide)
		if err != nil {
			return Value{}, err
		}
		return ClpStr(clp), nil

	default:
		return Value{}, fmt.Errorf("%w: tag %#x in value position", errs.ErrUnknownTag, tag)
	}
}

func decodeIntPayload(r *irbyte.Reader, tag byte) (int64, error) {
	switch tag {
	case irtag.TagInt8:
		v, err := r.TryReadInt8()
		return int64(v), err
	case irtag.TagInt16:
		v, err := r.TryReadInt16()
		return int64(v), err
	case irtag.TagInt32:
		v, err := r.TryReadInt32()
		return int64(v), err
	default:
		return r.TryReadInt64()
	}
}

func decodeRawStringPayload(r *irbyte.Reader, lenTag byte) ([]byte, error) {
	var n uint64
	switch lenTag {
	case irtag.TagLenU8:
		v, err := r.TryReadUint8()
		if err != nil {
			return nil, err
		}
		n = uint64(v)
	case irtag.TagLenU16:
		v, err := r.TryReadUint16()
		if err != nil {
			return nil, err
		}
		n = uint64(v)
	default:
		v, err := r.TryReadUint32()
		if err != nil {
			return nil, err
		}
		n = uint64(v)
	}
	return r.TryReadBytes(int(n))
}
