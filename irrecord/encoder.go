package irrecord

import (
	"fmt"
	"io"

	"github.com/clpir-go/clpir/clpstring"
	"github.com/clpir-go/clpir/errs"
	"github.com/clpir-go/clpir/internal/options"
	"github.com/clpir-go/clpir/irbyte"
	"github.com/clpir-go/clpir/irschema"
	"github.com/clpir-go/clpir/irtag"
	"github.com/clpir-go/clpir/irvalue"
)

// Encoder implements the record encoder (spec.md §4.4, component C5): it
// walks a Record depth-first, grows the caller's schema tree in-band, and
// writes the resulting schema-announcement/key/value bytes to w.
//
// An Encoder is not safe for concurrent use; it owns no schema tree of its
// own — callers pass the same *irschema.Tree to every EncodeRecord call
// across a stream's lifetime.
type Encoder struct {
	w io.Writer

	// clpThreshold, when > 0, causes string leaf values (not arrays,
	// which are always CLP-encoded) of at least this length to be
	// CLP-encoded rather than written as raw length-prefixed strings.
	// Zero disables the behavior.
	clpThreshold int
}

// EncoderOption configures an Encoder at construction time.
type EncoderOption = options.Option[*Encoder]

// WithCLPStringThreshold enables CLP logtype-string encoding (spec.md
// §4.1's 0x57/0x58 tags) for any string leaf value at least n bytes long,
// instead of the raw length-prefixed string tags. Arrays always go through
// the CLP subcodec regardless of this setting (spec.md §4.4 step e). n<=0
// disables the behavior, which is the default.
func WithCLPStringThreshold(n int) EncoderOption {
	return options.NoError(func(e *Encoder) { e.clpThreshold = n })
}

// NewEncoder creates an Encoder that writes to w.
func NewEncoder(w io.Writer, opts ...EncoderOption) (*Encoder, error) {
	e := &Encoder{w: w}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}
	return e, nil
}

// EncodeRecord encodes rec against tree and writes it to the Encoder's
// destination, per the algorithm in spec.md §4.4:
//
//  1. Snapshot tree.
//  2. DFS-walk rec, growing tree via TryInsert and staging key ids and
//     values into separate buffers.
//  3. On success, emit schema announcements for newly inserted nodes,
//     then the key buffer, then the value buffer, then the record
//     terminator.
//  4. On failure, revert tree to the pre-call snapshot and return the
//     error wrapped in errs.ErrEncodeFailed.
func (e *Encoder) EncodeRecord(tree *irschema.Tree, rec *Object) error {
	tree.Snapshot()

	keyBuf := irbyte.NewWriter()
	defer keyBuf.Release()
	valBuf := irbyte.NewWriter()
	defer valBuf.Release()

	var inserted []uint32
	if err := e.walkObject(tree, irschema.RootID, rec, keyBuf, valBuf, &inserted); err != nil {
		_ = tree.Revert()
		return fmt.Errorf("%w: %v", errs.ErrEncodeFailed, err)
	}

	for _, id := range inserted {
		node, err := tree.Get(id)
		if err != nil {
			_ = tree.Revert()
			return fmt.Errorf("%w: %v", errs.ErrEncodeFailed, err)
		}
		if err := writeSchemaAnnouncement(e.w, node); err != nil {
			_ = tree.Revert()
			return fmt.Errorf("%w: %v", errs.ErrEncodeFailed, err)
		}
	}

	if keyBuf.Len() == 0 {
		if _, err := e.w.Write([]byte{irtag.TagValueEmpty}); err != nil {
			_ = tree.Revert()
			return err
		}
	} else {
		if _, err := e.w.Write(keyBuf.Bytes()); err != nil {
			_ = tree.Revert()
			return err
		}
		if _, err := e.w.Write(valBuf.Bytes()); err != nil {
			_ = tree.Revert()
			return err
		}
	}

	_, err := e.w.Write([]byte{irtag.TagKVDelim})
	return err
}

// walkObject visits obj's entries in insertion order under parentID,
// growing tree and staging key ids / values. Only leaf entries — scalars,
// explicit nulls, empty containers, and arrays — get a key id and value
// pair; a non-empty nested Object is not itself staged as a value, it is
// recursed into so its own children emit their own key ids with
// parentID set to the nested Object's schema node id. This is what lets
// the decoder reconstruct intermediate Obj nodes purely from parent-id
// chains (spec.md §4.5 step 5) without them ever appearing in the wire
// key list.
func (e *Encoder) walkObject(tree *irschema.Tree, parentID uint32, obj *Object, keyBuf, valBuf *irbyte.Writer, inserted *[]uint32) error {
	for _, key := range obj.Keys() {
		val, _ := obj.Get(key)

		typ, err := schemaTypeOf(val)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}

		id, wasInserted, err := tree.TryInsert(parentID, key, typ)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		if wasInserted {
			*inserted = append(*inserted, id)
		}

		switch v := val.(type) {
		case *Object:
			if v.Len() == 0 {
				if err := emitKeyID(keyBuf, id); err != nil {
					return err
				}
				valBuf.WriteByte(irtag.TagEmptyObj)
				continue
			}
			if err := e.walkObject(tree, id, v, keyBuf, valBuf, inserted); err != nil {
				return err
			}

		case Array:
			if err := emitKeyID(keyBuf, id); err != nil {
				return err
			}
			if len(v) == 0 {
				valBuf.WriteByte(irtag.TagEmptyArray)
				continue
			}
			if err := encodeArrayValue(valBuf, v); err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}

		default:
			if err := emitKeyID(keyBuf, id); err != nil {
				return err
			}
			node, err := tree.Get(id)
			if err != nil {
				return err
			}
			iv, err := e.toValue(val)
			if err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
			if err := irvalue.Encode(valBuf, iv, node); err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
		}
	}
	return nil
}

// toValue converts a scalar Go value (nil, int64, float64, bool, string)
// into an irvalue.Value, applying the Encoder's CLP string threshold to
// strings.
func (e *Encoder) toValue(v any) (irvalue.Value, error) {
	switch x := v.(type) {
	case nil:
		return irvalue.Null(), nil
	case bool:
		return irvalue.Bool(x), nil
	case int64:
		return irvalue.Int(x), nil
	case float64:
		return irvalue.Float(x), nil
	case string:
		if e.clpThreshold > 0 && len(x) >= e.clpThreshold {
			return irvalue.ClpStr(clpstring.EncodeCLPString([]byte(x))), nil
		}
		return irvalue.Str([]byte(x)), nil
	default:
		return irvalue.Value{}, fmt.Errorf("%w: unsupported scalar type %T", errs.ErrEncodeFailed, v)
	}
}

// schemaTypeOf maps a record value's Go type to the schema-tree node
// type it must occupy, per spec.md §3.2.
func schemaTypeOf(v any) (irschema.NodeType, error) {
	switch v.(type) {
	case nil:
		return irschema.Obj, nil
	case int64:
		return irschema.Int, nil
	case float64:
		return irschema.Float, nil
	case bool:
		return irschema.Bool, nil
	case string:
		return irschema.Str, nil
	case *Object:
		return irschema.Obj, nil
	case Array:
		return irschema.Array, nil
	default:
		return 0, fmt.Errorf("%w: unsupported record value type %T", errs.ErrEncodeFailed, v)
	}
}

// emitKeyID appends a key-id reference tag plus value for id to keyBuf,
// selecting the narrowest tag per spec.md §4.1. Ids that do not fit the
// widest (u16) key-id tag fail the encode.
func emitKeyID(keyBuf *irbyte.Writer, id uint32) error {
	tag, ok := irtag.SelectKeyIDTag(id)
	if !ok {
		return fmt.Errorf("%w: key id %d exceeds u16 range", errs.ErrIDOverflow, id)
	}
	keyBuf.WriteByte(tag)
	if tag == irtag.TagKeyIDU8 {
		keyBuf.WriteUint8(uint8(id))
	} else {
		keyBuf.WriteUint16(uint16(id))
	}
	return nil
}

// writeSchemaAnnouncement writes node's announcement — type tag, then
// parent-id tag+value, then name-length tag+value, then name bytes — to
// w. The type tag comes first because that is the byte the decoder's
// top-level read loop inspects to recognize a schema announcement at all
// (spec.md §4.5 step 1); everything after it is simply consumed.
func writeSchemaAnnouncement(w io.Writer, node *irschema.Node) error {
	buf := irbyte.NewWriter()
	defer buf.Release()

	buf.WriteByte(typeTag(node.Type))

	ptag, ok := irtag.SelectParentIDTag(node.ParentID)
	if !ok {
		return fmt.Errorf("%w: parent id %d exceeds u16 range", errs.ErrIDOverflow, node.ParentID)
	}
	buf.WriteByte(ptag)
	if ptag == irtag.TagParentIDU8 {
		buf.WriteUint8(uint8(node.ParentID))
	} else {
		buf.WriteUint16(uint16(node.ParentID))
	}

	nameLen := uint32(len(node.KeyName))
	ntag, ok := irtag.SelectNameLenTag(nameLen)
	if !ok {
		return fmt.Errorf("%w: key name %q exceeds u16 length", errs.ErrValueOverflow, node.KeyName)
	}
	buf.WriteByte(ntag)
	if ntag == irtag.TagNameLenU8 {
		buf.WriteUint8(uint8(nameLen))
	} else {
		buf.WriteUint16(uint16(nameLen))
	}
	buf.WriteBytes([]byte(node.KeyName))

	_, err := w.Write(buf.Bytes())
	return err
}

func typeTag(t irschema.NodeType) byte {
	switch t {
	case irschema.Int:
		return irtag.TagTypeInt
	case irschema.Float:
		return irtag.TagTypeFloat
	case irschema.Bool:
		return irtag.TagTypeBool
	case irschema.Str:
		return irtag.TagTypeStr
	case irschema.Array:
		return irtag.TagTypeArray
	default:
		return irtag.TagTypeObj
	}
}

// encodeArrayValue renders arr as a compact JSON-like string (the only
// shape the schema tree does not track per-element; spec.md §4.4 step e)
// and writes it between ArrayBegin/ArrayEnd markers as a single CLP
// string value.
func encodeArrayValue(valBuf *irbyte.Writer, arr Array) error {
	s, err := renderJSON(arr)
	if err != nil {
		return err
	}
	clp := clpstring.EncodeCLPString([]byte(s))
	valBuf.WriteByte(irtag.TagArrayBegin)
	if err := irvalue.Encode(valBuf, irvalue.ClpStr(clp), nil); err != nil {
		return err
	}
	valBuf.WriteByte(irtag.TagArrayEnd)
	return nil
}
