package irrecord

import (
	"fmt"

	"github.com/clpir-go/clpir/clpstring"
	"github.com/clpir-go/clpir/errs"
	"github.com/clpir-go/clpir/internal/options"
	"github.com/clpir-go/clpir/irbyte"
	"github.com/clpir-go/clpir/irschema"
	"github.com/clpir-go/clpir/irtag"
	"github.com/clpir-go/clpir/irvalue"
)

// Decoder implements the record decoder (spec.md §4.5, component C6): it
// consumes bytes from r, grows the caller's schema tree to mirror the
// producer's, and reconstructs each record.
//
// A Decoder is not safe for concurrent use. On a mid-record failure the
// schema tree is left in whatever partially-grown state the failure was
// reached in — spec.md §7 requires the caller to discard the decoder
// rather than attempt to resume.
type Decoder struct {
	r *irbyte.Reader
}

// DecoderOption configures a Decoder at construction time. Reserved for
// future guards (max string length, max schema size); none are defined
// yet.
type DecoderOption = options.Option[*Decoder]

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r *irbyte.Reader, opts ...DecoderOption) (*Decoder, error) {
	d := &Decoder{r: r}
	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}
	return d, nil
}

// DecodeRecord reads one record from the Decoder's reader, growing tree
// as schema-node announcements are encountered, per spec.md §4.5's state
// machine: ExpectSchemaOrKey -> ExpectMoreKeys -> ExpectValues -> Done.
//
// Returns errs.ErrEndOfStream once the terminal 0x00 byte is observed —
// this is a normal, expected outcome, not a fault.
func (d *Decoder) DecodeRecord(tree *irschema.Tree) (*Object, error) {
	for {
		tag, err := d.r.TryReadByte()
		if err != nil {
			return nil, err
		}

		if tag == irtag.TagEndOfStream {
			return nil, errs.ErrEndOfStream
		}

		if typ, ok := parseTypeTag(tag); ok {
			if err := d.readSchemaAnnouncement(tree, typ); err != nil {
				return nil, err
			}
			continue
		}

		return d.decodeRecordBody(tree, tag)
	}
}

// readSchemaAnnouncement consumes the parent-id, name-length, and name
// bytes that follow an already-read type tag, then inserts the node into
// tree. A node matching (parentID, name, typ) that already exists is a
// Corrupt stream: the producer never re-announces a node.
func (d *Decoder) readSchemaAnnouncement(tree *irschema.Tree, typ irschema.NodeType) error {
	parentID, err := d.readParentID()
	if err != nil {
		return err
	}
	name, err := d.readSchemaName()
	if err != nil {
		return err
	}

	if _, ok := tree.Lookup(parentID, name, typ); ok {
		return fmt.Errorf("%w: duplicate schema node (parent=%d name=%q type=%s)", errs.ErrCorrupt, parentID, name, typ)
	}

	_, err = tree.Insert(parentID, name, typ)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrCorrupt, err)
	}
	return nil
}

func (d *Decoder) readParentID() (uint32, error) {
	tag, err := d.r.TryReadByte()
	if err != nil {
		return 0, err
	}
	switch tag {
	case irtag.TagParentIDU8:
		v, err := d.r.TryReadUint8()
		return uint32(v), err
	case irtag.TagParentIDU16:
		v, err := d.r.TryReadUint16()
		return uint32(v), err
	default:
		return 0, unexpectedTag("parent-id", tag)
	}
}

func (d *Decoder) readSchemaName() (string, error) {
	tag, err := d.r.TryReadByte()
	if err != nil {
		return "", err
	}
	var n int
	switch tag {
	case irtag.TagNameLenU8:
		v, err := d.r.TryReadUint8()
		if err != nil {
			return "", err
		}
		n = int(v)
	case irtag.TagNameLenU16:
		v, err := d.r.TryReadUint16()
		if err != nil {
			return "", err
		}
		n = int(v)
	default:
		return "", unexpectedTag("name-length", tag)
	}
	return d.r.TryReadString(n)
}

func parseTypeTag(tag byte) (irschema.NodeType, bool) {
	switch tag {
	case irtag.TagTypeInt:
		return irschema.Int, true
	case irtag.TagTypeFloat:
		return irschema.Float, true
	case irtag.TagTypeBool:
		return irschema.Bool, true
	case irtag.TagTypeStr:
		return irschema.Str, true
	case irtag.TagTypeArray:
		return irschema.Array, true
	case irtag.TagTypeObj:
		return irschema.Obj, true
	default:
		return 0, false
	}
}

// decodeRecordBody parses the key-id list starting with firstTag (already
// read by DecodeRecord), then the value for each id, then the record
// terminator, and reconstructs the output record.
func (d *Decoder) decodeRecordBody(tree *irschema.Tree, firstTag byte) (*Object, error) {
	var ids []uint32

	tag := firstTag
	for tag == irtag.TagKeyIDU8 || tag == irtag.TagKeyIDU16 {
		id, err := d.readKeyID(tag)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)

		tag, err = d.r.TryReadByte()
		if err != nil {
			return nil, err
		}
	}

	var leaves []any
	if len(ids) == 0 {
		if tag != irtag.TagValueEmpty {
			return nil, unexpectedTag("ValueEmpty", tag)
		}
	} else {
		leaves = make([]any, len(ids))
		for i, id := range ids {
			node, err := tree.Get(id)
			if err != nil {
				return nil, fmt.Errorf("%w: key id %d past end of schema", errs.ErrCorrupt, id)
			}

			curTag := tag
			if i > 0 {
				curTag, err = d.r.TryReadByte()
				if err != nil {
					return nil, err
				}
			}

			leaf, err := d.decodeLeafValue(curTag, node)
			if err != nil {
				return nil, err
			}
			leaves[i] = leaf
		}
	}

	delimTag, err := d.r.TryReadByte()
	if err != nil {
		return nil, err
	}
	if delimTag != irtag.TagKVDelim {
		return nil, unexpectedTag("record delimiter", delimTag)
	}

	return d.reconstruct(tree, ids, leaves)
}

func (d *Decoder) readKeyID(tag byte) (uint32, error) {
	switch tag {
	case irtag.TagKeyIDU8:
		v, err := d.r.TryReadUint8()
		return uint32(v), err
	case irtag.TagKeyIDU16:
		v, err := d.r.TryReadUint16()
		return uint32(v), err
	default:
		return 0, unexpectedTag("key id", tag)
	}
}

// decodeLeafValue decodes the value carried by one key id, whose schema
// node is node. It returns a plain Go value suitable for Object.Set: nil,
// bool, int64, float64, string, Array, or an empty *Object.
func (d *Decoder) decodeLeafValue(tag byte, node *irschema.Node) (any, error) {
	switch tag {
	case irtag.TagEmptyObj:
		if node.Type != irschema.Obj {
			return nil, fmt.Errorf("%w: EmptyObj marker under non-Obj schema node %d", errs.ErrCorrupt, node.ID)
		}
		return NewObject(), nil

	case irtag.TagEmptyArray:
		if node.Type != irschema.Array {
			return nil, fmt.Errorf("%w: EmptyArray marker under non-Array schema node %d", errs.ErrCorrupt, node.ID)
		}
		return Array{}, nil

	case irtag.TagArrayBegin:
		if node.Type != irschema.Array {
			return nil, fmt.Errorf("%w: array value under non-Array schema node %d", errs.ErrCorrupt, node.ID)
		}
		return d.decodeArrayLeaf()

	default:
		if !irtag.IsKnownTag(tag) {
			return nil, fmt.Errorf("%w: tag %#x in value position", errs.ErrUnknownTag, tag)
		}
		val, err := irvalue.Decode(d.r, tag, node)
		if err != nil {
			return nil, err
		}
		if !irvalue.Matches(val, node.Type) {
			return nil, fmt.Errorf("%w: value kind %d incompatible with schema type %s for node %d",
				errs.ErrCorrupt, val.Kind, node.Type, node.ID)
		}
		return scalarToAny(val)
	}
}

// decodeArrayLeaf consumes the single CLP-string value and the ArrayEnd
// marker following an already-read ArrayBegin tag, and parses the
// decoded text back into an Array (spec.md §4.4 step e, reversed).
func (d *Decoder) decodeArrayLeaf() (Array, error) {
	innerTag, err := d.r.TryReadByte()
	if err != nil {
		return nil, err
	}
	val, err := irvalue.Decode(d.r, innerTag, nil)
	if err != nil {
		return nil, err
	}
	if val.Kind != irvalue.KindClpStr {
		return nil, fmt.Errorf("%w: expected CLP string inside array markers, got tag %#x", errs.ErrCorrupt, innerTag)
	}

	endTag, err := d.r.TryReadByte()
	if err != nil {
		return nil, err
	}
	if endTag != irtag.TagArrayEnd {
		return nil, unexpectedTag("ArrayEnd", endTag)
	}

	raw, err := clpstring.DecodeCLPString(val.Clp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecode, err)
	}

	parsed, err := parseJSON(string(raw))
	if err != nil {
		return nil, err
	}
	arr, ok := parsed.(Array)
	if !ok {
		return nil, fmt.Errorf("%w: array payload did not decode to an array", errs.ErrCorrupt)
	}
	return arr, nil
}

// scalarToAny converts a decoded irvalue.Value into the plain Go value an
// Object stores, resolving a ClpStr-kind scalar back into a plain string
// (the mirror of Encoder's WithCLPStringThreshold).
func scalarToAny(v irvalue.Value) (any, error) {
	switch v.Kind {
	case irvalue.KindNull:
		return nil, nil
	case irvalue.KindBool:
		return v.B, nil
	case irvalue.KindInt:
		return v.I, nil
	case irvalue.KindFloat:
		return v.F, nil
	case irvalue.KindStr:
		return string(v.S), nil
	case irvalue.KindClpStr:
		raw, err := clpstring.DecodeCLPString(v.Clp)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDecode, err)
		}
		return string(raw), nil
	default:
		return nil, fmt.Errorf("%w: unsupported decoded value kind %d", errs.ErrCorrupt, v.Kind)
	}
}

// reconstruct walks each leaf's schema node back to the root through
// parent-id links, materializing nested Objects as it goes, and sets the
// leaf's own value at the end of its chain. Container nodes shared by
// more than one leaf (a common parent Obj under which several sibling
// keys were staged) are created once and reused — spec.md §4.5 step 5's
// "deduplicating shared intermediate Obj nodes".
func (d *Decoder) reconstruct(tree *irschema.Tree, ids []uint32, leaves []any) (*Object, error) {
	root := NewObject()
	containers := map[uint32]*Object{irschema.RootID: root}

	var getContainer func(uint32) (*Object, error)
	getContainer = func(id uint32) (*Object, error) {
		if obj, ok := containers[id]; ok {
			return obj, nil
		}
		node, err := tree.Get(id)
		if err != nil {
			return nil, fmt.Errorf("%w: ancestor schema node %d not found", errs.ErrCorrupt, id)
		}
		parent, err := getContainer(node.ParentID)
		if err != nil {
			return nil, err
		}
		obj := NewObject()
		parent.Set(node.KeyName, obj)
		containers[id] = obj
		return obj, nil
	}

	for i, id := range ids {
		node, err := tree.Get(id)
		if err != nil {
			return nil, fmt.Errorf("%w: key id %d past end of schema", errs.ErrCorrupt, id)
		}
		parent, err := getContainer(node.ParentID)
		if err != nil {
			return nil, err
		}
		parent.Set(node.KeyName, leaves[i])
	}

	return root, nil
}

func unexpectedTag(expected string, got byte) error {
	if !irtag.IsKnownTag(got) {
		return fmt.Errorf("%w: tag %#x in value position", errs.ErrUnknownTag, got)
	}
	return fmt.Errorf("%w: expected %s, got tag %#x", errs.ErrCorrupt, expected, got)
}
