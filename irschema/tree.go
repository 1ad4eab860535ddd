// Package irschema implements the append-only, rollback-capable schema
// tree shared by the producer's encoder and the consumer's decoder. A
// node is uniquely identified by the triple (parent id, key name, type);
// ids are dense and assigned in strictly increasing insertion order.
package irschema

import (
	"fmt"

	"github.com/clpir-go/clpir/errs"
)

// NodeType is one of the six schema-tree node types spec.md §3.1 names.
type NodeType uint8

const (
	Int NodeType = iota
	Float
	Bool
	Str
	Array
	Obj
)

func (t NodeType) String() string {
	switch t {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Bool:
		return "Bool"
	case Str:
		return "Str"
	case Array:
		return "Array"
	case Obj:
		return "Obj"
	default:
		return fmt.Sprintf("NodeType(%d)", uint8(t))
	}
}

// IsContainer reports whether t may hold children (Obj or Array).
func (t NodeType) IsContainer() bool { return t == Obj || t == Array }

// Node is one entry in the schema tree.
type Node struct {
	ID       uint32
	ParentID uint32
	KeyName  string
	Type     NodeType
	Children []uint32

	// PrevVal holds the running value for integer delta encoding (spec.md
	// §4.3). It is meaningful only for Int nodes, lives exclusively on the
	// node, and is never persisted on the wire. Cleared implicitly when
	// the node is removed by Revert.
	PrevVal int64
}

// Tree is a rooted, ordered tree of Nodes. The zero value is not usable;
// construct with New.
type Tree struct {
	nodes  []Node
	strict bool

	hasSnapshot      bool
	snapshotSize     int
	snapshotPrevVals []int64 // PrevVal of nodes[0:snapshotSize] as of the last Snapshot call
}

// RootID is the id of the tree's root node, always present.
const RootID uint32 = 0

// New creates a Tree containing only the root node (id=0, parent=0,
// empty name, type Obj). strict controls whether Insert rejects
// inserting a child under a non-container node (see SetStrict).
func New(strict bool) *Tree {
	t := &Tree{strict: strict}
	t.nodes = append(t.nodes, Node{ID: RootID, ParentID: RootID, KeyName: "", Type: Obj})
	return t
}

// SetStrict toggles strict-mode insertion. The decoder must stay
// permissive (spec.md §9) since it cannot refuse a stream it has
// already begun; the encoder typically runs strict.
func (t *Tree) SetStrict(strict bool) { t.strict = strict }

// Size returns the number of nodes in the tree, including the root.
func (t *Tree) Size() int { return len(t.nodes) }

// Get returns a pointer to the node with the given id. The returned
// pointer is invalidated by any subsequent Insert/Revert call that
// reallocates the backing slice, so callers must not retain it across
// tree mutations.
func (t *Tree) Get(id uint32) (*Node, error) {
	if int(id) >= len(t.nodes) {
		return nil, fmt.Errorf("%w: id %d", errs.ErrNodeNotFound, id)
	}
	return &t.nodes[id], nil
}

// Lookup performs a linear scan over parentID's children for the first
// one matching (keyName, typ). Returns false if none match.
func (t *Tree) Lookup(parentID uint32, keyName string, typ NodeType) (uint32, bool) {
	if int(parentID) >= len(t.nodes) {
		return 0, false
	}
	for _, childID := range t.nodes[parentID].Children {
		child := &t.nodes[childID]
		if child.KeyName == keyName && child.Type == typ {
			return childID, true
		}
	}
	return 0, false
}

// Insert appends a new node under parentID. It fails if parentID is out
// of range, or if the tree is in strict mode and parentID's node is not
// a container type.
func (t *Tree) Insert(parentID uint32, keyName string, typ NodeType) (uint32, error) {
	if int(parentID) >= len(t.nodes) {
		return 0, fmt.Errorf("%w: parent id %d", errs.ErrNodeNotFound, parentID)
	}
	parent := &t.nodes[parentID]
	if t.strict && !parent.Type.IsContainer() {
		return 0, fmt.Errorf("%w: parent %d has type %s", errs.ErrNotContainer, parentID, parent.Type)
	}

	id := uint32(len(t.nodes))
	t.nodes = append(t.nodes, Node{ID: id, ParentID: parentID, KeyName: keyName, Type: typ})
	// Re-fetch parent: the append above may have reallocated t.nodes.
	t.nodes[parentID].Children = append(t.nodes[parentID].Children, id)

	return id, nil
}

// TryInsert is the idempotent form of Insert: it returns the existing id
// if a node matching (parentID, keyName, typ) already exists, otherwise
// it inserts a new one.
func (t *Tree) TryInsert(parentID uint32, keyName string, typ NodeType) (id uint32, inserted bool, err error) {
	if existing, ok := t.Lookup(parentID, keyName, typ); ok {
		return existing, false, nil
	}
	id, err = t.Insert(parentID, keyName, typ)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Snapshot records the tree's current size and the PrevVal of every
// currently-existing node, replacing any prior snapshot. At most one
// snapshot is held at a time.
//
// Capturing PrevVal here (not just size) matters because a node that
// survives a revert — one inserted before the snapshot — may still have
// had its PrevVal advanced by an encoder's integer-delta staging before
// the record that grew it failed; see Revert.
func (t *Tree) Snapshot() {
	t.hasSnapshot = true
	t.snapshotSize = len(t.nodes)

	if cap(t.snapshotPrevVals) < t.snapshotSize {
		t.snapshotPrevVals = make([]int64, t.snapshotSize)
	} else {
		t.snapshotPrevVals = t.snapshotPrevVals[:t.snapshotSize]
	}
	for i := range t.snapshotPrevVals {
		t.snapshotPrevVals[i] = t.nodes[i].PrevVal
	}
}

// Revert truncates the tree back to the size recorded by the last
// Snapshot call, removing the trailing children references from their
// parents, and restores every surviving node's PrevVal to its
// pre-snapshot value. It fails if no snapshot is currently held.
//
// The truncation is safe without an explicit per-parent search: child
// ids are appended to a parent's Children list in tree-insertion order,
// so every popped node's id is guaranteed to be at the tail of its
// parent's list. The PrevVal restore is needed separately: an Int node
// that existed before the snapshot is never removed by truncation, but
// an encoder may have advanced its PrevVal while staging the now-failed
// record (spec.md §4.3, §8.4 — revert must restore prev_val bit-exactly,
// not just tree shape).
func (t *Tree) Revert() error {
	if !t.hasSnapshot {
		return errs.ErrNoSnapshot
	}

	for len(t.nodes) > t.snapshotSize {
		last := &t.nodes[len(t.nodes)-1]
		parent := &t.nodes[last.ParentID]
		parent.Children = parent.Children[:len(parent.Children)-1]
		t.nodes = t.nodes[:len(t.nodes)-1]
	}

	for i := range t.nodes {
		t.nodes[i].PrevVal = t.snapshotPrevVals[i]
	}

	t.hasSnapshot = false
	return nil
}

// HasSnapshot reports whether a snapshot is currently held.
func (t *Tree) HasSnapshot() bool { return t.hasSnapshot }
