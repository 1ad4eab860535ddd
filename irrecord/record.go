// Package irrecord implements the record tree the codec's encoder
// walks and the decoder reconstructs, and the encoder/decoder pair
// itself (spec.md §4.4-4.6, components C5-C6).
package irrecord

// Object is an ordered map: a JSON object's keys have no intrinsic
// order, but a wire codec that replays keys in DFS order on decode needs
// a deterministic iteration order on encode, so Object preserves
// first-insertion order.
type Object struct {
	keys []string
	vals map[string]any
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{vals: make(map[string]any)}
}

// Set assigns key to val, appending key to the iteration order on first
// use and overwriting the value (without reordering) on reuse.
//
// val must be one of: nil, int64, float64, bool, string, *Object, Array.
func (o *Object) Set(key string, val any) *Object {
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = val
	return o
}

// Get returns the value at key and whether it was present.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Keys returns the object's keys in first-insertion order. The returned
// slice must not be modified.
func (o *Object) Keys() []string { return o.keys }

// Len returns the number of keys in the object.
func (o *Object) Len() int { return len(o.keys) }

// Array is an ordered list of scalar values, nested Objects, or nested
// Arrays — the shape spec.md §3.2 renders as a CLP-encoded JSON string
// rather than growing the schema tree per element.
type Array []any
