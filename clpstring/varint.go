package clpstring

import "github.com/clpir-go/clpir/irbyte"

// writeVarint appends v as an unsigned LEB128 varint, used for dict-var
// back-reference indices where most values are small.
func writeVarint(w *irbyte.Writer, v uint64) {
	for v >= 0x80 {
		w.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	w.WriteByte(byte(v))
}

// readVarint reads an unsigned LEB128 varint written by writeVarint.
func readVarint(r *irbyte.Reader) (uint64, error) {
	var v uint64
	var shift uint
	for {
		b, err := r.TryReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, nil
		}
		shift += 7
	}
}
