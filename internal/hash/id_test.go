package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		id   uint64
	}{
		{"empty", []byte(""), 0xef46db3751d8e999},
		{"short", []byte("test"), 0x4fdcca5ddb678139},
		{"longer", []byte("this is a longer test string to hash"), 0x69275f7f7ee59dbd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, Bytes(tt.data))
		})
	}
}

func TestBytesStable(t *testing.T) {
	a := Bytes([]byte("req-id-12345"))
	b := Bytes([]byte("req-id-12345"))
	assert.Equal(t, a, b)
}
