package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// Known answer for the Castagnoli polynomial.
	assert.Equal(t, uint32(0xe3069283), CRC32C([]byte("123456789")))

	h := NewCRC32C()
	_, _ = h.Write([]byte("1234"))
	_, _ = h.Write([]byte("56789"))
	assert.Equal(t, uint32(0xe3069283), h.Sum32())
}

func TestFingerprint_FieldBoundaries(t *testing.T) {
	a := NewFingerprint()
	a.Text("ab")
	a.Text("c")

	b := NewFingerprint()
	b.Text("a")
	b.Text("bc")

	assert.NotEqual(t, a.Sum32(), b.Sum32())
}

func TestFingerprint_Deterministic(t *testing.T) {
	sum := func() uint32 {
		f := NewFingerprint()
		f.Uint64(3)
		f.Float64(0.25)
		f.Text("coffee")
		return f.Sum32()
	}
	assert.Equal(t, sum(), sum())
}
