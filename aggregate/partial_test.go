package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartial_Binary(t *testing.T) {
	p := &Partial{K: 3, Fingerprint: 0xdeadbeef, Similarity: []float64{1.5, -2, math.Inf(1)}}
	data, err := p.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, partialHeaderSize+3*8+partialTrailer)

	var got Partial
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, *p, got)

	appended, err := p.AppendBinary([]byte("prefix"))
	require.NoError(t, err)
	assert.Equal(t, data, appended[len("prefix"):])
}

func TestPartial_ZeroClusters(t *testing.T) {
	p := &Partial{Similarity: []float64{}}
	data, err := p.MarshalBinary()
	require.NoError(t, err)

	var got Partial
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, 0, got.K)
	assert.Empty(t, got.Similarity)
}

func TestPartial_MarshalLengthMismatch(t *testing.T) {
	_, err := (&Partial{K: 2, Similarity: []float64{1}}).MarshalBinary()
	assert.Error(t, err)
}

func TestPartial_Corrupt(t *testing.T) {
	valid, err := (&Partial{K: 2, Fingerprint: 7, Similarity: []float64{1, 2}}).MarshalBinary()
	require.NoError(t, err)

	mutate := func(fn func(b []byte) []byte) []byte {
		b := append([]byte(nil), valid...)
		return fn(b)
	}

	tests := map[string][]byte{
		"Short":    valid[:10],
		"Magic":    mutate(func(b []byte) []byte { b[0] = 'X'; return b }),
		"Version":  mutate(func(b []byte) []byte { b[4] = 9; return b }),
		"Payload":  mutate(func(b []byte) []byte { b[20] ^= 0xff; return b }),
		"Checksum": mutate(func(b []byte) []byte { b[len(b)-1] ^= 0xff; return b }),
		"Truncated": mutate(func(b []byte) []byte {
			return b[:len(b)-12]
		}),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			var p Partial
			assert.ErrorIs(t, p.UnmarshalBinary(data), ErrCorruptPartial)
		})
	}
}
