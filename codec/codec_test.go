package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/termcluster/aggregate"
)

func TestCodecs_Partial(t *testing.T) {
	p := &aggregate.Partial{K: 3, Fingerprint: 42, Similarity: []float64{0.5, -1, 12.25}}

	for _, name := range []string{"binary", "json", "go-json"} {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)
			assert.Equal(t, name, c.Name())

			data, err := c.Marshal(p)
			require.NoError(t, err)

			var got aggregate.Partial
			require.NoError(t, c.Unmarshal(data, &got))
			assert.Equal(t, *p, got)
		})
	}
}

func TestJSONInterchangeable(t *testing.T) {
	p := &aggregate.Partial{K: 1, Fingerprint: 1, Similarity: []float64{3}}

	var got aggregate.Partial
	require.NoError(t, JSON{}.Unmarshal(MustMarshal(GoJSON{}, p), &got))
	assert.Equal(t, *p, got)

	out, err := GoJSON{}.Append([]byte("x"), p)
	require.NoError(t, err)
	assert.Equal(t, byte('x'), out[0])
}

func TestBinary_RequiresMarshaler(t *testing.T) {
	_, err := Binary{}.Marshal(struct{}{})
	assert.Error(t, err)
	assert.Error(t, Binary{}.Unmarshal(nil, &struct{}{}))
}

func TestByName_Unknown(t *testing.T) {
	_, ok := ByName("protobuf")
	assert.False(t, ok)
}

func TestMustMarshal_Default(t *testing.T) {
	p := &aggregate.Partial{K: 0, Similarity: []float64{}}
	assert.NotEmpty(t, MustMarshal(nil, p))
	assert.Panics(t, func() { MustMarshal(nil, 1) })
}
