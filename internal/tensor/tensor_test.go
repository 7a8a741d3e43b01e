/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package tensor

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewViewRejectsNil(t *testing.T) {
	_, err := NewView(nil)
	require.ErrorIs(t, err, ErrNilTensor)

	v, err := NewView([]float32{})
	require.NoError(t, err)
	assert.Equal(t, 0, v.Len())
}

func TestViewDoesNotCopy(t *testing.T) {
	data := []float32{1, 2, 3}
	v, err := NewView(data)
	require.NoError(t, err)

	data[1] = 42
	got, err := v.At(1)
	require.NoError(t, err)
	assert.Equal(t, float32(42), got)
}

func TestViewBounds(t *testing.T) {
	v, _ := NewView([]float32{1, 2, 3})

	_, err := v.At(3)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = v.At(-1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = v.Slice(2, 2)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	s, err := v.Slice(1, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 3}, s)
}

func TestFromBytes(t *testing.T) {
	want := []float32{0.5, -1.25, 300}
	raw := make([]byte, 4*len(want)+2)
	for i, f := range want {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(f))
	}

	v, err := FromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, want, v.Data())

	// force a misaligned start
	shifted := make([]byte, len(raw)+1)
	copy(shifted[1:], raw)
	v, err = FromBytes(shifted[1:])
	require.NoError(t, err)
	assert.Equal(t, want, v.Data())

	_, err = FromBytes(nil)
	assert.ErrorIs(t, err, ErrNilTensor)
}

func TestLayout(t *testing.T) {
	l := NewLayout(
		Block{Name: "a", Height: 2, Width: 3, Depth: 1},
		Block{Name: "b", Height: 2, Width: 3, Depth: 2},
	)
	assert.Equal(t, 18, l.Total)
	assert.Equal(t, 6, l.Blocks[1].Offset)
	assert.Equal(t, 1, l.Find("b"))
	assert.Equal(t, -1, l.Find("c"))

	short, _ := NewView(make([]float32, 17))
	assert.ErrorIs(t, l.Validate(short), ErrOutOfBounds)

	data := make([]float32, 18)
	for i := range data {
		data[i] = float32(i)
	}
	v, _ := NewView(data)
	require.NoError(t, l.Validate(v))
	b, err := l.Block(v, 1)
	require.NoError(t, err)
	assert.Len(t, b, 12)
	assert.Equal(t, float32(6), b[0])

	empty := NewLayout(Block{Name: "z", Height: 0, Width: 1, Depth: 1})
	assert.Error(t, empty.Validate(v))
}

func TestPermutationRoundTrip(t *testing.T) {
	const h, w, c = 3, 4, 5
	src := make([]float32, h*w*c)
	for i := range src {
		src[i] = float32(i)
	}

	inter := make([]float32, len(src))
	PlanarToInterleaved(h, w, c).Apply(inter, src)

	// element (y=2, x=1, ch=3): planar index y + h*(x + w*ch)
	assert.Equal(t, src[2+h*(1+w*3)], inter[3+c*(1+w*2)])

	back := make([]float32, len(src))
	InterleavedToPlanar(h, w, c).Apply(back, inter)
	assert.Equal(t, src, back)
}
