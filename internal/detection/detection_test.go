/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpromonet/gin-postproc/internal/params"
	"github.com/mpromonet/gin-postproc/internal/tensor"
)

type raw struct {
	coords       [4]float32
	class, score float32
}

// pack lays out rows as planar detection planes with a trailing count.
func pack(order params.ClassScoreOrder, rows ...raw) []float32 {
	n := len(rows)
	out := make([]float32, 6*n+1)
	clsBase, scoreBase := 4*n, 5*n
	if order == params.ScoreThenClass {
		clsBase, scoreBase = scoreBase, clsBase
	}
	for i, r := range rows {
		for k, c := range r.coords {
			out[k*n+i] = c
		}
		out[clsBase+i] = r.class
		out[scoreBase+i] = r.score
	}
	out[6*n] = float32(n)
	return out
}

func view(t *testing.T, data []float32) tensor.View {
	t.Helper()
	v, err := tensor.NewView(data)
	require.NoError(t, err)
	return v
}

func TestCapacity(t *testing.T) {
	assert.Equal(t, 0, Capacity(0))
	assert.Equal(t, 0, Capacity(6))
	assert.Equal(t, 1, Capacity(7))
	assert.Equal(t, 1, Capacity(12))
	assert.Equal(t, 2, Capacity(13))
}

func TestDecodeXYXYPixels(t *testing.T) {
	p := params.DefaultDetection()
	p.BBoxOrder = params.BBoxXYXY
	p.BBoxNormalized = false
	p.InputWidth, p.InputHeight = 300, 300

	data := pack(p.ClassScoreOrder, raw{coords: [4]float32{68, 240, 172, 356}, class: 0, score: 0.92})
	set, err := Decode(view(t, data), p)
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, Detection{ClassID: 0, Score: 0.92, BBox: BBox{Left: 68, Top: 240, Right: 172, Bottom: 356}}, set[0])
}

func TestDecodeOrders(t *testing.T) {
	coords := [4]float32{0.1, 0.2, 0.5, 0.6}
	tests := []struct {
		order params.BBoxOrder
		want  BBox
	}{
		// dim-1 = 100 on both axes
		{params.BBoxYXYX, BBox{Top: 10, Left: 20, Bottom: 50, Right: 60}},
		{params.BBoxXYXY, BBox{Left: 10, Top: 20, Right: 50, Bottom: 60}},
		{params.BBoxXXYY, BBox{Left: 10, Right: 20, Top: 50, Bottom: 60}},
		{params.BBoxXYWH, BBox{Left: 10, Top: 20, Right: 60, Bottom: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.order.String(), func(t *testing.T) {
			p := params.DefaultDetection()
			p.BBoxOrder = tt.order
			p.InputWidth, p.InputHeight = 101, 101
			set, err := Decode(view(t, pack(p.ClassScoreOrder, raw{coords: coords, class: 3, score: 0.8})), p)
			require.NoError(t, err)
			require.Len(t, set, 1)
			assert.Equal(t, tt.want, set[0].BBox)
			assert.Equal(t, uint16(3), set[0].ClassID)
		})
	}
}

func TestDecodeScoreFirst(t *testing.T) {
	p := params.DefaultDetection()
	p.ClassScoreOrder = params.ScoreThenClass
	data := pack(params.ScoreThenClass, raw{class: 7, score: 0.5})
	set, err := Decode(view(t, data), p)
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, uint16(7), set[0].ClassID)
	assert.Equal(t, float32(0.5), set[0].Score)
}

func TestDecodeNormalizedClamp(t *testing.T) {
	p := params.DefaultDetection()
	p.BBoxOrder = params.BBoxXYXY
	set, err := Decode(view(t, pack(p.ClassScoreOrder, raw{coords: [4]float32{-0.2, 0, 1.5, 1}, score: 0.9})), p)
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, BBox{Left: 0, Top: 0, Right: 319, Bottom: 319}, set[0].BBox)
}

func TestDecodeThresholdAndCap(t *testing.T) {
	scores := []float32{0.1, 0.9, 0.3, 0.29, 0.7, 0.95, 0.4, 0.8}
	rows := make([]raw, len(scores))
	for i, s := range scores {
		rows[i] = raw{coords: [4]float32{0.1, 0.1, 0.2, 0.2}, class: float32(i), score: s}
	}
	p := params.DefaultDetection()
	p.MaxDetections = 3

	set, err := Decode(view(t, pack(p.ClassScoreOrder, rows...)), p)
	require.NoError(t, err)
	require.Len(t, set, 3)
	for _, d := range set {
		assert.GreaterOrEqual(t, d.Score, p.Threshold)
	}
	// first survivors in tensor order
	assert.Equal(t, []uint16{1, 2, 4}, []uint16{set[0].ClassID, set[1].ClassID, set[2].ClassID})

	p.MaxDetections = 10
	set, err = Decode(view(t, pack(p.ClassScoreOrder, rows...)), p)
	require.NoError(t, err)
	assert.Len(t, set, 6)
}

func TestDecodeTensorCount(t *testing.T) {
	rows := []raw{{score: 0.9}, {score: 0.9}, {score: 0.9}}
	data := pack(params.ClassThenScore, rows...)
	data[len(data)-1] = 2

	p := params.DefaultDetection()
	set, err := Decode(view(t, data), p)
	require.NoError(t, err)
	assert.Len(t, set, 3)

	p.UseTensorCount = true
	set, err = Decode(view(t, data), p)
	require.NoError(t, err)
	assert.Len(t, set, 2)

	data[len(data)-1] = 2.5
	set, err = Decode(view(t, data), p)
	require.NoError(t, err)
	assert.Len(t, set, 3)
}

func TestDecodeSmallTensor(t *testing.T) {
	set, err := Decode(view(t, []float32{1, 2, 3}), params.DefaultDetection())
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestAreaCount(t *testing.T) {
	p := params.DefaultDetection()
	p.BBoxOrder = params.BBoxXYXY
	p.BBoxNormalized = false
	p.InputWidth, p.InputHeight = 640, 480

	data := pack(p.ClassScoreOrder,
		raw{coords: [4]float32{20, 20, 100, 100}, class: 0, score: 0.9},
		raw{coords: [4]float32{200, 150, 300, 400}, class: 0, score: 0.8},
		raw{coords: [4]float32{400, 300, 460, 460}, class: 0, score: 0.7},
	)
	set, err := Decode(view(t, data), p)
	require.NoError(t, err)
	require.Len(t, set, 3)

	spec := NewAreaSpec(params.Area{Left: 15, Top: 10, Right: 470, Bottom: 470, Overlap: 0.5})
	counts := Count(set, spec)
	assert.Equal(t, AreaCount{{ClassID: 0, Count: 3}}, counts)
	assert.Len(t, set, 3)
}

func TestAreaCountFilters(t *testing.T) {
	rect := BBox{Left: 0, Top: 0, Right: 100, Bottom: 100}
	set := Set{
		{ClassID: 2, Score: 1, BBox: BBox{Left: 10, Top: 10, Right: 20, Bottom: 20}},
		{ClassID: 1, Score: 1, BBox: BBox{Left: 10, Top: 10, Right: 20, Bottom: 20}},
		// half outside: overlap 0.5
		{ClassID: 1, Score: 1, BBox: BBox{Left: 90, Top: 10, Right: 110, Bottom: 20}},
		// fully outside
		{ClassID: 1, Score: 1, BBox: BBox{Left: 200, Top: 200, Right: 210, Bottom: 210}},
		// degenerate
		{ClassID: 1, Score: 1, BBox: BBox{Left: 10, Top: 10, Right: 10, Bottom: 20}},
	}

	all := Count(set, AreaSpec{Rect: rect, Overlap: 0.5})
	assert.Equal(t, AreaCount{{ClassID: 2, Count: 1}, {ClassID: 1, Count: 2}}, all)

	strict := Count(set, AreaSpec{Rect: rect, Overlap: 0.6, ClassIDs: []uint16{1}})
	assert.Equal(t, AreaCount{{ClassID: 1, Count: 1}}, strict)
	assert.Equal(t, uint32(0), strict.Get(2))
}

func TestOverlap(t *testing.T) {
	box := BBox{Left: 0, Top: 0, Right: 10, Bottom: 10}
	assert.InDelta(t, 1.0, Overlap(box, BBox{Left: 0, Top: 0, Right: 100, Bottom: 100}), 1e-9)
	assert.InDelta(t, 0.25, Overlap(box, BBox{Left: 5, Top: 5, Right: 100, Bottom: 100}), 1e-9)
	assert.Equal(t, 0.0, Overlap(box, BBox{Left: 10, Top: 10, Right: 20, Bottom: 20}))
}
