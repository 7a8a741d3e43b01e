/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package detection decodes object-detection output tensors.
//
// The tensor holds six planes of N values each, followed by one count
// element: four bounding-box planes in the configured coordinate order,
// then the class and score planes in the configured order.
package detection

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/mpromonet/gin-postproc/internal/params"
	"github.com/mpromonet/gin-postproc/internal/tensor"
)

// BBox is a pixel-space box, top-left and bottom-right inclusive.
type BBox struct {
	Left, Top, Right, Bottom uint16
}

// Area returns the box area, zero for degenerate boxes.
func (b BBox) Area() int64 {
	if b.Right <= b.Left || b.Bottom <= b.Top {
		return 0
	}
	return int64(b.Right-b.Left) * int64(b.Bottom-b.Top)
}

// Detection is one decoded object.
type Detection struct {
	ClassID uint16
	Score   float32
	BBox    BBox
}

// Set is a list of detections in tensor index order.
type Set []Detection

// Capacity returns how many detections a tensor of n elements can hold.
func Capacity(n int) int {
	if n < 7 {
		return 0
	}
	return (n - 1) / 6
}

// Layout describes the planes of a tensor holding n detections.
func Layout(n int, order params.ClassScoreOrder) tensor.Layout {
	plane := func(name string) tensor.Block {
		return tensor.Block{Name: name, Height: 1, Width: n, Depth: 1}
	}
	first, second := "class", "score"
	if order == params.ScoreThenClass {
		first, second = second, first
	}
	return tensor.NewLayout(
		plane("bbox0"), plane("bbox1"), plane("bbox2"), plane("bbox3"),
		plane(first), plane(second),
		tensor.Block{Name: "count", Height: 1, Width: 1, Depth: 1},
	)
}

// Decode turns v into the detections scoring at least p.Threshold, in
// tensor order, stopping once p.MaxDetections are collected.
func Decode(v tensor.View, p params.Detection) (Set, error) {
	n := Capacity(v.Len())
	if n == 0 {
		log.Debug().Int("len", v.Len()).Msg("Tensor too small to hold a detection")
		return Set{}, nil
	}
	layout := Layout(n, p.ClassScoreOrder)
	if err := layout.Validate(v); err != nil {
		return nil, err
	}
	var planes [4][]float32
	for k := range planes {
		planes[k], _ = layout.Block(v, k)
	}
	classes, _ := layout.Block(v, layout.Find("class"))
	scores, _ := layout.Block(v, layout.Find("score"))

	limit := n
	if p.UseTensorCount {
		limit = tensorCount(v, n)
	}

	set := make(Set, 0, min(limit, p.MaxDetections))
	for i := 0; i < limit && len(set) < p.MaxDetections; i++ {
		score := scores[i]
		if score < p.Threshold {
			log.Debug().Int("index", i).Float32("score", score).Msg("Ignored detection below threshold")
			continue
		}
		box := extractBBox(planes[0][i], planes[1][i], planes[2][i], planes[3][i], p)
		set = append(set, Detection{
			ClassID: toUint16(float64(classes[i])),
			Score:   score,
			BBox:    box,
		})
	}
	return set, nil
}

// tensorCount reads the trailing count element, falling back to n when it
// is not an integer in [0, n].
func tensorCount(v tensor.View, n int) int {
	raw, err := v.At(v.Len() - 1)
	if err != nil {
		return n
	}
	c := float64(raw)
	if math.IsNaN(c) || c < 0 || c > float64(n) || c != math.Trunc(c) {
		log.Warn().Float64("count", c).Int("capacity", n).Msg("Ignoring invalid detection count")
		return n
	}
	return int(c)
}

func extractBBox(c0, c1, c2, c3 float32, p params.Detection) BBox {
	x := axis{dim: p.InputWidth, normalized: p.BBoxNormalized}
	y := axis{dim: p.InputHeight, normalized: p.BBoxNormalized}
	var b BBox
	switch p.BBoxOrder {
	case params.BBoxXYXY:
		b = BBox{Left: x.scale(c0), Top: y.scale(c1), Right: x.scale(c2), Bottom: y.scale(c3)}
	case params.BBoxXXYY:
		b = BBox{Left: x.scale(c0), Right: x.scale(c1), Top: y.scale(c2), Bottom: y.scale(c3)}
	case params.BBoxXYWH:
		b.Left = x.scale(c0)
		b.Top = y.scale(c1)
		b.Right = x.clamp(float64(b.Left) + float64(x.scale(c2)))
		b.Bottom = y.clamp(float64(b.Top) + float64(y.scale(c3)))
	default:
		b = BBox{Top: y.scale(c0), Left: x.scale(c1), Bottom: y.scale(c2), Right: x.scale(c3)}
	}
	log.Debug().
		Uint16("left", b.Left).Uint16("top", b.Top).
		Uint16("right", b.Right).Uint16("bottom", b.Bottom).
		Msg("Decoded bounding box")
	return b
}

type axis struct {
	dim        int
	normalized bool
}

// scale denormalizes one coordinate.
func (a axis) scale(v float32) uint16 {
	if a.normalized {
		return a.clamp(math.Round(float64(v) * float64(a.dim-1)))
	}
	return a.clamp(math.Round(float64(v)))
}

// clamp bounds normalized coordinates to the image and raw pixel
// coordinates to the uint16 range.
func (a axis) clamp(v float64) uint16 {
	hi := float64(math.MaxUint16)
	if a.normalized {
		hi = float64(a.dim - 1)
	}
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > hi {
		return uint16(hi)
	}
	return uint16(v)
}

func toUint16(v float64) uint16 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

func (d Detection) String() string {
	return fmt.Sprintf("class=%d score=%.3f box=[%d,%d,%d,%d]",
		d.ClassID, d.Score, d.BBox.Left, d.BBox.Top, d.BBox.Right, d.BBox.Bottom)
}
