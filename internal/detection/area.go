/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package detection

import (
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/mpromonet/gin-postproc/internal/params"
)

// AreaSpec is a region of interest with its overlap threshold and class
// filter. An empty ClassIDs counts every class.
type AreaSpec struct {
	Rect     BBox
	Overlap  float32
	ClassIDs []uint16
}

// NewAreaSpec converts configured area settings.
func NewAreaSpec(a params.Area) AreaSpec {
	return AreaSpec{
		Rect: BBox{
			Left:   toUint16(float64(a.Left)),
			Top:    toUint16(float64(a.Top)),
			Right:  toUint16(float64(a.Right)),
			Bottom: toUint16(float64(a.Bottom)),
		},
		Overlap:  a.Overlap,
		ClassIDs: slices.Clone(a.ClassIDs),
	}
}

// ClassCount is the number of detections of one class inside an area.
type ClassCount struct {
	ClassID uint16
	Count   uint32
}

// AreaCount lists per-class counts in first-seen class order.
type AreaCount []ClassCount

// Get returns the count for class id.
func (c AreaCount) Get(id uint16) uint32 {
	for _, cc := range c {
		if cc.ClassID == id {
			return cc.Count
		}
	}
	return 0
}

// Overlap is the fraction of box covered by rect.
func Overlap(box, rect BBox) float64 {
	area := box.Area()
	if area == 0 {
		return 0
	}
	inter := BBox{
		Left:   max(box.Left, rect.Left),
		Top:    max(box.Top, rect.Top),
		Right:  min(box.Right, rect.Right),
		Bottom: min(box.Bottom, rect.Bottom),
	}
	return float64(inter.Area()) / float64(area)
}

// Count buckets the detections of set that overlap spec.Rect by at least
// spec.Overlap. Zero-area detections are never counted.
func Count(set Set, spec AreaSpec) AreaCount {
	counts := AreaCount{}
	for _, d := range set {
		if len(spec.ClassIDs) > 0 && !slices.Contains(spec.ClassIDs, d.ClassID) {
			continue
		}
		if d.BBox.Area() == 0 || Overlap(d.BBox, spec.Rect) < float64(spec.Overlap) {
			continue
		}
		log.Debug().Uint16("class_id", d.ClassID).Msg("Detection inside area")
		i := slices.IndexFunc(counts, func(c ClassCount) bool { return c.ClassID == d.ClassID })
		if i < 0 {
			counts = append(counts, ClassCount{ClassID: d.ClassID, Count: 1})
			continue
		}
		counts[i].Count++
	}
	return counts
}
