/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package params

import (
	"github.com/rs/zerolog/log"
)

// MaxAreaClasses bounds the class filter of an area.
const MaxAreaClasses = 10

// Area is the configured region of interest for area counting.
type Area struct {
	Left, Top, Right, Bottom int
	Overlap                  float32
	// ClassIDs filters counted classes; empty means every class.
	ClassIDs []uint16
}

// ParseArea reads the top-level "area" object. ok is false when no area is
// configured or when the class filter is too long.
func ParseArea(root Object) (area Area, ok bool, st Status) {
	obj, found := root.Object("area")
	if !found {
		return Area{}, false, StatusOk
	}
	coords, _ := obj.Object("coordinates")
	area.Left = int(numberOrZero(coords, "left"))
	area.Top = int(numberOrZero(coords, "top"))
	area.Right = int(numberOrZero(coords, "right"))
	area.Bottom = int(numberOrZero(coords, "bottom"))
	area.Overlap = float32(numberOrZero(obj, "overlap"))

	ids, _ := obj.Array("class_id")
	if len(ids) > MaxAreaClasses {
		log.Error().Int("count", len(ids)).Int("limit", MaxAreaClasses).Msg("Too many class ids in area settings")
		return Area{}, false, StatusInvalid
	}
	for _, id := range ids {
		if f, isNum := id.(float64); isNum && f >= 0 {
			area.ClassIDs = append(area.ClassIDs, uint16(f))
		}
	}
	return area, true, StatusOk
}

func numberOrZero(o Object, key string) float64 {
	if o == nil {
		return 0
	}
	v, _ := o.Number(key)
	return v
}
