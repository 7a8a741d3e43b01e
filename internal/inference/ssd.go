/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package inference

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// SSDPacker packs the four outputs of a TFLite SSD post-processing op:
// boxes [N,4] as normalized ymin,xmin,ymax,xmax, classes [N], scores [N]
// and the valid count. The result decodes with bbox_order yxyx,
// normalized boxes and cls_score.
type SSDPacker struct{}

func (SSDPacker) Pack(outputs [][]float32, shapes [][]int) ([]float32, error) {
	if len(outputs) < 3 {
		return nil, fmt.Errorf("%w: ssd needs at least 3 outputs, got %d", ErrShape, len(outputs))
	}
	l, c, s := outputs[0], outputs[1], outputs[2]
	n := min(len(l)/4, len(c), len(s))
	if len(outputs) > 3 && len(outputs[3]) > 0 {
		if count := int(outputs[3][0]); count >= 0 && count < n {
			n = count
		}
	}
	log.Debug().Int("boxes", len(l)/4).Int("valid", n).Msg("SSD outputs")

	rows := make([][6]float32, n)
	for idx := range rows {
		rows[idx] = [6]float32{l[4*idx], l[4*idx+1], l[4*idx+2], l[4*idx+3], c[idx], s[idx]}
	}
	return planar(rows), nil
}
