/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package inference

import (
	"fmt"

	"github.com/mpromonet/gin-postproc/internal/posenet"
	"github.com/mpromonet/gin-postproc/internal/tensor"
)

// PoseNetPacker packs the four [1,H,W,C] outputs of a PoseNet model
// (heatmaps, offsets, forward and backward displacements, in that order)
// into one planar buffer, placing each at the position given by Order.
// Order is read on every Pack so the layout follows reconfiguration.
type PoseNetPacker struct {
	Order func() [4]int
}

var poseDepths = [4]int{posenet.HeatmapDepth, posenet.OffsetDepth, posenet.DisplacementDepth, posenet.DisplacementDepth}

func (p PoseNetPacker) Pack(outputs [][]float32, shapes [][]int) ([]float32, error) {
	if len(outputs) < 4 || len(shapes) < 4 {
		return nil, fmt.Errorf("%w: posenet needs 4 outputs, got %d", ErrShape, len(outputs))
	}
	order := p.Order()
	h, w := 0, 0
	var chunks [4][]float32
	for role, depth := range poseDepths {
		shape := shapes[role]
		if len(shape) != 4 || shape[3] != depth {
			return nil, fmt.Errorf("%w: posenet output %d has shape %v, want [1,H,W,%d]", ErrShape, role, shape, depth)
		}
		if role == 0 {
			h, w = shape[1], shape[2]
		} else if shape[1] != h || shape[2] != w {
			return nil, fmt.Errorf("%w: posenet output %d grid %dx%d differs from %dx%d", ErrShape, role, shape[2], shape[1], w, h)
		}
		if len(outputs[role]) != h*w*depth {
			return nil, fmt.Errorf("%w: posenet output %d holds %d values", ErrShape, role, len(outputs[role]))
		}
		pos := order[role]
		if pos < 0 || pos > 3 || chunks[pos] != nil {
			return nil, fmt.Errorf("inference: tensor order %v is not a permutation", order)
		}
		chunks[pos] = make([]float32, h*w*depth)
		tensor.InterleavedToPlanar(h, w, depth).Apply(chunks[pos], outputs[role])
	}

	out := make([]float32, 0, len(chunks[0])+len(chunks[1])+len(chunks[2])+len(chunks[3]))
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out, nil
}
