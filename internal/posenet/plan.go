/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package posenet

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mpromonet/gin-postproc/internal/params"
	"github.com/mpromonet/gin-postproc/internal/tensor"
)

// Role names the four sub-tensors of a PoseNet output.
type Role int

const (
	Heatmap Role = iota
	Offset
	ForwardDisplacement
	BackwardDisplacement
	numRoles
)

var roleNames = [numRoles]string{"heatmap", "offset", "forward_displacement", "backward_displacement"}

func (r Role) String() string { return roleNames[r] }

// Channel counts of each sub-tensor.
const (
	HeatmapDepth      = NumKeypoints
	OffsetDepth       = 2 * NumKeypoints
	DisplacementDepth = 2 * modelEdges
)

var roleDepth = [numRoles]int{HeatmapDepth, OffsetDepth, DisplacementDepth, DisplacementDepth}

// GeometryKey is the part of the parameters that shapes the transpose.
type GeometryKey struct {
	OutputWidth  int
	OutputHeight int
	// Order holds the packed position of each Role.
	Order [numRoles]int
}

// KeyOf extracts the geometry of p.
func KeyOf(p params.PoseNet) GeometryKey {
	return GeometryKey{
		OutputWidth:  p.OutputWidth,
		OutputHeight: p.OutputHeight,
		Order:        p.TensorOrder(),
	}
}

// Plan is the immutable recipe turning a packed planar buffer into four
// channel-interleaved maps.
type Plan struct {
	Key    GeometryKey
	Layout tensor.Layout
	block  [numRoles]int
	perm   [numRoles]tensor.Permutation
}

// NewPlan computes the layout and permutations for key.
func NewPlan(key GeometryKey) (*Plan, error) {
	h, w := key.OutputHeight, key.OutputWidth
	if h < 2 || w < 2 {
		return nil, fmt.Errorf("posenet: output grid %dx%d is too small", w, h)
	}
	p := &Plan{Key: key}
	blocks := make([]tensor.Block, numRoles)
	placed := 0
	for pos := 0; pos < int(numRoles); pos++ {
		for r := Role(0); r < numRoles; r++ {
			if key.Order[r] != pos {
				continue
			}
			blocks[pos] = tensor.Block{Name: r.String(), Height: h, Width: w, Depth: roleDepth[r]}
			p.block[r] = pos
			p.perm[r] = tensor.PlanarToInterleaved(h, w, roleDepth[r])
			placed++
			break
		}
	}
	if placed != int(numRoles) {
		return nil, fmt.Errorf("posenet: tensor order %v is not a permutation", key.Order)
	}
	p.Layout = tensor.NewLayout(blocks...)
	return p, nil
}

// maps holds the channel-interleaved sub-tensors by Role.
type maps [numRoles][]float32

// transpose copies the sub-tensors of v out of their planar layout.
func (p *Plan) transpose(v tensor.View) (maps, error) {
	var m maps
	if err := p.Layout.Validate(v); err != nil {
		return m, err
	}
	for r := Role(0); r < numRoles; r++ {
		src, err := p.Layout.Block(v, p.block[r])
		if err != nil {
			return m, err
		}
		m[r] = make([]float32, len(src))
		p.perm[r].Apply(m[r], src)
	}
	return m, nil
}

// PlanCache memoizes the plan of the last geometry seen. It is not safe
// for concurrent use.
type PlanCache struct {
	plan *Plan
}

// Get returns the plan for key, rebuilding it when the geometry changed.
func (c *PlanCache) Get(key GeometryKey) (*Plan, error) {
	if c.plan != nil && c.plan.Key == key {
		return c.plan, nil
	}
	plan, err := NewPlan(key)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("width", key.OutputWidth).Int("height", key.OutputHeight).Ints("order", key.Order[:]).Msg("Rebuilt transpose plan")
	c.plan = plan
	return plan, nil
}
