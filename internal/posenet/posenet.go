/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package posenet decodes multi-person PoseNet outputs.
//
// The output buffer packs four planar sub-tensors: a heatmap with one
// channel per joint, short-range offsets, and forward and backward
// displacements along the skeleton edges. Poses are grown greedily from
// the strongest heatmap peaks and de-duplicated on estimated face boxes.
package posenet

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/mpromonet/gin-postproc/internal/params"
	"github.com/mpromonet/gin-postproc/internal/tensor"
)

// ErrPlanMismatch is returned when a plan does not match the parameters.
var ErrPlanMismatch = errors.New("posenet: transpose plan does not match parameters")

// Keypoint is a joint position normalized to the input tensor size.
type Keypoint struct {
	X, Y  float32
	Score float32
}

// Pose is one person; Keypoints is indexed by KeypointName.
type Pose struct {
	Score     float32
	Keypoints [NumKeypoints]Keypoint
}

// Set lists poses by descending score.
type Set []Pose

// Decode extracts poses from v. plan must come from KeyOf(p).
func Decode(v tensor.View, p params.PoseNet, plan *Plan) (Set, error) {
	if plan == nil || plan.Key != KeyOf(p) {
		return nil, ErrPlanMismatch
	}
	m, err := plan.transpose(v)
	if err != nil {
		return nil, fmt.Errorf("posenet: %w", err)
	}
	d := &decoder{
		m:              m,
		w:              p.OutputWidth,
		h:              p.OutputHeight,
		inW:            float32(p.InputWidth),
		inH:            float32(p.InputHeight),
		scoreThreshold: p.ScoreThreshold,
		nmsRadius:      float32(p.NMSRadius),
		edges:          Edges,
	}
	candidates := d.decode()
	kept := suppressByFace(candidates, p.IoUThreshold, d.inW, d.inH)

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	if len(kept) > p.MaxPoseDetections {
		kept = kept[:p.MaxPoseDetections]
	}
	for i, pose := range kept {
		if pose.Score < p.ScoreThreshold {
			kept = kept[:i]
			break
		}
	}
	log.Debug().Int("candidates", len(candidates)).Int("poses", len(kept)).Msg("Decoded poses")
	return Set(kept), nil
}
