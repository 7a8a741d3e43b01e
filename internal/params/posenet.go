/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package params

import (
	"math"

	"github.com/rs/zerolog/log"
)

const (
	DefaultPoseInputWidth            = 481
	DefaultPoseInputHeight           = 353
	DefaultPoseOutputWidth           = 31
	DefaultPoseOutputHeight          = 23
	DefaultPoseScoreThreshold        = 0.5
	DefaultPoseIoUThreshold          = 0.28
	DefaultPoseNMSRadius             = 20
	DefaultMaxPoseDetections         = 15
	DefaultHeatmapIndex              = 0
	DefaultOffsetIndex               = 1
	DefaultForwardDisplacementIndex  = 2
	DefaultBackwardDisplacementIndex = 3
)

// PoseNet configures the PoseNet decoder.
type PoseNet struct {
	InputWidth        int
	InputHeight       int
	OutputWidth       int
	OutputHeight      int
	ScoreThreshold    float32
	IoUThreshold      float32
	NMSRadius         int
	MaxPoseDetections int

	// Position of each sub-tensor inside the packed output buffer.
	HeatmapIndex              int
	OffsetIndex               int
	ForwardDisplacementIndex  int
	BackwardDisplacementIndex int
}

// DefaultPoseNet returns the compiled-in PoseNet parameters.
func DefaultPoseNet() PoseNet {
	return PoseNet{
		InputWidth:                DefaultPoseInputWidth,
		InputHeight:               DefaultPoseInputHeight,
		OutputWidth:               DefaultPoseOutputWidth,
		OutputHeight:              DefaultPoseOutputHeight,
		ScoreThreshold:            DefaultPoseScoreThreshold,
		IoUThreshold:              DefaultPoseIoUThreshold,
		NMSRadius:                 DefaultPoseNMSRadius,
		MaxPoseDetections:         DefaultMaxPoseDetections,
		HeatmapIndex:              DefaultHeatmapIndex,
		OffsetIndex:               DefaultOffsetIndex,
		ForwardDisplacementIndex:  DefaultForwardDisplacementIndex,
		BackwardDisplacementIndex: DefaultBackwardDisplacementIndex,
	}
}

// TensorOrder returns the sub-tensor indices as heatmap, offset, forward,
// backward.
func (p PoseNet) TensorOrder() [4]int {
	return [4]int{p.HeatmapIndex, p.OffsetIndex, p.ForwardDisplacementIndex, p.BackwardDisplacementIndex}
}

// PoseNetExtractors lists one extractor per recognized PoseNet field,
// followed by the cross-field index check.
func PoseNetExtractors() []Extractor[PoseNet] {
	return []Extractor[PoseNet]{
		Integer("input_width", DefaultPoseInputWidth, 1, math.MaxUint16, func(p *PoseNet, v int) { p.InputWidth = v }),
		Integer("input_height", DefaultPoseInputHeight, 1, math.MaxUint16, func(p *PoseNet, v int) { p.InputHeight = v }),
		Integer("output_width", DefaultPoseOutputWidth, 2, math.MaxUint16, func(p *PoseNet, v int) { p.OutputWidth = v }),
		Integer("output_height", DefaultPoseOutputHeight, 2, math.MaxUint16, func(p *PoseNet, v int) { p.OutputHeight = v }),
		Number("score_threshold", DefaultPoseScoreThreshold, 0, 1, func(p *PoseNet, v float64) { p.ScoreThreshold = float32(v) }),
		Number("iou_threshold", DefaultPoseIoUThreshold, 0, 1, func(p *PoseNet, v float64) { p.IoUThreshold = float32(v) }),
		Integer("nms_radius", DefaultPoseNMSRadius, 0, math.MaxUint16, func(p *PoseNet, v int) { p.NMSRadius = v }),
		Integer("max_pose_detections", DefaultMaxPoseDetections, 0, math.MaxUint16, func(p *PoseNet, v int) { p.MaxPoseDetections = v }),
		Integer("heatmap_index", DefaultHeatmapIndex, 0, 3, func(p *PoseNet, v int) { p.HeatmapIndex = v }),
		Integer("offset_index", DefaultOffsetIndex, 0, 3, func(p *PoseNet, v int) { p.OffsetIndex = v }),
		Integer("forward_displacement_index", DefaultForwardDisplacementIndex, 0, 3, func(p *PoseNet, v int) { p.ForwardDisplacementIndex = v }),
		Integer("backward_displacement_index", DefaultBackwardDisplacementIndex, 0, 3, func(p *PoseNet, v int) { p.BackwardDisplacementIndex = v }),
		verifyTensorOrder,
	}
}

// verifyTensorOrder resets all four indices when they do not form a
// permutation of 0..3.
func verifyTensorOrder(obj Object, p *PoseNet) Status {
	var seen [4]bool
	order := p.TensorOrder()
	for _, idx := range order {
		if seen[idx] {
			log.Warn().Ints("order", order[:]).Msg("Tensor indices overlap, using default order")
			def := DefaultPoseNet()
			p.HeatmapIndex = def.HeatmapIndex
			p.OffsetIndex = def.OffsetIndex
			p.ForwardDisplacementIndex = def.ForwardDisplacementIndex
			p.BackwardDisplacementIndex = def.BackwardDisplacementIndex
			obj.Set("heatmap_index", float64(def.HeatmapIndex))
			obj.Set("offset_index", float64(def.OffsetIndex))
			obj.Set("forward_displacement_index", float64(def.ForwardDisplacementIndex))
			obj.Set("backward_displacement_index", float64(def.BackwardDisplacementIndex))
			return StatusOutOfRange
		}
		seen[idx] = true
	}
	return StatusOk
}
