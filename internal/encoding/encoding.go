/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package encoding renders decoded results as JSON or as a flatbuffers
// record. Both renderers carry the same data.
package encoding

import (
	"fmt"
	"math"

	"github.com/mpromonet/gin-postproc/internal/detection"
	"github.com/mpromonet/gin-postproc/internal/params"
	"github.com/mpromonet/gin-postproc/internal/posenet"
)

// Detections is the output of one object-detection analysis.
type Detections struct {
	Set detection.Set
	// Counts is only rendered when WithArea is set.
	Counts   detection.AreaCount
	WithArea bool
}

// Poses is the output of one pose analysis. Keypoints are scaled to
// InputWidth x InputHeight pixels when rendered.
type Poses struct {
	Set         posenet.Set
	InputWidth  int
	InputHeight int
}

// EncodeDetections renders d in format f.
func EncodeDetections(f params.Format, d Detections) ([]byte, error) {
	switch f {
	case params.FormatJSON:
		return DetectionsJSON(d)
	case params.FormatBase64:
		return DetectionsFlatbuffer(d), nil
	}
	return nil, fmt.Errorf("encoding: unknown format %d", f)
}

// EncodePoses renders p in format f.
func EncodePoses(f params.Format, p Poses) ([]byte, error) {
	switch f {
	case params.FormatJSON:
		return PosesJSON(p)
	case params.FormatBase64:
		return PosesFlatbuffer(p), nil
	}
	return nil, fmt.Errorf("encoding: unknown format %d", f)
}

// pixel scales a normalized coordinate to a dim-wide axis.
func pixel(v float32, dim int) int32 {
	return int32(math.Round(float64(v) * float64(dim-1)))
}
