/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package params

import "math"

// BBoxOrder is the order of the four box coordinates in the raw tensor.
type BBoxOrder int

const (
	BBoxYXYX BBoxOrder = iota
	BBoxXYXY
	BBoxXXYY
	BBoxXYWH
)

var bboxOrderNames = map[string]BBoxOrder{
	"yxyx": BBoxYXYX,
	"xyxy": BBoxXYXY,
	"xxyy": BBoxXXYY,
	"xywh": BBoxXYWH,
}

// ParseBBoxOrder maps a configuration name to a BBoxOrder.
func ParseBBoxOrder(s string) (BBoxOrder, bool) {
	o, ok := bboxOrderNames[s]
	return o, ok
}

func (o BBoxOrder) String() string {
	for name, v := range bboxOrderNames {
		if v == o {
			return name
		}
	}
	return "unknown"
}

// ClassScoreOrder tells which of the class and score planes comes first.
type ClassScoreOrder int

const (
	ClassThenScore ClassScoreOrder = iota
	ScoreThenClass
)

// ParseClassScoreOrder maps a configuration name to a ClassScoreOrder.
func ParseClassScoreOrder(s string) (ClassScoreOrder, bool) {
	switch s {
	case "cls_score":
		return ClassThenScore, true
	case "score_cls":
		return ScoreThenClass, true
	}
	return ClassThenScore, false
}

func (o ClassScoreOrder) String() string {
	if o == ScoreThenClass {
		return "score_cls"
	}
	return "cls_score"
}

const (
	DefaultMaxDetections   = 10
	DefaultThreshold       = 0.3
	DefaultInputWidth      = 320
	DefaultInputHeight     = 320
	DefaultBBoxOrder       = "yxyx"
	DefaultClassScoreOrder = "cls_score"
)

// Detection configures the object-detection decoder.
type Detection struct {
	MaxDetections   int
	Threshold       float32
	InputWidth      int
	InputHeight     int
	BBoxOrder       BBoxOrder
	BBoxNormalized  bool
	ClassScoreOrder ClassScoreOrder
	// UseTensorCount caps iteration at the trailing count element of the tensor.
	UseTensorCount bool
}

// DefaultDetection returns the compiled-in detection parameters.
func DefaultDetection() Detection {
	return Detection{
		MaxDetections:   DefaultMaxDetections,
		Threshold:       DefaultThreshold,
		InputWidth:      DefaultInputWidth,
		InputHeight:     DefaultInputHeight,
		BBoxOrder:       BBoxYXYX,
		BBoxNormalized:  true,
		ClassScoreOrder: ClassThenScore,
	}
}

// DetectionExtractors lists one extractor per recognized detection field.
func DetectionExtractors() []Extractor[Detection] {
	return []Extractor[Detection]{
		Integer("max_detections", DefaultMaxDetections, 0, math.MaxUint16, func(p *Detection, v int) { p.MaxDetections = v }),
		Bool("bbox_normalization", true, func(p *Detection, v bool) { p.BBoxNormalized = v }),
		Enum("bbox_order", DefaultBBoxOrder, ParseBBoxOrder, func(p *Detection, v BBoxOrder) { p.BBoxOrder = v }),
		Enum("class_score_order", DefaultClassScoreOrder, ParseClassScoreOrder, func(p *Detection, v ClassScoreOrder) { p.ClassScoreOrder = v }),
		Number("threshold", DefaultThreshold, 0, 1, func(p *Detection, v float64) { p.Threshold = float32(v) }),
		Integer("input_height", DefaultInputHeight, 1, math.MaxUint16, func(p *Detection, v int) { p.InputHeight = v }),
		Integer("input_width", DefaultInputWidth, 1, math.MaxUint16, func(p *Detection, v int) { p.InputWidth = v }),
		Bool("use_tensor_count", false, func(p *Detection, v bool) { p.UseTensorCount = v }),
	}
}
