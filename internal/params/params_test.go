/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseParams(t *testing.T, raw string) Object {
	t.Helper()
	doc, err := ParseDocument([]byte(raw))
	require.NoError(t, err)
	return doc.Root()
}

func TestParseDocument(t *testing.T) {
	_, err := ParseDocument([]byte("{not json"))
	assert.Error(t, err)

	_, err = ParseDocument([]byte("null"))
	assert.ErrorIs(t, err, ErrNotObject)

	doc, err := ParseDocument([]byte(`{"a":{"b":{"c":1}}}`))
	require.NoError(t, err)
	obj, ok := doc.Root().Object("a", "b")
	require.True(t, ok)
	v, lookup := obj.Number("c")
	assert.Equal(t, Found, lookup)
	assert.Equal(t, 1.0, v)

	_, ok = doc.Root().Object("a", "missing")
	assert.False(t, ok)
}

func TestDetectionDefaults(t *testing.T) {
	obj := parseParams(t, `{}`)
	p := Detection{}
	st := Run(obj, &p, DetectionExtractors())

	assert.Equal(t, StatusInvalid, st)
	assert.Equal(t, DefaultDetection(), p)
	for _, key := range []string{"max_detections", "threshold", "input_width", "input_height"} {
		assert.True(t, obj.Has(key), key)
	}
	s, _ := obj.String("bbox_order")
	assert.Equal(t, "yxyx", s)
}

func TestDetectionValid(t *testing.T) {
	obj := parseParams(t, `{"max_detections":5,"threshold":0.6,"input_width":300,"input_height":200,
		"bbox_order":"xywh","bbox_normalization":false,"class_score_order":"score_cls","use_tensor_count":true}`)
	var p Detection
	require.Equal(t, StatusOk, Run(obj, &p, DetectionExtractors()))
	assert.Equal(t, Detection{
		MaxDetections:   5,
		Threshold:       0.6,
		InputWidth:      300,
		InputHeight:     200,
		BBoxOrder:       BBoxXYWH,
		BBoxNormalized:  false,
		ClassScoreOrder: ScoreThenClass,
		UseTensorCount:  true,
	}, p)
}

func TestDetectionOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Status
		key  string
	}{
		{"threshold above one", `{"threshold":1.5}`, StatusOutOfRange, "threshold"},
		{"negative max", `{"max_detections":-1}`, StatusOutOfRange, "max_detections"},
		{"threshold as string", `{"threshold":"high"}`, StatusInvalid, "threshold"},
		{"unknown bbox order", `{"bbox_order":"abcd"}`, StatusOutOfRange, "bbox_order"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := parseParams(t, `{"max_detections":10,"threshold":0.3,"input_width":320,"input_height":320}`)
			patch := parseParams(t, tt.raw)
			for k, v := range patch {
				obj.Set(k, v)
			}
			var p Detection
			assert.Equal(t, tt.want, Run(obj, &p, DetectionExtractors()))
			assert.Equal(t, DefaultDetection(), p)
		})
	}
}

func TestRunReturnsFirstFailure(t *testing.T) {
	obj := parseParams(t, `{"max_detections":-3,"input_width":320,"input_height":320}`)
	var p Detection
	// max_detections is out of range and runs before the missing threshold
	assert.Equal(t, StatusOutOfRange, Run(obj, &p, DetectionExtractors()))
	v, _ := obj.Number("threshold")
	assert.InDelta(t, DefaultThreshold, v, 1e-9)
}

func TestPoseNetTensorOrder(t *testing.T) {
	obj := parseParams(t, `{"input_width":481,"input_height":353,"output_width":31,"output_height":23,
		"score_threshold":0.5,"iou_threshold":0.28,"nms_radius":20,"max_pose_detections":15,
		"heatmap_index":3,"offset_index":2,"forward_displacement_index":1,"backward_displacement_index":0}`)
	var p PoseNet
	require.Equal(t, StatusOk, Run(obj, &p, PoseNetExtractors()))
	assert.Equal(t, [4]int{3, 2, 1, 0}, p.TensorOrder())

	obj.Set("offset_index", 3.0)
	assert.Equal(t, StatusOutOfRange, Run(obj, &p, PoseNetExtractors()))
	assert.Equal(t, [4]int{0, 1, 2, 3}, p.TensorOrder())
	v, _ := obj.Number("heatmap_index")
	assert.Equal(t, 0.0, v)
}

func TestPoseNetOutputDims(t *testing.T) {
	obj := parseParams(t, `{"output_width":1}`)
	var p PoseNet
	assert.NotEqual(t, StatusOk, Run(obj, &p, PoseNetExtractors()))
	assert.Equal(t, DefaultPoseOutputWidth, p.OutputWidth)
}

func TestParseArea(t *testing.T) {
	_, ok, st := ParseArea(parseParams(t, `{}`))
	assert.False(t, ok)
	assert.Equal(t, StatusOk, st)

	area, ok, st := ParseArea(parseParams(t,
		`{"area":{"coordinates":{"left":15,"top":10,"right":470,"bottom":470},"overlap":0.5,"class_id":[1,2]}}`))
	require.True(t, ok)
	assert.Equal(t, StatusOk, st)
	assert.Equal(t, Area{Left: 15, Top: 10, Right: 470, Bottom: 470, Overlap: 0.5, ClassIDs: []uint16{1, 2}}, area)

	_, ok, st = ParseArea(parseParams(t, `{"area":{"class_id":[0,1,2,3,4,5,6,7,8,9,10]}}`))
	assert.False(t, ok)
	assert.Equal(t, StatusInvalid, st)
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatBase64, ParseFormat(parseParams(t, `{}`)))
	assert.Equal(t, FormatJSON, ParseFormat(parseParams(t, `{"metadata_settings":{"format":1}}`)))
	assert.Equal(t, FormatBase64, ParseFormat(parseParams(t, `{"metadata_settings":{"format":7}}`)))
}

func TestStoreSnapshot(t *testing.T) {
	s := NewStore(DefaultDetection())
	snap := s.Load()
	s.Update(func(cur *Detection) { cur.Threshold = 0.9 })
	assert.Equal(t, float32(DefaultThreshold), snap.Threshold)
	assert.Equal(t, float32(0.9), s.Load().Threshold)
}
