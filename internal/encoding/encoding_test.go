/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package encoding

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpromonet/gin-postproc/internal/detection"
	"github.com/mpromonet/gin-postproc/internal/params"
	"github.com/mpromonet/gin-postproc/internal/posenet"
	"github.com/mpromonet/gin-postproc/internal/tensor"
)

func sampleSet() detection.Set {
	return detection.Set{
		{ClassID: 0, Score: 0.92, BBox: detection.BBox{Left: 68, Top: 240, Right: 172, Bottom: 356}},
		{ClassID: 5, Score: 0.5, BBox: detection.BBox{Left: 1, Top: 2, Right: 3, Bottom: 4}},
	}
}

func TestDetectionsJSONRoundTrip(t *testing.T) {
	p := params.DefaultDetection()
	p.BBoxOrder = params.BBoxXYXY
	p.BBoxNormalized = false
	data := []float32{
		68, 10, // left
		240, 20, // top
		172, 30, // right
		356, 40, // bottom
		0, 3, // class
		0.92, 0.61, // score
		2,
	}
	v, err := tensor.NewView(data)
	require.NoError(t, err)
	set, err := detection.Decode(v, p)
	require.NoError(t, err)
	require.Len(t, set, 2)

	raw, err := EncodeDetections(params.FormatJSON, Detections{Set: set})
	require.NoError(t, err)

	var back []DetectionJSON
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Len(t, back, len(set))
	for i, d := range set {
		assert.Equal(t, d.ClassID, back[i].ClassID)
		assert.Equal(t, d.Score, back[i].Score)
		assert.Equal(t, BoundingBoxJSON{Left: d.BBox.Left, Top: d.BBox.Top, Right: d.BBox.Right, Bottom: d.BBox.Bottom}, back[i].BoundingBox)
	}
}

func TestDetectionsJSONShape(t *testing.T) {
	raw, err := DetectionsJSON(Detections{Set: sampleSet()[:1]})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"class_id":0,"score":0.92,"bounding_box":{"left":68,"top":240,"right":172,"bottom":356}}]`, string(raw))

	raw, err = DetectionsJSON(Detections{Set: detection.Set{}})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestDetectionsJSONWithArea(t *testing.T) {
	raw, err := DetectionsJSON(Detections{
		Set:      sampleSet(),
		Counts:   detection.AreaCount{{ClassID: 5, Count: 1}, {ClassID: 0, Count: 2}},
		WithArea: true,
	})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"area_count":{"5":1,"0":2}`)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Len(t, doc["detections"], 2)

	raw, err = DetectionsJSON(Detections{Set: sampleSet(), WithArea: true})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"area_count":{}`)
}

func TestDetectionsFlatbufferRoundTrip(t *testing.T) {
	in := Detections{
		Set:      sampleSet(),
		Counts:   detection.AreaCount{{ClassID: 0, Count: 3}},
		WithArea: true,
	}
	raw, err := EncodeDetections(params.FormatBase64, in)
	require.NoError(t, err)

	out, err := ReadDetectionsFlatbuffer(raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	raw = DetectionsFlatbuffer(Detections{Set: detection.Set{}})
	out, err = ReadDetectionsFlatbuffer(raw)
	require.NoError(t, err)
	assert.Empty(t, out.Set)
	assert.False(t, out.WithArea)

	_, err = ReadDetectionsFlatbuffer([]byte{1})
	assert.ErrorIs(t, err, ErrShortRecord)
}

func samplePoses() Poses {
	var pose posenet.Pose
	pose.Score = 0.8
	for i := range pose.Keypoints {
		pose.Keypoints[i] = posenet.Keypoint{X: 0.5, Y: 1, Score: float32(i) / 20}
	}
	return Poses{Set: posenet.Set{pose}, InputWidth: 481, InputHeight: 353}
}

func TestPosesJSON(t *testing.T) {
	raw, err := EncodePoses(params.FormatJSON, samplePoses())
	require.NoError(t, err)

	var back []PoseJSON
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Len(t, back, 1)
	assert.Equal(t, float32(0.8), back[0].Score)
	require.Len(t, back[0].Keypoint, posenet.NumKeypoints)
	// 0.5*480 and 1*352
	assert.Equal(t, PointJSON{X: 240, Y: 352}, back[0].Keypoint[3].Point)
	assert.Equal(t, uint8(3), back[0].Keypoint[3].Name)
}

func TestPosesFlatbufferRoundTrip(t *testing.T) {
	in := samplePoses()
	raw, err := EncodePoses(params.FormatBase64, in)
	require.NoError(t, err)

	out, err := ReadPosesFlatbuffer(raw)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, float32(0.8), out[0].Score)
	for i, kp := range out[0].Keypoints {
		assert.Equal(t, int32(240), kp.X)
		assert.Equal(t, int32(352), kp.Y)
		assert.Equal(t, in.Set[0].Keypoints[i].Score, kp.Score)
	}
}

func TestUnknownFormat(t *testing.T) {
	_, err := EncodeDetections(params.Format(9), Detections{})
	assert.Error(t, err)
	_, err = EncodePoses(params.Format(9), Poses{})
	assert.Error(t, err)
}
