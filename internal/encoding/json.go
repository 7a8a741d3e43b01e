/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package encoding

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/mpromonet/gin-postproc/internal/detection"
	"github.com/mpromonet/gin-postproc/internal/posenet"
)

type BoundingBoxJSON struct {
	Left   uint16 `json:"left"`
	Top    uint16 `json:"top"`
	Right  uint16 `json:"right"`
	Bottom uint16 `json:"bottom"`
}

type DetectionJSON struct {
	ClassID     uint16          `json:"class_id"`
	Score       float32         `json:"score"`
	BoundingBox BoundingBoxJSON `json:"bounding_box"`
}

// AreaCountJSON keeps first-seen class order when marshaled.
type AreaCountJSON detection.AreaCount

func (c AreaCountJSON) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cc := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.FormatUint(uint64(cc.ClassID), 10))
		buf.WriteString(`":`)
		buf.WriteString(strconv.FormatUint(uint64(cc.Count), 10))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type AreaDetectionsJSON struct {
	AreaCount  AreaCountJSON   `json:"area_count"`
	Detections []DetectionJSON `json:"detections"`
}

type PointJSON struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

type KeypointJSON struct {
	Score float32   `json:"score"`
	Point PointJSON `json:"point"`
	Name  uint8     `json:"name"`
}

type PoseJSON struct {
	Keypoint []KeypointJSON `json:"keypoint"`
	Score    float32        `json:"score"`
}

func detectionsToJSON(set detection.Set) []DetectionJSON {
	out := make([]DetectionJSON, len(set))
	for i, d := range set {
		out[i] = DetectionJSON{
			ClassID: d.ClassID,
			Score:   d.Score,
			BoundingBox: BoundingBoxJSON{
				Left: d.BBox.Left, Top: d.BBox.Top, Right: d.BBox.Right, Bottom: d.BBox.Bottom,
			},
		}
	}
	return out
}

// DetectionsJSON renders a list of detections, wrapped with the area counts
// when an area is configured.
func DetectionsJSON(d Detections) ([]byte, error) {
	list := detectionsToJSON(d.Set)
	if !d.WithArea {
		return json.Marshal(list)
	}
	counts := AreaCountJSON(d.Counts)
	if counts == nil {
		counts = AreaCountJSON{}
	}
	return json.Marshal(AreaDetectionsJSON{AreaCount: counts, Detections: list})
}

// PosesJSON renders poses with pixel keypoints.
func PosesJSON(p Poses) ([]byte, error) {
	out := make([]PoseJSON, len(p.Set))
	for i, pose := range p.Set {
		kps := make([]KeypointJSON, posenet.NumKeypoints)
		for j, kp := range pose.Keypoints {
			kps[j] = KeypointJSON{
				Score: kp.Score,
				Point: PointJSON{X: pixel(kp.X, p.InputWidth), Y: pixel(kp.Y, p.InputHeight)},
				Name:  uint8(j),
			}
		}
		out[i] = PoseJSON{Keypoint: kps, Score: pose.Score}
	}
	return json.Marshal(out)
}
