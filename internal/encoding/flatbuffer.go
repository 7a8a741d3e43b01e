/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package encoding

import (
	"errors"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/mpromonet/gin-postproc/internal/detection"
	"github.com/mpromonet/gin-postproc/internal/posenet"
	"github.com/mpromonet/gin-postproc/internal/schema/smartcamera"
)

// ErrShortRecord is returned when a record is too small to hold a root.
var ErrShortRecord = errors.New("encoding: record too short")

// DetectionsFlatbuffer builds an ObjectDetectionTop record.
func DetectionsFlatbuffer(d Detections) []byte {
	b := flatbuffers.NewBuilder(64 + 32*len(d.Set))

	objects := make([]flatbuffers.UOffsetT, len(d.Set))
	for i, det := range d.Set {
		smartcamera.GeneralObjectStart(b)
		smartcamera.GeneralObjectAddClassId(b, uint32(det.ClassID))
		smartcamera.GeneralObjectAddBoundingBox(b, smartcamera.CreateBoundingBox2d(b,
			det.BBox.Left, det.BBox.Top, det.BBox.Right, det.BBox.Bottom))
		smartcamera.GeneralObjectAddScore(b, det.Score)
		objects[i] = smartcamera.GeneralObjectEnd(b)
	}
	smartcamera.ObjectDetectionTopStartPerceptionVector(b, len(objects))
	for i := len(objects) - 1; i >= 0; i-- {
		b.PrependUOffsetT(objects[i])
	}
	perception := b.EndVector(len(objects))

	var counts flatbuffers.UOffsetT
	if d.WithArea {
		items := make([]flatbuffers.UOffsetT, len(d.Counts))
		for i, c := range d.Counts {
			smartcamera.CountDataStart(b)
			smartcamera.CountDataAddClassId(b, uint32(c.ClassID))
			smartcamera.CountDataAddCount(b, c.Count)
			items[i] = smartcamera.CountDataEnd(b)
		}
		smartcamera.ObjectDetectionTopStartAreaCountVector(b, len(items))
		for i := len(items) - 1; i >= 0; i-- {
			b.PrependUOffsetT(items[i])
		}
		counts = b.EndVector(len(items))
	}

	smartcamera.ObjectDetectionTopStart(b)
	smartcamera.ObjectDetectionTopAddPerception(b, perception)
	if d.WithArea {
		smartcamera.ObjectDetectionTopAddAreaCount(b, counts)
	}
	b.Finish(smartcamera.ObjectDetectionTopEnd(b))
	return b.FinishedBytes()
}

// PosesFlatbuffer builds a PoseEstimationTop record.
func PosesFlatbuffer(p Poses) []byte {
	b := flatbuffers.NewBuilder(64 + 512*len(p.Set))

	poses := make([]flatbuffers.UOffsetT, len(p.Set))
	var kps [posenet.NumKeypoints]flatbuffers.UOffsetT
	for i, pose := range p.Set {
		for j, kp := range pose.Keypoints {
			smartcamera.KeyPointStart(b)
			smartcamera.KeyPointAddScore(b, kp.Score)
			smartcamera.KeyPointAddPoint(b, smartcamera.CreatePoint2d(b,
				pixel(kp.X, p.InputWidth), pixel(kp.Y, p.InputHeight)))
			smartcamera.KeyPointAddName(b, byte(j))
			kps[j] = smartcamera.KeyPointEnd(b)
		}
		smartcamera.GeneralPoseStartKeypointListVector(b, len(kps))
		for j := len(kps) - 1; j >= 0; j-- {
			b.PrependUOffsetT(kps[j])
		}
		list := b.EndVector(len(kps))

		smartcamera.GeneralPoseStart(b)
		smartcamera.GeneralPoseAddScore(b, pose.Score)
		smartcamera.GeneralPoseAddKeypointList(b, list)
		poses[i] = smartcamera.GeneralPoseEnd(b)
	}
	smartcamera.PoseEstimationTopStartPerceptionVector(b, len(poses))
	for i := len(poses) - 1; i >= 0; i-- {
		b.PrependUOffsetT(poses[i])
	}
	perception := b.EndVector(len(poses))

	smartcamera.PoseEstimationTopStart(b)
	smartcamera.PoseEstimationTopAddPerception(b, perception)
	b.Finish(smartcamera.PoseEstimationTopEnd(b))
	return b.FinishedBytes()
}

// ReadDetectionsFlatbuffer decodes an ObjectDetectionTop record.
func ReadDetectionsFlatbuffer(buf []byte) (Detections, error) {
	if len(buf) < flatbuffers.SizeUOffsetT {
		return Detections{}, ErrShortRecord
	}
	top := smartcamera.GetRootAsObjectDetectionTop(buf, 0)
	var d Detections
	var obj smartcamera.GeneralObject
	var box smartcamera.BoundingBox2d
	for i := 0; i < top.PerceptionLength(); i++ {
		top.Perception(&obj, i)
		det := detection.Detection{ClassID: uint16(obj.ClassId()), Score: obj.Score()}
		if obj.BoundingBox(&box) != nil {
			det.BBox = detection.BBox{Left: box.Left(), Top: box.Top(), Right: box.Right(), Bottom: box.Bottom()}
		}
		d.Set = append(d.Set, det)
	}
	if n := top.AreaCountLength(); n > 0 {
		d.WithArea = true
		var c smartcamera.CountData
		for i := 0; i < n; i++ {
			top.AreaCount(&c, i)
			d.Counts = append(d.Counts, detection.ClassCount{ClassID: uint16(c.ClassId()), Count: c.Count()})
		}
	}
	return d, nil
}

// PosePixels is a pose read back from a record, in pixels.
type PosePixels struct {
	Score     float32
	Keypoints [posenet.NumKeypoints]KeypointPixels
}

type KeypointPixels struct {
	X, Y  int32
	Score float32
}

// ReadPosesFlatbuffer decodes a PoseEstimationTop record.
func ReadPosesFlatbuffer(buf []byte) ([]PosePixels, error) {
	if len(buf) < flatbuffers.SizeUOffsetT {
		return nil, ErrShortRecord
	}
	top := smartcamera.GetRootAsPoseEstimationTop(buf, 0)
	out := make([]PosePixels, top.PerceptionLength())
	var gp smartcamera.GeneralPose
	var kp smartcamera.KeyPoint
	var pt smartcamera.Point2d
	for i := range out {
		top.Perception(&gp, i)
		out[i].Score = gp.Score()
		for j := 0; j < gp.KeypointListLength(); j++ {
			gp.KeypointList(&kp, j)
			name := int(kp.Name())
			if name >= posenet.NumKeypoints {
				return nil, fmt.Errorf("encoding: keypoint name %d out of range", name)
			}
			k := KeypointPixels{Score: kp.Score()}
			if kp.Point(&pt) != nil {
				k.X, k.Y = pt.X(), pt.Y()
			}
			out[i].Keypoints[name] = k
		}
	}
	return out, nil
}
