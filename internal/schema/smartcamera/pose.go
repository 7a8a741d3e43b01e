/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package smartcamera

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

type Point2d struct {
	_tab flatbuffers.Struct
}

func (rcv *Point2d) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *Point2d) X() int32 {
	return rcv._tab.GetInt32(rcv._tab.Pos + flatbuffers.UOffsetT(0))
}
func (rcv *Point2d) Y() int32 {
	return rcv._tab.GetInt32(rcv._tab.Pos + flatbuffers.UOffsetT(4))
}

func CreatePoint2d(builder *flatbuffers.Builder, x, y int32) flatbuffers.UOffsetT {
	builder.Prep(4, 8)
	builder.PrependInt32(y)
	builder.PrependInt32(x)
	return builder.Offset()
}

type KeyPoint struct {
	_tab flatbuffers.Table
}

func (rcv *KeyPoint) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *KeyPoint) Score() float32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetFloat32(o + rcv._tab.Pos)
	}
	return 0.0
}

func (rcv *KeyPoint) Point(obj *Point2d) *Point2d {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		x := o + rcv._tab.Pos
		if obj == nil {
			obj = new(Point2d)
		}
		obj.Init(rcv._tab.Bytes, x)
		return obj
	}
	return nil
}

func (rcv *KeyPoint) Name() byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(8))
	if o != 0 {
		return rcv._tab.GetByte(o + rcv._tab.Pos)
	}
	return 0
}

func KeyPointStart(builder *flatbuffers.Builder) {
	builder.StartObject(3)
}
func KeyPointAddScore(builder *flatbuffers.Builder, score float32) {
	builder.PrependFloat32Slot(0, score, 0.0)
}

// KeyPointAddPoint must directly follow CreatePoint2d.
func KeyPointAddPoint(builder *flatbuffers.Builder, point flatbuffers.UOffsetT) {
	builder.PrependStructSlot(1, point, 0)
}
func KeyPointAddName(builder *flatbuffers.Builder, name byte) {
	builder.PrependByteSlot(2, name, 0)
}
func KeyPointEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}

type GeneralPose struct {
	_tab flatbuffers.Table
}

func (rcv *GeneralPose) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *GeneralPose) Score() float32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetFloat32(o + rcv._tab.Pos)
	}
	return 0.0
}

func (rcv *GeneralPose) KeypointList(obj *KeyPoint, j int) bool {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		x := rcv._tab.Vector(o)
		x += flatbuffers.UOffsetT(j) * 4
		x = rcv._tab.Indirect(x)
		obj.Init(rcv._tab.Bytes, x)
		return true
	}
	return false
}

func (rcv *GeneralPose) KeypointListLength() int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

func GeneralPoseStart(builder *flatbuffers.Builder) {
	builder.StartObject(2)
}
func GeneralPoseAddScore(builder *flatbuffers.Builder, score float32) {
	builder.PrependFloat32Slot(0, score, 0.0)
}
func GeneralPoseAddKeypointList(builder *flatbuffers.Builder, keypointList flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(1, keypointList, 0)
}
func GeneralPoseStartKeypointListVector(builder *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT {
	return builder.StartVector(4, numElems, 4)
}
func GeneralPoseEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}

type PoseEstimationTop struct {
	_tab flatbuffers.Table
}

func GetRootAsPoseEstimationTop(buf []byte, offset flatbuffers.UOffsetT) *PoseEstimationTop {
	n := flatbuffers.GetUOffsetT(buf[offset:])
	x := &PoseEstimationTop{}
	x.Init(buf, n+offset)
	return x
}

func (rcv *PoseEstimationTop) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *PoseEstimationTop) Perception(obj *GeneralPose, j int) bool {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		x := rcv._tab.Vector(o)
		x += flatbuffers.UOffsetT(j) * 4
		x = rcv._tab.Indirect(x)
		obj.Init(rcv._tab.Bytes, x)
		return true
	}
	return false
}

func (rcv *PoseEstimationTop) PerceptionLength() int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

func PoseEstimationTopStart(builder *flatbuffers.Builder) {
	builder.StartObject(1)
}
func PoseEstimationTopAddPerception(builder *flatbuffers.Builder, perception flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(0, perception, 0)
}
func PoseEstimationTopStartPerceptionVector(builder *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT {
	return builder.StartVector(4, numElems, 4)
}
func PoseEstimationTopEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}
