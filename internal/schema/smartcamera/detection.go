/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package smartcamera holds the flatbuffers tables of smartcamera.fbs.
package smartcamera

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

type BoundingBox2d struct {
	_tab flatbuffers.Struct
}

func (rcv *BoundingBox2d) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *BoundingBox2d) Left() uint16 {
	return rcv._tab.GetUint16(rcv._tab.Pos + flatbuffers.UOffsetT(0))
}
func (rcv *BoundingBox2d) Top() uint16 {
	return rcv._tab.GetUint16(rcv._tab.Pos + flatbuffers.UOffsetT(2))
}
func (rcv *BoundingBox2d) Right() uint16 {
	return rcv._tab.GetUint16(rcv._tab.Pos + flatbuffers.UOffsetT(4))
}
func (rcv *BoundingBox2d) Bottom() uint16 {
	return rcv._tab.GetUint16(rcv._tab.Pos + flatbuffers.UOffsetT(6))
}

func CreateBoundingBox2d(builder *flatbuffers.Builder, left, top, right, bottom uint16) flatbuffers.UOffsetT {
	builder.Prep(2, 8)
	builder.PrependUint16(bottom)
	builder.PrependUint16(right)
	builder.PrependUint16(top)
	builder.PrependUint16(left)
	return builder.Offset()
}

type GeneralObject struct {
	_tab flatbuffers.Table
}

func (rcv *GeneralObject) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *GeneralObject) ClassId() uint32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetUint32(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *GeneralObject) BoundingBox(obj *BoundingBox2d) *BoundingBox2d {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		x := o + rcv._tab.Pos
		if obj == nil {
			obj = new(BoundingBox2d)
		}
		obj.Init(rcv._tab.Bytes, x)
		return obj
	}
	return nil
}

func (rcv *GeneralObject) Score() float32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(8))
	if o != 0 {
		return rcv._tab.GetFloat32(o + rcv._tab.Pos)
	}
	return 0.0
}

func GeneralObjectStart(builder *flatbuffers.Builder) {
	builder.StartObject(3)
}
func GeneralObjectAddClassId(builder *flatbuffers.Builder, classId uint32) {
	builder.PrependUint32Slot(0, classId, 0)
}

// GeneralObjectAddBoundingBox must directly follow CreateBoundingBox2d.
func GeneralObjectAddBoundingBox(builder *flatbuffers.Builder, boundingBox flatbuffers.UOffsetT) {
	builder.PrependStructSlot(1, boundingBox, 0)
}
func GeneralObjectAddScore(builder *flatbuffers.Builder, score float32) {
	builder.PrependFloat32Slot(2, score, 0.0)
}
func GeneralObjectEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}

type CountData struct {
	_tab flatbuffers.Table
}

func (rcv *CountData) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *CountData) ClassId() uint32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetUint32(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *CountData) Count() uint32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		return rcv._tab.GetUint32(o + rcv._tab.Pos)
	}
	return 0
}

func CountDataStart(builder *flatbuffers.Builder) {
	builder.StartObject(2)
}
func CountDataAddClassId(builder *flatbuffers.Builder, classId uint32) {
	builder.PrependUint32Slot(0, classId, 0)
}
func CountDataAddCount(builder *flatbuffers.Builder, count uint32) {
	builder.PrependUint32Slot(1, count, 0)
}
func CountDataEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}

type ObjectDetectionTop struct {
	_tab flatbuffers.Table
}

func GetRootAsObjectDetectionTop(buf []byte, offset flatbuffers.UOffsetT) *ObjectDetectionTop {
	n := flatbuffers.GetUOffsetT(buf[offset:])
	x := &ObjectDetectionTop{}
	x.Init(buf, n+offset)
	return x
}

func (rcv *ObjectDetectionTop) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *ObjectDetectionTop) Perception(obj *GeneralObject, j int) bool {
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

func (rcv *ObjectDetectionTop) PerceptionLength() int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

func (rcv *ObjectDetectionTop) AreaCount(obj *CountData, j int) bool {
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

func (rcv *ObjectDetectionTop) AreaCountLength() int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

func ObjectDetectionTopStart(builder *flatbuffers.Builder) {
	builder.StartObject(2)
}
func ObjectDetectionTopAddPerception(builder *flatbuffers.Builder, perception flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(0, perception, 0)
}
func ObjectDetectionTopStartPerceptionVector(builder *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT {
	return builder.StartVector(4, numElems, 4)
}
func ObjectDetectionTopAddAreaCount(builder *flatbuffers.Builder, areaCount flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(1, areaCount, 0)
}
func ObjectDetectionTopStartAreaCountVector(builder *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT {
	return builder.StartVector(4, numElems, 4)
}
func ObjectDetectionTopEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}
