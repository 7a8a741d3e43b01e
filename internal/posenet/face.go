/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package posenet

import (
	"math"
	"sort"
)

// faceBox is a square estimated around the face joints of a pose, in
// input tensor pixels.
type faceBox struct {
	x, y, w, h float32
	score      float32
	pose       int
}

const faceJoints = int(RightEar) + 1

func newFaceBox(i int, p Pose, baseW, baseH float32) faceBox {
	f := faceBox{pose: i, score: p.Score}
	var ax, ay float32
	for key := 0; key < faceJoints; key++ {
		f.score = max(f.score, p.Keypoints[key].Score)
		ax += p.Keypoints[key].X
		ay += p.Keypoints[key].Y
	}
	ax /= float32(faceJoints)
	ay /= float32(faceJoints)

	right, left := p.Keypoints[RightEar], p.Keypoints[LeftEar]
	size := hypot(ax-right.X, ay-right.Y) + hypot(ax-left.X, ay-left.Y)
	size *= baseW * 1.5

	f.w = round(size)
	f.h = round(size)
	f.x = clampf(round(ax*baseW-size/2), 0, baseW-1)
	f.y = clampf(round(ay*baseH-size/2), 0, baseH-1)
	return f
}

// iou is zero when either box is empty.
func iou(a, b faceBox) float32 {
	ax0, ax1 := min(a.x, a.x+a.w), max(a.x, a.x+a.w)
	ay0, ay1 := min(a.y, a.y+a.h), max(a.y, a.y+a.h)
	bx0, bx1 := min(b.x, b.x+b.w), max(b.x, b.x+b.w)
	by0, by1 := min(b.y, b.y+b.h), max(b.y, b.y+b.h)

	areaA := (ay1 - ay0) * (ax1 - ax0)
	areaB := (by1 - by0) * (bx1 - bx0)
	if areaA <= 0 || areaB <= 0 {
		return 0
	}
	inter := max(min(ay1, by1)-max(ay0, by0), 0) * max(min(ax1, bx1)-max(ax0, bx0), 0)
	return inter / (areaA + areaB - inter)
}

// suppressByFace keeps the poses whose face box overlaps no better-scored
// kept face by iouThreshold or more.
func suppressByFace(poses []Pose, iouThreshold, baseW, baseH float32) []Pose {
	faces := make([]faceBox, len(poses))
	for i, p := range poses {
		faces[i] = newFaceBox(i, p, baseW, baseH)
	}
	sort.SliceStable(faces, func(i, j int) bool { return faces[i].score > faces[j].score })

	var kept []faceBox
	out := make([]Pose, 0, len(poses))
	for _, f := range faces {
		suppressed := false
		for _, k := range kept {
			if iou(f, k) >= iouThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, f)
			out = append(out, poses[f.pose])
		}
	}
	return out
}

func hypot(x, y float32) float32 {
	return float32(math.Hypot(float64(x), float64(y)))
}

func round(v float32) float32 {
	return float32(math.Round(float64(v)))
}

func clampf(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
