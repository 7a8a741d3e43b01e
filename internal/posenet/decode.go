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

const (
	localMaxRadius = 1
	refineSteps    = 10
	maxInstances   = 20
)

// part is a heatmap cell that scores as a local maximum for one joint.
type part struct {
	score float32
	x, y  int
	key   int
}

type joint struct {
	x, y  float32 // input tensor pixels
	score float32
	valid bool
}

// decoder walks the interleaved maps. Positions are expressed in input
// tensor pixels, indices in output grid cells.
type decoder struct {
	m              maps
	w, h           int
	inW, inH       float32
	scoreThreshold float32
	nmsRadius      float32
	edges          []Edge
}

func sigmoid(v float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(v))))
}

func (d *decoder) score(x, y, key int) float32 {
	return sigmoid(d.m[Heatmap][(y*d.w+x)*HeatmapDepth+key])
}

// isLocalMax fails only when a neighbour scores strictly higher.
func (d *decoder) isLocalMax(x, y, key int, s float32) bool {
	x0, y0 := max(x-localMaxRadius, 0), max(y-localMaxRadius, 0)
	x1, y1 := min(x+localMaxRadius+1, d.w), min(y+localMaxRadius+1, d.h)
	for yy := y0; yy < y1; yy++ {
		for xx := x0; xx < x1; xx++ {
			if d.score(xx, yy, key) > s {
				return false
			}
		}
	}
	return true
}

// parts lists local maxima above threshold, best first.
func (d *decoder) parts() []part {
	var list []part
	for y := 0; y < d.h; y++ {
		for x := 0; x < d.w; x++ {
			for key := 0; key < NumKeypoints; key++ {
				s := d.score(x, y, key)
				if s < d.scoreThreshold || !d.isLocalMax(x, y, key, s) {
					continue
				}
				list = append(list, part{score: s, x: x, y: y, key: key})
			}
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].score > list[j].score })
	return list
}

func (d *decoder) offset(x, y, key int) (dx, dy float32) {
	base := (y*d.w + x) * OffsetDepth
	return d.m[Offset][base+key+NumKeypoints], d.m[Offset][base+key]
}

// indexToPos maps a grid cell to its offset-corrected pixel position.
func (d *decoder) indexToPos(x, y, key int) (px, py float32) {
	ox, oy := d.offset(x, y, key)
	relX := float32(x) / float32(d.w-1)
	relY := float32(y) / float32(d.h-1)
	return relX*d.inW + ox, relY*d.inH + oy
}

// nearestIndex snaps a pixel position to the closest grid cell.
func (d *decoder) nearestIndex(px, py float32) (x, y int) {
	x = int(math.Round(float64(px / d.inW * float32(d.w-1))))
	y = int(math.Round(float64(py / d.inH * float32(d.h-1))))
	return clamp(x, 0, d.w-1), clamp(y, 0, d.h-1)
}

func (d *decoder) displacement(disp []float32, x, y, edge int) (dx, dy float32) {
	base := (y*d.w + x) * DisplacementDepth
	return disp[base+edge+modelEdges], disp[base+edge]
}

// traverse places target from source along edge, then refines the
// position by snapping to the grid until it no longer moves.
func (d *decoder) traverse(edge int, joints *[NumKeypoints]joint, source, target int, disp []float32) {
	sx, sy := joints[source].x, joints[source].y
	ix, iy := d.nearestIndex(sx, sy)
	dx, dy := d.displacement(disp, ix, iy, edge)
	tx, ty := sx+dx, sy+dy

	var tix, tiy int
	for i := 0; i < refineSteps; i++ {
		tix, tiy = d.nearestIndex(tx, ty)
		px, py := tx, ty
		tx, ty = d.indexToPos(tix, tiy, target)
		if px == tx && py == ty {
			break
		}
	}
	joints[target] = joint{x: tx, y: ty, score: d.score(tix, tiy, target), valid: true}
}

// instance decodes the full skeleton grown from root.
func (d *decoder) instance(root part, px, py float32) [NumKeypoints]joint {
	var joints [NumKeypoints]joint
	joints[root.key] = joint{x: px, y: py, score: root.score, valid: true}

	for e := len(d.edges) - 1; e >= 0; e-- {
		src, dst := int(d.edges[e].Child), int(d.edges[e].Parent)
		if joints[src].valid && !joints[dst].valid {
			d.traverse(e, &joints, src, dst, d.m[BackwardDisplacement])
		}
	}
	for e := range d.edges {
		src, dst := int(d.edges[e].Parent), int(d.edges[e].Child)
		if joints[src].valid && !joints[dst].valid {
			d.traverse(e, &joints, src, dst, d.m[ForwardDisplacement])
		}
	}
	return joints
}

// withinNMS reports whether key at (px, py) falls inside the NMS radius of
// the same joint on an accepted pose.
func (d *decoder) withinNMS(poses []Pose, key int, px, py float32) bool {
	r2 := d.nmsRadius * d.nmsRadius
	for i := range poses {
		kp := poses[i].Keypoints[key]
		dx := px - kp.X*d.inW
		dy := py - kp.Y*d.inH
		if dx*dx+dy*dy <= r2 {
			return true
		}
	}
	return false
}

// instanceScore averages joint scores over the skeleton, leaving out
// joints already claimed by an accepted pose.
func (d *decoder) instanceScore(poses []Pose, joints *[NumKeypoints]joint) float32 {
	var total float32
	for key := range joints {
		if d.withinNMS(poses, key, joints[key].x, joints[key].y) {
			continue
		}
		total += joints[key].score
	}
	return total / NumKeypoints
}

// decode runs greedy instance assembly over the part list.
func (d *decoder) decode() []Pose {
	var poses []Pose
	for _, pt := range d.parts() {
		if len(poses) >= maxInstances {
			break
		}
		px, py := d.indexToPos(pt.x, pt.y, pt.key)
		if d.withinNMS(poses, pt.key, px, py) {
			continue
		}
		joints := d.instance(pt, px, py)
		pose := Pose{Score: d.instanceScore(poses, &joints)}
		for key, j := range joints {
			pose.Keypoints[key] = Keypoint{X: j.x / d.inW, Y: j.y / d.inH, Score: j.score}
		}
		poses = append(poses, pose)
	}
	return poses
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
