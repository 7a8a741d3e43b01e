/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package draw overlays decoded results on an image.
package draw

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/mpromonet/gin-postproc/internal/detection"
	"github.com/mpromonet/gin-postproc/internal/posenet"
)

var (
	boxColor      = color.RGBA{0, 255, 0, 0}
	areaColor     = color.RGBA{255, 128, 0, 0}
	keypointColor = color.RGBA{255, 0, 0, 0}
	boneColor     = color.RGBA{0, 255, 255, 0}
)

// Scale maps model input pixels to image pixels.
type Scale struct {
	X, Y float64
}

// ScaleFor returns the scale from a w x h model input to img.
func ScaleFor(img gocv.Mat, w, h int) Scale {
	if w <= 1 || h <= 1 {
		return Scale{X: 1, Y: 1}
	}
	return Scale{X: float64(img.Cols()) / float64(w), Y: float64(img.Rows()) / float64(h)}
}

func (s Scale) rect(b detection.BBox) image.Rectangle {
	return image.Rect(
		int(float64(b.Left)*s.X), int(float64(b.Top)*s.Y),
		int(float64(b.Right)*s.X), int(float64(b.Bottom)*s.Y),
	)
}

// Detections draws a labelled box per detection.
func Detections(img *gocv.Mat, set detection.Set, labels func(int) string, s Scale) {
	for _, d := range set {
		r := s.rect(d.BBox)
		gocv.Rectangle(img, r, boxColor, 2)
		text := fmt.Sprintf("%s %.2f", labels(int(d.ClassID)), d.Score)
		gocv.PutText(img, text, image.Pt(r.Min.X, max(r.Min.Y-4, 12)), gocv.FontHersheySimplex, 0.5, boxColor, 1)
	}
}

// Area draws the counting rectangle.
func Area(img *gocv.Mat, rect detection.BBox, s Scale) {
	gocv.Rectangle(img, s.rect(rect), areaColor, 1)
}

// Poses draws keypoints scoring at least minScore and the bones joining
// them. Keypoints are normalized to the image.
func Poses(img *gocv.Mat, set posenet.Set, minScore float32) {
	w, h := float32(img.Cols()-1), float32(img.Rows()-1)
	at := func(kp posenet.Keypoint) image.Point {
		return image.Pt(int(kp.X*w+0.5), int(kp.Y*h+0.5))
	}
	for _, pose := range set {
		for _, e := range posenet.Edges {
			a, b := pose.Keypoints[e.Parent], pose.Keypoints[e.Child]
			if a.Score >= minScore && b.Score >= minScore {
				gocv.Line(img, at(a), at(b), boneColor, 2)
			}
		}
		for _, kp := range pose.Keypoints {
			if kp.Score >= minScore {
				gocv.Circle(img, at(kp), 3, keypointColor, -1)
			}
		}
	}
}

// JPEG encodes img.
func JPEG(img gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("draw: encode: %w", err)
	}
	defer buf.Close()
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
