/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package inference

import (
	"fmt"
	"image"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

// YOLOPacker packs a YOLOv5 output [1,N,5+classes] of normalized
// cx,cy,w,h,objectness,class scores. Rows under ScoreThreshold are dropped
// and the rest go through non-maximum suppression. The result decodes with
// bbox_order xywh, normalized boxes and cls_score.
type YOLOPacker struct {
	// Width and Height are the pixel grid suppression runs on.
	Width, Height  int
	ScoreThreshold float32
	NMSThreshold   float32
}

func (p YOLOPacker) Pack(outputs [][]float32, shapes [][]int) ([]float32, error) {
	if len(outputs) == 0 || len(shapes) == 0 || len(shapes[0]) != 3 || shapes[0][2] < 6 {
		return nil, fmt.Errorf("%w: yolo needs one [1,N,C>=6] output", ErrShape)
	}
	loc := outputs[0]
	stride := shapes[0][2]
	total := min(elements(shapes[0]), len(loc))

	rows := [][6]float32{}
	bboxes := []image.Rectangle{}
	confidences := []float32{}
	width, height := float32(p.Width), float32(p.Height)
	for idx := 0; idx+stride <= total; idx += stride {
		cx, cy, w, h := loc[idx], loc[idx+1], loc[idx+2], loc[idx+3]
		classID, classScore := argmax(loc[idx+5 : idx+stride])
		score := loc[idx+4] * classScore
		if score < p.ScoreThreshold {
			continue
		}
		left, top := cx-w/2, cy-h/2
		rows = append(rows, [6]float32{left, top, w, h, float32(classID), score})
		bboxes = append(bboxes, image.Rect(int(left*width), int(top*height), int((left+w)*width), int((top+h)*height)))
		confidences = append(confidences, score)
	}
	if len(rows) == 0 {
		return planar(nil), nil
	}

	indices := make([]int, len(bboxes))
	for i := range indices {
		indices[i] = -1
	}
	gocv.NMSBoxes(bboxes, confidences, p.ScoreThreshold, p.NMSThreshold, indices)

	kept := make([][6]float32, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 {
			kept = append(kept, rows[idx])
		}
	}
	log.Debug().Int("candidates", len(rows)).Int("kept", len(kept)).Msg("YOLO outputs")
	return planar(kept), nil
}
