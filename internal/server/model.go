/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/mpromonet/gin-postproc/internal/draw"
	"github.com/mpromonet/gin-postproc/internal/inference"
	"github.com/mpromonet/gin-postproc/internal/processor"
	"github.com/mpromonet/gin-postproc/internal/tensor"
)

var errNoModel = errors.New("no model loaded")

// infer decodes the uploaded image and returns it with the packed tensor.
// The caller closes the image.
func (s *Server) infer(c *gin.Context) (gocv.Mat, []float32, bool) {
	if s.model == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNoModel.Error()})
		return gocv.Mat{}, nil, false
	}
	body, ok := readBody(c)
	if !ok {
		return gocv.Mat{}, nil, false
	}
	img, err := gocv.IMDecode(body, gocv.IMReadColor)
	if err != nil || img.Empty() {
		if err == nil {
			img.Close()
			err = inference.ErrEmptyImage
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("decode image: %v", err)})
		return gocv.Mat{}, nil, false
	}
	log.Debug().Int("size", len(body)).Int("width", img.Cols()).Int("height", img.Rows()).Msg("Image received")

	outputs, shapes, err := s.model.Runner.Run(img)
	if err == nil {
		var packed []float32
		packed, err = s.model.Packer.Pack(outputs, shapes)
		if err == nil {
			return img, packed, true
		}
	}
	img.Close()
	log.Error().Err(err).Msg("Inference failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	return gocv.Mat{}, nil, false
}

func (s *Server) handleRunModel(c *gin.Context) {
	img, packed, ok := s.infer(c)
	if !ok {
		return
	}
	img.Close()

	res, err := s.proc.AnalyzeResult(packed)
	if err != nil {
		writeError(c, err)
		return
	}
	writeResult(c, res)
}

func (s *Server) handleAnnotate(c *gin.Context) {
	img, packed, ok := s.infer(c)
	if !ok {
		return
	}
	defer img.Close()

	v, err := tensor.NewView(packed)
	if err != nil {
		writeError(c, &processor.Error{Code: processor.InvalidParam, Op: "annotate", Err: err})
		return
	}
	switch p := s.proc.(type) {
	case *processor.Detection:
		res, err := p.Detect(v)
		if err != nil {
			writeError(c, err)
			return
		}
		scale := draw.ScaleFor(img, res.Params.InputWidth, res.Params.InputHeight)
		draw.Detections(&img, res.Set, func(class int) string { return inference.Label(s.model.Labels, class) }, scale)
		if res.WithArea {
			draw.Area(&img, res.Area.Rect, scale)
		}
	case *processor.PoseNet:
		res, err := p.Estimate(v)
		if err != nil {
			writeError(c, err)
			return
		}
		draw.Poses(&img, res.Set, res.Params.ScoreThreshold)
	default:
		c.JSON(http.StatusNotImplemented, gin.H{"error": "annotation not supported for " + s.proc.Name()})
		return
	}

	jpeg, err := draw.JPEG(img)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", jpeg)
}
