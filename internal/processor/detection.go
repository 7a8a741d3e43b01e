/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package processor

import (
	"time"

	"github.com/mpromonet/gin-postproc/internal/detection"
	"github.com/mpromonet/gin-postproc/internal/encoding"
	"github.com/mpromonet/gin-postproc/internal/metrics"
	"github.com/mpromonet/gin-postproc/internal/params"
	"github.com/mpromonet/gin-postproc/internal/tensor"
)

// Detection post-processes object-detection tensors, with optional area
// counting.
type Detection struct {
	lifecycle
	cfg *configurer[params.Detection]
}

// NewDetection returns a detection processor with default parameters.
func NewDetection(opts ...Option) *Detection {
	o := buildOptions(opts)
	return &Detection{
		lifecycle: lifecycle{name: NameDetection},
		cfg: &configurer[params.Detection]{
			name:       NameDetection,
			store:      params.NewStore(state[params.Detection]{Params: params.DefaultDetection()}),
			defaults:   params.DefaultDetection,
			extractors: params.DetectionExtractors(),
			stream:     o.stream,
			withArea:   true,
		},
	}
}

func (d *Detection) Configure(doc []byte) ([]byte, error) { return d.cfg.configure(doc) }

func (d *Detection) DataType() params.Format { return d.cfg.dataType() }

// Params returns the detection parameters in use.
func (d *Detection) Params() params.Detection { return d.cfg.store.Load().Params }

func (d *Detection) Analyze(t []float32) ([]byte, error) {
	res, err := d.AnalyzeResult(t)
	return res.Data, err
}

func (d *Detection) AnalyzeBytes(raw []byte) ([]byte, error) {
	res, err := d.AnalyzeBytesResult(raw)
	return res.Data, err
}

func (d *Detection) AnalyzeResult(t []float32) (Result, error) {
	v, err := tensor.NewView(t)
	return d.analyze(v, err)
}

func (d *Detection) AnalyzeBytesResult(raw []byte) (Result, error) {
	v, err := tensor.FromBytes(raw)
	return d.analyze(v, err)
}

func (d *Detection) analyze(v tensor.View, verr error) (Result, error) {
	start := time.Now()
	out, n, err := d.decode(v, verr)
	metrics.RecordAnalyze(d.name, CodeOf(err).String(), n, time.Since(start))
	return out, err
}

// Detected is a decoded frame with the configuration it was decoded with.
// Area is set when WithArea is.
type Detected struct {
	encoding.Detections
	Params params.Detection
	Area   detection.AreaSpec
}

// Detect decodes v with the current configuration without serializing.
func (d *Detection) Detect(v tensor.View) (Detected, error) {
	return d.detect(v, d.cfg.store.Load())
}

func (d *Detection) detect(v tensor.View, snap state[params.Detection]) (Detected, error) {
	set, err := detection.Decode(v, snap.Params)
	if err != nil {
		return Detected{}, &Error{Code: InvalidState, Op: "analyze", Err: err}
	}
	res := Detected{Detections: encoding.Detections{Set: set, WithArea: snap.HasArea}, Params: snap.Params}
	if snap.HasArea {
		res.Area = detection.NewAreaSpec(snap.Area)
		res.Counts = detection.Count(set, res.Area)
	}
	return res, nil
}

func (d *Detection) decode(v tensor.View, verr error) (Result, int, error) {
	const op = "analyze"
	if verr != nil {
		return Result{}, -1, &Error{Code: InvalidParam, Op: op, Err: verr}
	}
	snap := d.cfg.store.Load()
	res, err := d.detect(v, snap)
	if err != nil {
		return Result{}, -1, err
	}
	out, err := encoding.EncodeDetections(snap.Format, res.Detections)
	if err != nil {
		return Result{}, -1, &Error{Code: Other, Op: op, Err: err}
	}
	return Result{Data: out, Format: snap.Format}, len(res.Set), nil
}
