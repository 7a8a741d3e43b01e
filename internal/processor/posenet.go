/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package processor

import (
	"time"

	"github.com/mpromonet/gin-postproc/internal/encoding"
	"github.com/mpromonet/gin-postproc/internal/metrics"
	"github.com/mpromonet/gin-postproc/internal/params"
	"github.com/mpromonet/gin-postproc/internal/posenet"
	"github.com/mpromonet/gin-postproc/internal/tensor"
)

// PoseNet post-processes PoseNet tensors.
type PoseNet struct {
	lifecycle
	cfg *configurer[params.PoseNet]
	// plans is only touched under the store lock.
	plans posenet.PlanCache
}

// NewPoseNet returns a PoseNet processor with default parameters.
func NewPoseNet(opts ...Option) *PoseNet {
	o := buildOptions(opts)
	return &PoseNet{
		lifecycle: lifecycle{name: NamePoseNet},
		cfg: &configurer[params.PoseNet]{
			name:       NamePoseNet,
			store:      params.NewStore(state[params.PoseNet]{Params: params.DefaultPoseNet()}),
			defaults:   params.DefaultPoseNet,
			extractors: params.PoseNetExtractors(),
			stream:     o.stream,
		},
	}
}

func (p *PoseNet) Configure(doc []byte) ([]byte, error) { return p.cfg.configure(doc) }

func (p *PoseNet) DataType() params.Format { return p.cfg.dataType() }

// Params returns the PoseNet parameters in use.
func (p *PoseNet) Params() params.PoseNet { return p.cfg.store.Load().Params }

func (p *PoseNet) Analyze(t []float32) ([]byte, error) {
	res, err := p.AnalyzeResult(t)
	return res.Data, err
}

func (p *PoseNet) AnalyzeBytes(raw []byte) ([]byte, error) {
	res, err := p.AnalyzeBytesResult(raw)
	return res.Data, err
}

func (p *PoseNet) AnalyzeResult(t []float32) (Result, error) {
	v, err := tensor.NewView(t)
	return p.analyze(v, err)
}

func (p *PoseNet) AnalyzeBytesResult(raw []byte) (Result, error) {
	v, err := tensor.FromBytes(raw)
	return p.analyze(v, err)
}

func (p *PoseNet) analyze(v tensor.View, verr error) (Result, error) {
	start := time.Now()
	out, n, err := p.decode(v, verr)
	metrics.RecordAnalyze(p.name, CodeOf(err).String(), n, time.Since(start))
	return out, err
}

type poseSnapshot struct {
	state state[params.PoseNet]
	plan  *posenet.Plan
	err   error
}

// snapshot copies the configuration out together with its transpose plan.
func (p *PoseNet) snapshot() poseSnapshot {
	return params.With(p.cfg.store, func(s *state[params.PoseNet]) poseSnapshot {
		plan, err := p.plans.Get(posenet.KeyOf(s.Params))
		return poseSnapshot{state: *s, plan: plan, err: err}
	})
}

// Estimated is a decoded frame with the parameters it was decoded with.
type Estimated struct {
	encoding.Poses
	Params params.PoseNet
}

// Estimate decodes v with the current configuration without serializing.
func (p *PoseNet) Estimate(v tensor.View) (Estimated, error) {
	return p.estimate(v, p.snapshot())
}

func (p *PoseNet) estimate(v tensor.View, snap poseSnapshot) (Estimated, error) {
	if snap.err != nil {
		return Estimated{}, &Error{Code: InvalidState, Op: "analyze", Err: snap.err}
	}
	prm := snap.state.Params
	set, err := posenet.Decode(v, prm, snap.plan)
	if err != nil {
		return Estimated{}, &Error{Code: InvalidState, Op: "analyze", Err: err}
	}
	return Estimated{
		Poses:  encoding.Poses{Set: set, InputWidth: prm.InputWidth, InputHeight: prm.InputHeight},
		Params: prm,
	}, nil
}

func (p *PoseNet) decode(v tensor.View, verr error) (Result, int, error) {
	const op = "analyze"
	if verr != nil {
		return Result{}, -1, &Error{Code: InvalidParam, Op: op, Err: verr}
	}
	snap := p.snapshot()
	res, err := p.estimate(v, snap)
	if err != nil {
		return Result{}, -1, err
	}
	out, err := encoding.EncodePoses(snap.state.Format, res.Poses)
	if err != nil {
		return Result{}, -1, &Error{Code: Other, Op: op, Err: err}
	}
	return Result{Data: out, Format: snap.state.Format}, len(res.Set), nil
}
