/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package processor is the facade the application drives: it owns the
// live configuration of one decoder, turns configuration documents into
// parameters and output tensors into serialized results.
//
// Configure and Analyze may be called from different goroutines. The
// configuration is copied in and out under a lock; decoding runs on a
// snapshot without holding it.
package processor

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mpromonet/gin-postproc/internal/metrics"
	"github.com/mpromonet/gin-postproc/internal/params"
	"github.com/mpromonet/gin-postproc/internal/sensor"
)

// Processor post-processes the output tensor of one AI model.
type Processor interface {
	Name() string
	Initialize() error
	ResetState() error
	Finalize() error
	// Configure applies a configuration document. When the result is not
	// Ok, the returned document is the input with every rejected field
	// replaced by the value actually in use.
	Configure(doc []byte) ([]byte, error)
	// Analyze decodes a float tensor and serializes the result in the
	// configured format.
	Analyze(tensor []float32) ([]byte, error)
	// AnalyzeBytes is Analyze for a little-endian float32 byte buffer.
	AnalyzeBytes(raw []byte) ([]byte, error)
	// AnalyzeResult and AnalyzeBytesResult also report the format the
	// data was serialized in. Callers labelling the output use it rather
	// than DataType, which may already reflect a later Configure.
	AnalyzeResult(tensor []float32) (Result, error)
	AnalyzeBytesResult(raw []byte) (Result, error)
	// DataType is the format Analyze currently produces.
	DataType() params.Format
}

const (
	NameDetection = "detection"
	NamePoseNet   = "posenet"
)

// Option customizes a processor.
type Option func(*options)

type options struct {
	stream sensor.Stream
}

// WithStream sets the stream receiving the AI model bundle id.
func WithStream(s sensor.Stream) Option {
	return func(o *options) { o.stream = s }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.stream == nil {
		o.stream = sensor.NewMemoryStream(1)
	}
	return o
}

// New returns the processor registered under name.
func New(name string, opts ...Option) (Processor, error) {
	switch name {
	case NameDetection:
		return NewDetection(opts...), nil
	case NamePoseNet:
		return NewPoseNet(opts...), nil
	}
	return nil, &Error{Code: InvalidParam, Op: "new", Err: fmt.Errorf("unknown processor %q", name)}
}

// Result is a serialized analysis and the format it was serialized in.
type Result struct {
	Data   []byte
	Format params.Format
}

// state is the live configuration of a processor.
type state[P any] struct {
	Params  P
	Area    params.Area
	HasArea bool
	Format  params.Format
}

// lifecycle implements the hooks that carry no state.
type lifecycle struct {
	name string
}

func (l lifecycle) Name() string { return l.name }

func (l lifecycle) Initialize() error {
	log.Info().Str("processor", l.name).Msg("Initialize")
	return nil
}

func (l lifecycle) ResetState() error {
	log.Info().Str("processor", l.name).Msg("ResetState")
	return nil
}

func (l lifecycle) Finalize() error {
	log.Info().Str("processor", l.name).Msg("Finalize")
	return nil
}

// configurer runs the configuration flow shared by every processor.
type configurer[P any] struct {
	name       string
	store      *params.Store[state[P]]
	defaults   func() P
	extractors []params.Extractor[P]
	stream     sensor.Stream
	withArea   bool
}

func (c *configurer[P]) configure(raw []byte) ([]byte, error) {
	out, err := c.apply(raw)
	metrics.RecordConfigure(c.name, CodeOf(err).String())
	return out, err
}

func (c *configurer[P]) apply(raw []byte) ([]byte, error) {
	const op = "configure"

	doc, err := params.ParseDocument(raw)
	if err != nil {
		log.Error().Err(err).Str("processor", c.name).Msg("Error parsing custom settings JSON")
		return errorDocument("", "Error parsing custom settings JSON"), &Error{Code: InvalidParam, Op: op, Err: err}
	}
	root := doc.Root()
	resID := ""
	if info, ok := root.Object("res_info"); ok {
		resID, _ = info.String("res_id")
	}
	model, ok := root.Object("ai_models", c.name)
	if !ok {
		return c.missingParameters(resID)
	}
	obj, ok := model.Object("parameters")
	if !ok {
		return c.missingParameters(resID)
	}

	next := state[P]{Params: c.defaults()}
	code := codeOfStatus(params.Run(obj, &next.Params, c.extractors))
	var causes []error
	if code != Ok {
		causes = append(causes, errors.New("parameters replaced by defaults"))
	}

	// A rejected area keeps the one in use; the rest of the document is
	// still committed.
	keepArea := !c.withArea
	if c.withArea {
		area, has, st := params.ParseArea(root)
		if st == params.StatusOk {
			next.Area, next.HasArea = area, has
		} else {
			keepArea = true
			code = codeOfStatus(st)
			causes = append(causes, fmt.Errorf("more than %d area class ids, area unchanged", params.MaxAreaClasses))
		}
	}
	next.Format = params.ParseFormat(root)

	if err := sensor.ApplyBundle(c.stream, model); err != nil {
		code = InvalidParamSetError
		causes = append(causes, err)
	}

	c.store.Update(func(s *state[P]) {
		if keepArea {
			next.Area, next.HasArea = s.Area, s.HasArea
		}
		*s = next
	})

	if code != Ok {
		return c.corrected(doc, &Error{Code: code, Op: op, Err: errors.Join(causes...)})
	}
	log.Info().Str("processor", c.name).Str("format", next.Format.String()).Msg("Configuration applied")
	return nil, nil
}

func (c *configurer[P]) missingParameters(resID string) ([]byte, error) {
	const msg = "Error accessing AI model parameters in JSON object."
	log.Error().Str("processor", c.name).Str("res_id", resID).Msg(msg)
	return errorDocument(resID, msg), &Error{Code: InvalidParam, Op: "configure", Err: fmt.Errorf("ai_models.%s.parameters not found", c.name)}
}

func (c *configurer[P]) corrected(doc *params.Document, err *Error) ([]byte, error) {
	log.Warn().Str("processor", c.name).Str("code", err.Code.String()).Err(err.Err).Msg("Configuration corrected")
	out, merr := doc.Marshal()
	if merr != nil {
		return nil, &Error{Code: Other, Op: err.Op, Err: merr}
	}
	return out, err
}

func (c *configurer[P]) dataType() params.Format {
	return c.store.Load().Format
}
