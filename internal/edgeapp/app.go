/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package edgeapp runs the on-camera loop: pull a tensor from the sensor,
// analyze it, export the result.
package edgeapp

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mpromonet/gin-postproc/internal/export"
	"github.com/mpromonet/gin-postproc/internal/processor"
	"github.com/mpromonet/gin-postproc/internal/sensor"
)

// App ties a frame source, a processor and an exporter together.
type App struct {
	proc       processor.Processor
	source     sensor.Source
	exporter   *export.Exporter
	stateTopic string
}

// New returns an App publishing configuration state on stateTopic.
func New(proc processor.Processor, source sensor.Source, exporter *export.Exporter, stateTopic string) *App {
	return &App{proc: proc, source: source, exporter: exporter, stateTopic: stateTopic}
}

// Run processes frames until ctx is done or the source is closed. Frames
// that fail to analyze are logged and skipped.
func (a *App) Run(ctx context.Context) error {
	if err := a.proc.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := a.proc.Finalize(); err != nil {
			log.Error().Err(err).Msg("Finalize failed")
		}
	}()

	for {
		frame, err := a.source.Next(ctx)
		switch {
		case errors.Is(err, sensor.ErrStreamClosed):
			log.Info().Msg("Sensor stream closed")
			return nil
		case ctx.Err() != nil:
			return nil
		case err != nil:
			return err
		}

		res, err := a.proc.AnalyzeBytesResult(frame.Tensor)
		if err != nil {
			log.Warn().Err(err).Str("code", processor.CodeOf(err).String()).Time("timestamp", frame.Timestamp).Msg("Frame skipped")
			continue
		}
		// fire and forget; the exporter accounts for failures
		a.exporter.Send(export.PortMetadata, res.Data, res.Format, frame.Timestamp)
	}
}

// OnConfigure applies doc and publishes the resulting state: the corrected
// or error document when the configuration was not accepted as-is, doc
// itself otherwise.
func (a *App) OnConfigure(doc []byte) ([]byte, error) {
	out, err := a.proc.Configure(doc)
	state := doc
	if out != nil {
		state = out
	}
	if err := a.proc.ResetState(); err != nil {
		log.Error().Err(err).Msg("ResetState failed")
	}
	a.exporter.SendState(a.stateTopic, state)
	return out, err
}
