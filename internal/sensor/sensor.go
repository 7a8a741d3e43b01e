/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package sensor is the boundary with the camera: the stream accepting the
// AI model bundle to run, and the frames it produces.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// BundleIDSize bounds the model bundle id, terminator included.
const BundleIDSize = 128

var (
	ErrNoBundleID      = errors.New("sensor: AI model bundle id is not available")
	ErrBundleIDTooLong = errors.New("sensor: AI model bundle id is too long")
	ErrStreamClosed    = errors.New("sensor: stream closed")
)

// Stream accepts the AI model bundle the sensor should run.
type Stream interface {
	SetModelBundleID(id string) error
}

// ApplyBundle reads ai_model_bundle_id from a model settings object and
// sets it on s.
func ApplyBundle(s Stream, model map[string]any) error {
	id, ok := model["ai_model_bundle_id"].(string)
	if !ok {
		log.Warn().Msg("AI model bundle ID is not available")
		return ErrNoBundleID
	}
	if len(id) >= BundleIDSize {
		log.Error().Int("length", len(id)).Msg("AI model bundle ID is too long")
		return ErrBundleIDTooLong
	}
	if err := s.SetModelBundleID(id); err != nil {
		log.Error().Err(err).Str("bundle_id", id).Msg("Error while setting AI model bundle ID")
		return fmt.Errorf("set bundle id: %w", err)
	}
	log.Info().Str("bundle_id", id).Msg("Successfully set AI model bundle ID")
	return nil
}

// Frame is one output tensor delivered by the sensor.
type Frame struct {
	Tensor    []byte
	Timestamp time.Time
}

// Source delivers frames until ctx is done or the source is closed.
type Source interface {
	Next(ctx context.Context) (Frame, error)
}

// MemoryStream is an in-process Stream and Source: frames pushed by the
// producer side are handed to Next in order.
type MemoryStream struct {
	mu       sync.Mutex
	bundleID string
	// SetErr, when set, makes SetModelBundleID fail.
	SetErr error

	frames chan Frame
	once   sync.Once
}

// NewMemoryStream returns a stream buffering up to depth frames.
func NewMemoryStream(depth int) *MemoryStream {
	return &MemoryStream{frames: make(chan Frame, depth)}
}

func (s *MemoryStream) SetModelBundleID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.bundleID = id
	return nil
}

// ModelBundleID returns the last accepted bundle id.
func (s *MemoryStream) ModelBundleID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundleID
}

// Push queues a frame, dropping it when the buffer is full.
func (s *MemoryStream) Push(f Frame) bool {
	select {
	case s.frames <- f:
		return true
	default:
		log.Warn().Time("timestamp", f.Timestamp).Msg("Frame dropped, stream buffer full")
		return false
	}
}

// Close ends the stream; pending frames are still delivered.
func (s *MemoryStream) Close() {
	s.once.Do(func() { close(s.frames) })
}

func (s *MemoryStream) Next(ctx context.Context) (Frame, error) {
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case f, ok := <-s.frames:
		if !ok {
			return Frame{}, ErrStreamClosed
		}
		return f, nil
	}
}
