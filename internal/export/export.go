/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package export ships serialized results and configuration state out of
// the process. Send never blocks the analysis path: messages go through a
// bounded queue drained by Run, and the caller gets a Future to wait on.
package export

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mpromonet/gin-postproc/internal/metrics"
	"github.com/mpromonet/gin-postproc/internal/params"
)

const (
	// PortMetadata carries analysis results.
	PortMetadata = "metadata"
	// PortState carries configuration state documents.
	PortState = "state"
)

var (
	ErrQueueFull = errors.New("export: queue full")
	ErrClosed    = errors.New("export: exporter stopped")
)

// Message is one payload to deliver.
type Message struct {
	ID   string
	Port string
	// Topic overrides the sink's topic for the port when set.
	Topic     string
	Payload   []byte
	Format    params.Format
	Timestamp time.Time
}

// Sink delivers messages to a transport.
type Sink interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Future reports the outcome of one Send.
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future { return &Future{done: make(chan struct{})} }

func (f *Future) complete(err error) {
	f.err = err
	close(f.done)
}

// Wait blocks until the message is delivered or ctx is done.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the outcome is known.
func (f *Future) Done() <-chan struct{} { return f.done }

type job struct {
	msg    Message
	future *Future
}

// Exporter queues messages for a Sink.
type Exporter struct {
	sink    Sink
	queue   chan job
	timeout time.Duration
}

// NewExporter returns an exporter buffering up to depth messages. Each
// delivery is bounded by timeout.
func NewExporter(sink Sink, depth int, timeout time.Duration) *Exporter {
	if depth < 1 {
		depth = 1
	}
	return &Exporter{sink: sink, queue: make(chan job, depth), timeout: timeout}
}

// Send queues payload on port. The payload is not copied.
func (e *Exporter) Send(port string, payload []byte, format params.Format, timestamp time.Time) *Future {
	return e.enqueue(Message{
		ID:        uuid.NewString(),
		Port:      port,
		Payload:   payload,
		Format:    format,
		Timestamp: timestamp,
	})
}

// SendState queues a configuration state document for topic.
func (e *Exporter) SendState(topic string, doc []byte) *Future {
	return e.enqueue(Message{
		ID:        uuid.NewString(),
		Port:      PortState,
		Topic:     topic,
		Payload:   doc,
		Format:    params.FormatJSON,
		Timestamp: time.Now(),
	})
}

func (e *Exporter) enqueue(msg Message) *Future {
	f := newFuture()
	select {
	case e.queue <- job{msg: msg, future: f}:
	default:
		log.Warn().Str("port", msg.Port).Str("id", msg.ID).Msg("Export queue full, message dropped")
		metrics.RecordExport(msg.Port, ErrQueueFull)
		f.complete(ErrQueueFull)
	}
	return f
}

// Run delivers queued messages until ctx is done, then fails whatever is
// still queued with ErrClosed and closes the sink.
func (e *Exporter) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			e.drain()
			return e.sink.Close()
		}
		select {
		case <-ctx.Done():
			e.drain()
			return e.sink.Close()
		case j := <-e.queue:
			e.deliver(ctx, j)
		}
	}
}

func (e *Exporter) deliver(ctx context.Context, j job) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	err := e.sink.Publish(ctx, j.msg)
	if err != nil {
		log.Error().Err(err).Str("port", j.msg.Port).Str("id", j.msg.ID).Msg("Export failed")
	}
	metrics.RecordExport(j.msg.Port, err)
	j.future.complete(err)
}

func (e *Exporter) drain() {
	for {
		select {
		case j := <-e.queue:
			j.future.complete(ErrClosed)
		default:
			return
		}
	}
}

// LogSink writes messages to the log, for runs without a broker.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, msg Message) error {
	log.Info().
		Str("id", msg.ID).
		Str("port", msg.Port).
		Str("topic", msg.Topic).
		Str("format", msg.Format.String()).
		Int("size", len(msg.Payload)).
		Time("timestamp", msg.Timestamp).
		Msg("Exported")
	return nil
}

func (LogSink) Close() error { return nil }
