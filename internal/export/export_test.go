/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package export

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpromonet/gin-postproc/internal/metrics"
	"github.com/mpromonet/gin-postproc/internal/params"
)

type recordSink struct {
	mu     sync.Mutex
	msgs   []Message
	err    error
	closed bool
}

func (s *recordSink) Publish(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

func (s *recordSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func runExporter(t *testing.T, e *Exporter) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, e.Run(ctx))
	}()
	return func() {
		stop()
		<-done
	}
}

func TestExporterSend(t *testing.T) {
	metrics.ExportTotal.Reset()
	sink := &recordSink{}
	e := NewExporter(sink, 4, time.Second)
	stop := runExporter(t, e)

	ts := time.Unix(1700000000, 0)
	f := e.Send(PortMetadata, []byte("payload"), params.FormatJSON, ts)
	require.NoError(t, f.Wait(context.Background()))
	stop()

	require.Len(t, sink.msgs, 1)
	msg := sink.msgs[0]
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, PortMetadata, msg.Port)
	assert.Equal(t, []byte("payload"), msg.Payload)
	assert.Equal(t, ts, msg.Timestamp)
	assert.True(t, sink.closed)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ExportTotal.WithLabelValues(PortMetadata, "ok")))
}

func TestExporterSinkError(t *testing.T) {
	sink := &recordSink{err: errors.New("broker down")}
	e := NewExporter(sink, 1, time.Second)
	stop := runExporter(t, e)
	defer stop()

	err := e.SendState("state/topic", []byte(`{}`)).Wait(context.Background())
	assert.EqualError(t, err, "broker down")
}

func TestExporterQueueFull(t *testing.T) {
	e := NewExporter(&recordSink{}, 1, time.Second)
	first := e.Send(PortMetadata, nil, params.FormatJSON, time.Now())
	second := e.Send(PortMetadata, nil, params.FormatJSON, time.Now())

	assert.ErrorIs(t, second.Wait(context.Background()), ErrQueueFull)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, e.Run(ctx))
	assert.ErrorIs(t, first.Wait(context.Background()), ErrClosed)
}

func TestFutureWaitContext(t *testing.T) {
	f := newFuture()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.Wait(ctx), context.DeadlineExceeded)
}

type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient implements the subset of mqtt.Client the sink uses.
type fakeClient struct {
	mqtt.Client
	sent         []published
	err          error
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return newFakeToken(c.err)
}

func (c *fakeClient) IsConnected() bool { return !c.disconnected }
func (c *fakeClient) Disconnect(uint)   { c.disconnected = true }

func TestMQTTSinkPublish(t *testing.T) {
	client := &fakeClient{}
	sink := NewMQTTSink(client, Topics{PortMetadata: "camera/metadata"})
	ctx := context.Background()

	require.NoError(t, sink.Publish(ctx, Message{Port: PortMetadata, Payload: []byte{0, 1, 2}, Format: params.FormatBase64}))
	require.NoError(t, sink.Publish(ctx, Message{Port: PortMetadata, Payload: []byte(`[]`), Format: params.FormatJSON}))
	require.NoError(t, sink.Publish(ctx, Message{Port: PortState, Topic: "camera/state", Payload: []byte(`{}`), Format: params.FormatJSON}))

	require.Len(t, client.sent, 3)
	assert.Equal(t, "camera/metadata", client.sent[0].topic)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0, 1, 2}), string(client.sent[0].payload))
	assert.Equal(t, `[]`, string(client.sent[1].payload))
	assert.Equal(t, "camera/state", client.sent[2].topic)
	assert.Equal(t, byte(1), client.sent[0].qos)

	require.NoError(t, sink.Close())
	assert.True(t, client.disconnected)
}

func TestMQTTSinkErrors(t *testing.T) {
	client := &fakeClient{err: errors.New("not authorized")}
	sink := NewMQTTSink(client, Topics{PortMetadata: "camera/metadata"})

	err := sink.Publish(context.Background(), Message{Port: "unknown"})
	assert.ErrorContains(t, err, "no topic")

	err = sink.Publish(context.Background(), Message{Port: PortMetadata, Format: params.FormatJSON})
	assert.ErrorContains(t, err, "not authorized")
}
