/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package edgeapp

import (
	"context"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpromonet/gin-postproc/internal/encoding"
	"github.com/mpromonet/gin-postproc/internal/export"
	"github.com/mpromonet/gin-postproc/internal/params"
	"github.com/mpromonet/gin-postproc/internal/processor"
	"github.com/mpromonet/gin-postproc/internal/sensor"
)

type chanSink chan export.Message

func (s chanSink) Publish(_ context.Context, msg export.Message) error {
	s <- msg
	return nil
}

func (s chanSink) Close() error { return nil }

func receive(t *testing.T, sink chanSink) export.Message {
	t.Helper()
	select {
	case msg := <-sink:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message exported")
	}
	return export.Message{}
}

func setup(t *testing.T) (*App, *sensor.MemoryStream, chanSink) {
	t.Helper()
	sink := make(chanSink, 8)
	exporter := export.NewExporter(sink, 8, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = exporter.Run(ctx) }()

	stream := sensor.NewMemoryStream(4)
	proc := processor.NewDetection(processor.WithStream(stream))
	return New(proc, stream, exporter, "camera/state"), stream, sink
}

func TestOnConfigurePublishesState(t *testing.T) {
	app, stream, sink := setup(t)

	doc := []byte(`{"ai_models":{"detection":{"ai_model_bundle_id":"b1","parameters":{
		"max_detections":10,"threshold":0.3,"input_width":101,"input_height":101}}},
		"metadata_settings":{"format":1}}`)
	out, err := app.OnConfigure(doc)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, "b1", stream.ModelBundleID())

	msg := receive(t, sink)
	assert.Equal(t, export.PortState, msg.Port)
	assert.Equal(t, "camera/state", msg.Topic)
	assert.Equal(t, doc, msg.Payload)

	out, err = app.OnConfigure([]byte(`{"ai_models":{}}`))
	assert.ErrorIs(t, err, processor.ErrInvalidParam)
	msg = receive(t, sink)
	assert.Equal(t, out, msg.Payload)
	assert.Contains(t, string(msg.Payload), "res_info")
}

func TestRunExportsFrames(t *testing.T) {
	app, stream, sink := setup(t)
	_, err := app.OnConfigure([]byte(`{"ai_models":{"detection":{"ai_model_bundle_id":"b1","parameters":{
		"max_detections":10,"threshold":0.3,"input_width":101,"input_height":101}}},
		"metadata_settings":{"format":1}}`))
	require.NoError(t, err)
	receive(t, sink)

	ts := time.Unix(1700000000, 0)
	require.True(t, stream.Push(sensor.Frame{Tensor: nil, Timestamp: ts.Add(-time.Second)}))
	require.True(t, stream.Push(sensor.Frame{Tensor: floatBytes(0.1, 0.2, 0.5, 0.6, 3, 0.8, 1), Timestamp: ts}))
	stream.Close()

	require.NoError(t, app.Run(context.Background()))

	msg := receive(t, sink)
	assert.Equal(t, export.PortMetadata, msg.Port)
	assert.Equal(t, ts, msg.Timestamp)

	var got []encoding.DetectionJSON
	require.NoError(t, json.Unmarshal(msg.Payload, &got))
	require.Len(t, got, 1)
	assert.Equal(t, uint16(3), got[0].ClassID)
}

const binaryDetection = `{"ai_models":{"detection":{"ai_model_bundle_id":"b1","parameters":{
	"max_detections":10,"threshold":0.3,"input_width":101,"input_height":101}}},
	"metadata_settings":{"format":0}}`

// reconfiguring applies another document right after each analysis, as a
// configuration arriving from another goroutine would.
type reconfiguring struct {
	*processor.Detection
	next []byte
}

func (r reconfiguring) AnalyzeBytesResult(raw []byte) (processor.Result, error) {
	res, err := r.Detection.AnalyzeBytesResult(raw)
	_, _ = r.Detection.Configure(r.next)
	return res, err
}

func TestRunLabelsWithEncodedFormat(t *testing.T) {
	sink := make(chanSink, 8)
	exporter := export.NewExporter(sink, 8, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = exporter.Run(ctx) }()

	stream := sensor.NewMemoryStream(4)
	det := processor.NewDetection(processor.WithStream(stream))
	_, err := det.Configure([]byte(`{"ai_models":{"detection":{"ai_model_bundle_id":"b1","parameters":{
		"max_detections":10,"threshold":0.3,"input_width":101,"input_height":101}}},
		"metadata_settings":{"format":1}}`))
	require.NoError(t, err)

	app := New(reconfiguring{Detection: det, next: []byte(binaryDetection)}, stream, exporter, "camera/state")
	require.True(t, stream.Push(sensor.Frame{Tensor: floatBytes(0.1, 0.2, 0.5, 0.6, 3, 0.8, 1), Timestamp: time.Now()}))
	stream.Close()
	require.NoError(t, app.Run(context.Background()))

	msg := receive(t, sink)
	assert.Equal(t, params.FormatBase64, det.DataType())
	assert.Equal(t, params.FormatJSON, msg.Format)
	var got []encoding.DetectionJSON
	require.NoError(t, json.Unmarshal(msg.Payload, &got))
	assert.Len(t, got, 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	app, _, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, app.Run(ctx))
}

func floatBytes(values ...float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}
