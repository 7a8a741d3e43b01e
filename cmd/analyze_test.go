/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package cmd

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpromonet/gin-postproc/internal/encoding"
	"github.com/mpromonet/gin-postproc/internal/processor"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func tensorFile(t *testing.T, values ...float32) string {
	t.Helper()
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	return writeFile(t, "tensor.bin", raw)
}

func TestAnalyzeJSON(t *testing.T) {
	engine := writeFile(t, "engine.json", []byte(`{"ai_models":{"detection":{"ai_model_bundle_id":"b","parameters":{
		"max_detections":10,"threshold":0.3,"input_width":101,"input_height":101}}},
		"metadata_settings":{"format":1}}`))
	input := tensorFile(t, 0.1, 0.2, 0.5, 0.6, 4, 0.7, 1)

	var out bytes.Buffer
	require.NoError(t, analyze(&out, processor.NameDetection, engine, input))
	assert.JSONEq(t, `[{"class_id":4,"score":0.7,"bounding_box":{"left":20,"top":10,"right":60,"bottom":50}}]`, out.String())
}

func TestAnalyzeBase64(t *testing.T) {
	input := tensorFile(t, 0.1, 0.2, 0.5, 0.6, 4, 0.7, 1)

	var out bytes.Buffer
	require.NoError(t, analyze(&out, processor.NameDetection, "", input))
	raw, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(out.Bytes())))
	require.NoError(t, err)
	rec, err := encoding.ReadDetectionsFlatbuffer(raw)
	require.NoError(t, err)
	assert.Len(t, rec.Set, 1)
}

func TestAnalyzeCorrectedEngine(t *testing.T) {
	engine := writeFile(t, "engine.json", []byte(`{"ai_models":{"detection":{"ai_model_bundle_id":"b","parameters":{"threshold":1.5}}}}`))
	input := tensorFile(t, 0.1, 0.2, 0.5, 0.6, 4, 0.7, 1)

	var out bytes.Buffer
	assert.NoError(t, analyze(&out, processor.NameDetection, engine, input))
}

func TestAnalyzeErrors(t *testing.T) {
	input := tensorFile(t, 1)
	var out bytes.Buffer

	assert.Error(t, analyze(&out, "segmentation", "", input))
	assert.Error(t, analyze(&out, processor.NameDetection, "", filepath.Join(t.TempDir(), "missing")))

	broken := writeFile(t, "engine.json", []byte(`{`))
	assert.ErrorIs(t, analyze(&out, processor.NameDetection, broken, input), processor.ErrInvalidParam)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "postproc "+Version+"\n", out.String())
}
