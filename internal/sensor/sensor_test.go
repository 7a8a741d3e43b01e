/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package sensor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyBundle(t *testing.T) {
	s := NewMemoryStream(1)

	require.NoError(t, ApplyBundle(s, map[string]any{"ai_model_bundle_id": "000001"}))
	assert.Equal(t, "000001", s.ModelBundleID())

	assert.ErrorIs(t, ApplyBundle(s, map[string]any{}), ErrNoBundleID)
	assert.ErrorIs(t, ApplyBundle(s, map[string]any{"ai_model_bundle_id": 12.0}), ErrNoBundleID)
	assert.ErrorIs(t, ApplyBundle(s, map[string]any{"ai_model_bundle_id": strings.Repeat("a", BundleIDSize)}), ErrBundleIDTooLong)

	boom := errors.New("boom")
	s.SetErr = boom
	assert.ErrorIs(t, ApplyBundle(s, map[string]any{"ai_model_bundle_id": "000002"}), boom)
	assert.Equal(t, "000001", s.ModelBundleID())
}

func TestMemoryStreamFrames(t *testing.T) {
	s := NewMemoryStream(1)
	ts := time.Unix(100, 0)
	assert.True(t, s.Push(Frame{Tensor: []byte{1}, Timestamp: ts}))
	assert.False(t, s.Push(Frame{Tensor: []byte{2}}))

	f, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, f.Tensor)
	assert.Equal(t, ts, f.Timestamp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	s.Close()
	s.Close()
	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, ErrStreamClosed)
}
