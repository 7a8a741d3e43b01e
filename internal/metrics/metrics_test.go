/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAnalyze(t *testing.T) {
	AnalyzeTotal.Reset()
	Results.Reset()

	RecordAnalyze("detection", "ok", 3, time.Millisecond)
	RecordAnalyze("detection", "ok", 1, time.Millisecond)
	RecordAnalyze("detection", "invalid_state", -1, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(AnalyzeTotal.WithLabelValues("detection", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(AnalyzeTotal.WithLabelValues("detection", "invalid_state")))
	assert.Equal(t, float64(1), testutil.ToFloat64(Results.WithLabelValues("detection")))
}

func TestRecordConfigure(t *testing.T) {
	ConfigureTotal.Reset()
	RecordConfigure("posenet", "out_of_range")
	assert.Equal(t, float64(1), testutil.ToFloat64(ConfigureTotal.WithLabelValues("posenet", "out_of_range")))
}

func TestRecordExport(t *testing.T) {
	ExportTotal.Reset()
	RecordExport("metadata", nil)
	RecordExport("metadata", errors.New("timeout"))
	RecordExport("metadata", nil)

	assert.Equal(t, float64(2), testutil.ToFloat64(ExportTotal.WithLabelValues("metadata", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(ExportTotal.WithLabelValues("metadata", "error")))
}
