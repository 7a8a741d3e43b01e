/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package metrics provides Prometheus metrics for the post-processors.
//
// Exposed on /metrics by the HTTP server:
//   - postproc_analyze_total: analyses by processor and result code
//   - postproc_analyze_duration_seconds: analysis latency
//   - postproc_configure_total: configurations by processor and result code
//   - postproc_results: detections or poses in the last analysis
//   - postproc_export_total: exported payloads by port and outcome
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalyzeTotal counts analyses
	AnalyzeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postproc_analyze_total",
			Help: "Total number of analyzed tensors",
		},
		[]string{"processor", "code"},
	)

	// AnalyzeDuration tracks decode plus serialization time
	AnalyzeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postproc_analyze_duration_seconds",
			Help:    "Time spent analyzing one tensor",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
		[]string{"processor"},
	)

	// ConfigureTotal counts configurations
	ConfigureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postproc_configure_total",
			Help: "Total number of configuration requests",
		},
		[]string{"processor", "code"},
	)

	// Results tracks the size of the last result set
	Results = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "postproc_results",
			Help: "Number of detections or poses in the last analysis",
		},
		[]string{"processor"},
	)

	// ExportTotal counts exported payloads
	ExportTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postproc_export_total",
			Help: "Total number of exported payloads",
		},
		[]string{"port", "result"},
	)
)

// RecordAnalyze records one analysis.
func RecordAnalyze(processor, code string, results int, duration time.Duration) {
	AnalyzeTotal.WithLabelValues(processor, code).Inc()
	AnalyzeDuration.WithLabelValues(processor).Observe(duration.Seconds())
	if results >= 0 {
		Results.WithLabelValues(processor).Set(float64(results))
	}
}

// RecordConfigure records one configuration.
func RecordConfigure(processor, code string) {
	ConfigureTotal.WithLabelValues(processor, code).Inc()
}

// RecordExport records the outcome of one send.
func RecordExport(port string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ExportTotal.WithLabelValues(port, result).Inc()
}
