// Package metrics declares the Prometheus collectors sonar registers
// for its own internal state. No HTTP listener is started by this
// package; a caller that wants to scrape them mounts Handler itself.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SamplesEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sonar_samples_emitted_total",
			Help: "Envelopes emitted per record type",
		},
		[]string{"type"},
	)

	SampleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "sonar_sample_duration_seconds",
			Help: "Wall-clock time spent producing one sample tick",
		},
	)

	ProcessesObserved = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sonar_processes_observed",
			Help: "Number of processes captured by the most recent sample tick",
		},
	)

	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sonar_queue_depth",
			Help: "Outbound queue depth per sink",
		},
		[]string{"sink"},
	)

	QueueWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sonar_queue_warnings_total",
			Help: "Enqueues observed above a sink's high-water mark",
		},
		[]string{"sink"},
	)

	SendAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sonar_send_attempts_total",
			Help: "Sending-window attempts per sink and outcome",
		},
		[]string{"sink", "outcome"},
	)

	SendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sonar_send_duration_seconds",
			Help: "Time spent inside a sink's Send call",
		},
		[]string{"sink"},
	)

	SubprocessErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sonar_subprocess_errors_total",
			Help: "Bounded-subprocess invocations that returned an error",
		},
		[]string{"command"},
	)

	GPUBackendActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sonar_gpu_backend_active",
			Help: "1 if a GPU backend reported at least one device, 0 otherwise",
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(
		SamplesEmitted,
		SampleDuration,
		ProcessesObserved,
		QueueDepth,
		QueueWarnings,
		SendAttempts,
		SendDuration,
		SubprocessErrors,
		GPUBackendActive,
	)
}

// Handler exposes the default registry in the Prometheus text format,
// for callers that choose to mount it on their own mux.
func Handler() http.Handler { return promhttp.Handler() }
