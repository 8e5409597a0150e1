package metrics

import (
	"imagefilter/internal/core/domain"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements port.MetricsCollector using Prometheus.
type Collector struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	filterDuration *prometheus.HistogramVec
	filterFailures *prometheus.CounterVec
	cleanups       *prometheus.CounterVec
	liveArtifacts  prometheus.Gauge
}

// NewCollector creates a collector backed by its own registry, including Go runtime and process metrics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imagefilter_requests_total",
				Help: "Total number of filtered image requests by outcome",
			},
			[]string{"outcome"},
		),
		filterDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "imagefilter_filter_duration_seconds",
				Help:    "Time spent downloading and filtering an image",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"backend"},
		),
		filterFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imagefilter_filter_failures_total",
				Help: "Total number of failed filter invocations",
			},
			[]string{"backend"},
		),
		cleanups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imagefilter_artifact_cleanups_total",
				Help: "Total number of artifact removals by result",
			},
			[]string{"result"},
		),
		liveArtifacts: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "imagefilter_live_artifacts",
				Help: "Number of filtered artifacts currently on disk",
			},
		),
	}
}

func (c *Collector) RecordRequest(outcome domain.Outcome) {
	c.requests.WithLabelValues(string(outcome)).Inc()
}

func (c *Collector) RecordFilter(backend string, duration time.Duration, err error) {
	c.filterDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if err != nil {
		c.filterFailures.WithLabelValues(backend).Inc()
	}
}

func (c *Collector) RecordCleanup(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.cleanups.WithLabelValues(result).Inc()
}

func (c *Collector) SetLiveArtifacts(n int) {
	c.liveArtifacts.Set(float64(n))
}

// Handler exposes the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
