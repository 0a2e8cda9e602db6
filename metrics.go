package sealenv

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load results recorded by Metrics.
const (
	resultLoaded  = "loaded"
	resultFailed  = "failed"
	resultSkipped = "skipped"
)

// Metrics holds the Prometheus collectors a Loader reports to.
// A nil *Metrics records nothing.
type Metrics struct {
	// FilesTotal counts files by result (loaded, failed, skipped)
	FilesTotal *prometheus.CounterVec

	// LoadDuration tracks LoadFile latency in seconds
	LoadDuration prometheus.Histogram

	// KeysLoaded tracks how many keys each loaded file produced
	KeysLoaded prometheus.Histogram
}

// NewMetrics creates the loader collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FilesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sealenv_files_total",
				Help: "Configuration files processed by result",
			},
			[]string{"result"},
		),
		LoadDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sealenv_file_load_duration_seconds",
				Help:    "Configuration file load duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		KeysLoaded: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sealenv_file_keys",
				Help:    "Keys per loaded configuration file",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}
}

func (m *Metrics) observeLoad(start time.Time, cfg *Config, err error) {
	if m == nil {
		return
	}
	m.LoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.FilesTotal.WithLabelValues(resultFailed).Inc()
		return
	}
	m.FilesTotal.WithLabelValues(resultLoaded).Inc()
	m.KeysLoaded.Observe(float64(cfg.Len()))
}

func (m *Metrics) observeSkipped(n int) {
	if m == nil || n == 0 {
		return
	}
	m.FilesTotal.WithLabelValues(resultSkipped).Add(float64(n))
}
