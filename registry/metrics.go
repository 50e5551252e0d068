package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultHit     = "hit"
	resultMiss    = "miss"
	resultStale   = "stale"
	resultError   = "error"
	metricsPrefix = "skemac_registry_"
)

type metrics struct {
	lookups         *prometheus.CounterVec
	compileDuration prometheus.Histogram
	evictions       prometheus.Counter
	entries         prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		lookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: metricsPrefix + "lookups_total",
			Help: "Total number of schema lookups by result.",
		}, []string{"result"}),
		compileDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    metricsPrefix + "compile_duration_seconds",
			Help:    "Time spent parsing and compiling schema documents.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		evictions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "evictions_total",
			Help: "Total number of compiled validators evicted from the cache.",
		}),
		entries: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: metricsPrefix + "entries",
			Help: "Current number of compiled validators in the cache.",
		}),
	}
	for _, r := range []string{resultHit, resultMiss, resultStale, resultError} {
		m.lookups.WithLabelValues(r)
	}
	return m
}
