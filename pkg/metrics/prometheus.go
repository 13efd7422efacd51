package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements cache.Observer and domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheEvents   *prometheus.CounterVec
	fetchTotal    *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	published     *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	priceRows     *prometheus.GaugeVec
	lastFetchedAt *prometheus.GaugeVec
}

// New creates a Recorder registered with the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Recorder registered with reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cacheEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commoditypulse_cache_events_total",
				Help: "Report cache lookups by outcome",
			},
			[]string{"key", "outcome"},
		),
		fetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commoditypulse_fetch_total",
				Help: "Upstream report fetches by result",
			},
			[]string{"key", "result"},
		),
		fetchLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "commoditypulse_fetch_duration_seconds",
				Help:    "Duration of upstream report fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"key"},
		),
		published: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commoditypulse_reports_published_total",
				Help: "Total number of reports sent to a backend",
			},
			[]string{"backend", "source"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commoditypulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		priceRows: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "commoditypulse_price_rows",
				Help: "Number of price rows in the last fetched report",
			},
			[]string{"source", "state"},
		),
		lastFetchedAt: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "commoditypulse_last_fetch_timestamp_seconds",
				Help: "Unix time of the last successful fetch",
			},
			[]string{"key"},
		),
	}
}

func (r *Recorder) CacheHit(key string)       { r.cacheEvents.WithLabelValues(key, "hit").Inc() }
func (r *Recorder) CacheMiss(key string)      { r.cacheEvents.WithLabelValues(key, "miss").Inc() }
func (r *Recorder) FetchCoalesced(key string) { r.cacheEvents.WithLabelValues(key, "coalesced").Inc() }

// FetchDone records one upstream fetch.
func (r *Recorder) FetchDone(key string, d time.Duration, err error) {
	r.fetchLatency.WithLabelValues(key).Observe(d.Seconds())
	if err != nil {
		r.fetchTotal.WithLabelValues(key, "error").Inc()
		return
	}
	r.fetchTotal.WithLabelValues(key, "ok").Inc()
	r.lastFetchedAt.WithLabelValues(key).Set(float64(time.Now().Unix()))
}

// RecordPublished records a report sent to a backend.
func (r *Recorder) RecordPublished(backend, source string) {
	r.published.WithLabelValues(backend, source).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordPriceRows records how many price rows a report carried and how many were disabled.
func (r *Recorder) RecordPriceRows(source string, total, disabled int) {
	r.priceRows.WithLabelValues(source, "total").Set(float64(total))
	r.priceRows.WithLabelValues(source, "disabled").Set(float64(disabled))
}
