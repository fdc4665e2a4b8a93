package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes used as the "result" label.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
	ResultError  = "error"
)

// Metrics holds the converter's counters for the two outgoing calls and the
// number of open pages.
type Metrics struct {
	RateFetchTotal    *prometheus.CounterVec
	RateFetchDuration prometheus.Histogram

	ConversionTotal    *prometheus.CounterVec
	ConversionDuration prometheus.Histogram

	SessionsActive prometheus.Gauge
}

// New registers the metrics on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RateFetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "converter_rate_fetch_total",
				Help: "Rate feed requests by result",
			},
			[]string{"result"},
		),
		RateFetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "converter_rate_fetch_duration_seconds",
				Help:    "Rate feed request latency",
				Buckets: prometheus.DefBuckets,
			},
		),
		ConversionTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "converter_conversion_total",
				Help: "Conversion webhook requests by result",
			},
			[]string{"result"},
		),
		ConversionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "converter_conversion_duration_seconds",
				Help:    "Conversion webhook latency",
				Buckets: prometheus.DefBuckets,
			},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "converter_sessions_active",
				Help: "Converter pages currently held in memory",
			},
		),
	}
}

func (m *Metrics) ObserveRateFetch(start time.Time, err error) {
	m.RateFetchDuration.Observe(time.Since(start).Seconds())
	m.RateFetchTotal.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) ObserveConversion(start time.Time, result string) {
	m.ConversionDuration.Observe(time.Since(start).Seconds())
	m.ConversionTotal.WithLabelValues(result).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
