package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes the assistant's operational metrics through the
// default Prometheus registry, scraped at /metrics.
type Recorder struct {
	upstreamCalls *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
	routeMatches  *prometheus.CounterVec
	cacheRefresh  *prometheus.CounterVec
}

// New registers and returns the metric set. Call once per process.
func New() *Recorder {
	return &Recorder{
		upstreamCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sully_upstream_calls_total",
				Help: "Upstream provider calls by provider and result",
			},
			[]string{"provider", "result"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sully_last_price",
				Help: "Last fetched price per symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sully_operation_seconds",
				Help:    "Operation latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		routeMatches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sully_route_matches_total",
				Help: "Chat messages dispatched per router branch",
			},
			[]string{"branch"},
		),
		cacheRefresh: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sully_snapshot_cache_total",
				Help: "Snapshot cache accesses by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (r *Recorder) RecordUpstreamCall(provider string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.upstreamCalls.WithLabelValues(provider, result).Inc()
}

func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordRouteMatch(branch string) {
	r.routeMatches.WithLabelValues(branch).Inc()
}

func (r *Recorder) RecordCacheRefresh(outcome string) {
	r.cacheRefresh.WithLabelValues(outcome).Inc()
}
