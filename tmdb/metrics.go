package tmdb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess        = "success"
	outcomeStatusError    = "status_error"
	outcomeDecodeError    = "decode_error"
	outcomeTransportError = "transport_error"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_requests_total",
			Help: "Total number of TMDB popular movies requests by outcome",
		},
		[]string{"outcome"},
	)

	requestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tmdb_request_duration_seconds",
			Help:    "Duration of TMDB popular movies requests",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func observeRequest(outcome string, started time.Time) {
	requestsTotal.WithLabelValues(outcome).Inc()
	requestDuration.Observe(time.Since(started).Seconds())
}
