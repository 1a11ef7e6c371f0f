package origin

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsTotal *prometheus.CounterVec   // Количество запросов к origin по результату
	Latency       *prometheus.HistogramVec // Латентность запросов к origin
	BytesRead     *prometheus.CounterVec   // Количество прочитанных байт
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emoji_resizer_origin_requests_total",
				Help: "Total number of requests sent to the origin",
			},
			[]string{"origin", "result"}, // ok, not_found, upstream_error, fetch_error
		),
		Latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emoji_resizer_origin_latency_seconds",
				Help:    "Latency of requests to the origin in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"origin"},
		),
		BytesRead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emoji_resizer_origin_bytes_read_total",
				Help: "Total number of bytes read from the origin",
			},
			[]string{"origin"},
		),
	}
}
