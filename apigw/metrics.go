package apigw

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Общие метрики запросов
	RequestsTotal    *prometheus.CounterVec   // Общее количество обработанных запросов
	RequestLatency   *prometheus.HistogramVec // Латентность запросов
	RequestsInFlight prometheus.Gauge         // Запросы в обработке
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emoji_resizer_http_requests_total",
				Help: "Total number of processed HTTP requests",
			},
			[]string{"route", "method", "code"},
		),
		RequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emoji_resizer_http_request_latency_seconds",
				Help:    "Latency of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets, // Стандартные бакеты времени
			},
			[]string{"route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "emoji_resizer_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),
	}
}
