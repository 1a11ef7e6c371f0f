package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ResponsesTotal       *prometheus.CounterVec   // Ответы конвейера по пути (cache/origin) и коду
	ClassificationsTotal *prometheus.CounterVec   // Исходники по классификации
	TransformLatency     *prometheus.HistogramVec // Время преобразования
	ErrorsTotal          *prometheus.CounterVec   // Ошибки по типу
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ResponsesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emoji_resizer_pipeline_responses_total",
				Help: "Total number of pipeline responses by path and status code",
			},
			[]string{"path", "code"}, // cache/origin, 200/304/...
		),
		ClassificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emoji_resizer_pipeline_classifications_total",
				Help: "Total number of fetched source images by classification",
			},
			[]string{"classification"},
		),
		TransformLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emoji_resizer_pipeline_transform_seconds",
				Help:    "Time spent decoding, resizing and encoding source images",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"classification"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emoji_resizer_pipeline_errors_total",
				Help: "Total number of pipeline errors by kind",
			},
			[]string{"kind"}, // fetch, not_found, upstream, decode, encode
		),
	}
}
