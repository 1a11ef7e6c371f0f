package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HitsTotal      prometheus.Counter // Количество попаданий в кэш
	MissesTotal    prometheus.Counter // Количество промахов кэша
	EvictionsTotal prometheus.Counter // Вытеснения по TTL или по емкости
	StoredBytes    prometheus.Counter // Суммарный объем записанных в кэш данных
}

func NewMetrics(reg prometheus.Registerer, entries func() float64) *Metrics {
	factory := promauto.With(reg)

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "emoji_resizer_cache_entries",
			Help: "Current number of entries in the result cache",
		},
		entries,
	)

	return &Metrics{
		HitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "emoji_resizer_cache_hits_total",
				Help: "Total number of cache hits",
			},
		),
		MissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "emoji_resizer_cache_misses_total",
				Help: "Total number of cache misses",
			},
		),
		EvictionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "emoji_resizer_cache_evictions_total",
				Help: "Total number of entries removed by TTL expiry or capacity pressure",
			},
		),
		StoredBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "emoji_resizer_cache_stored_bytes_total",
				Help: "Total number of bytes inserted into the result cache",
			},
		),
	}
}
