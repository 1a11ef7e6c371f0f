package monitoring

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics - метрики процесса. Метрики конвейера регистрируются
// пакетами cache, origin, fetch и apigw в тот же registry.
type Metrics struct {
	BuildInfo   *prometheus.GaugeVec
	MemoryUsage prometheus.Gauge // Использование heap
	Goroutines  prometheus.Gauge
}

// NewMetrics создает и регистрирует метрики процесса в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		BuildInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "emoji_resizer_build_info",
				Help: "Build information, value is always 1",
			},
			[]string{"version", "go_version"},
		),
		MemoryUsage: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "emoji_resizer_memory_usage_bytes",
				Help: "Heap memory in use in bytes",
			},
		),
		Goroutines: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "emoji_resizer_goroutines",
				Help: "Number of running goroutines",
			},
		),
	}
}

// collectSystem снимает текущие значения памяти и горутин
func (m *Metrics) collectSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.MemoryUsage.Set(float64(ms.HeapInuse))
	m.Goroutines.Set(float64(runtime.NumGoroutine()))
}
