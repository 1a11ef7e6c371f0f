// Package origin загружает исходные изображения эмодзи с удаленного источника.
package origin

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"emojiresizer/logger"
)

// New создает источник по конфигурации и оборачивает его метриками.
// Для типа mock возвращается пустой *MockOrigin, его можно наполнить через Unwrap.
func New(ctx context.Context, cfg *Config, reg prometheus.Registerer) (*Instrumented, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid origin config: %w", err)
	}

	var o Origin
	switch cfg.Type {
	case TypeHTTP:
		o = NewHTTPOrigin(cfg.HTTP, cfg.MaxBodyBytes)
		logger.Info("Created HTTP origin (template: %s)", cfg.HTTP.URLTemplate)
	case TypeS3:
		s3o, err := NewS3Origin(ctx, cfg.S3, cfg.MaxBodyBytes)
		if err != nil {
			return nil, err
		}
		o = s3o
	case TypeMock:
		o = NewMockOrigin()
		logger.Warn("Using in-memory mock origin")
	}

	return Instrument(o, reg), nil
}

// Instrumented записывает метрики для каждого обращения к источнику
type Instrumented struct {
	origin  Origin
	metrics *Metrics
}

// Instrument оборачивает источник метриками
func Instrument(o Origin, reg prometheus.Registerer) *Instrumented {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Instrumented{
		origin:  o,
		metrics: NewMetrics(reg),
	}
}

// Unwrap возвращает исходный источник
func (i *Instrumented) Unwrap() Origin {
	return i.origin
}

func (i *Instrumented) Name() string {
	return i.origin.Name()
}

func (i *Instrumented) SourceURL(id string) string {
	return i.origin.SourceURL(id)
}

func (i *Instrumented) Fetch(ctx context.Context, id string) (*Asset, error) {
	start := time.Now()
	asset, err := i.origin.Fetch(ctx, id)
	latency := time.Since(start)

	name := i.origin.Name()
	i.metrics.RequestsTotal.WithLabelValues(name, resultLabel(err)).Inc()
	i.metrics.Latency.WithLabelValues(name).Observe(latency.Seconds())
	if asset != nil {
		i.metrics.BytesRead.WithLabelValues(name).Add(float64(len(asset.Data)))
	}

	logger.Debug("Origin %s: fetch %s finished in %v (result: %s)", name, id, latency, resultLabel(err))
	return asset, err
}
