// Package monitoring поднимает отдельный HTTP сервер с метриками
// Prometheus и health check эндпоинтами.
package monitoring

import (
	"context"
	"fmt"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"

	"emojiresizer/logger"
)

// Monitor представляет основной интерфейс модуля мониторинга
type Monitor struct {
	config  *Config
	metrics *Metrics
	server  *Server
}

// New создает новый экземпляр Monitor.
// Метрики процесса регистрируются в reg, эндпоинт отдает содержимое gatherer.
// Если reg == nil, используется default registry.
func New(config *Config, version string, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*Monitor, error) {
	if config == nil {
		config = DefaultConfig()
	}

	// Валидируем конфигурацию
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid monitoring config: %w", err)
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	metrics := NewMetrics(reg)
	metrics.BuildInfo.WithLabelValues(version, runtime.Version()).Set(1)

	monitor := &Monitor{
		config:  config,
		metrics: metrics,
		server:  NewServer(config, metrics, gatherer),
	}

	logger.Info("Monitoring module initialized")
	logger.Debug("Monitoring config: enabled=%v, listen=%s, path=%s",
		config.Enabled, config.ListenAddress, config.MetricsPath)

	return monitor, nil
}

// Start запускает модуль мониторинга
func (m *Monitor) Start() error {
	if !m.config.Enabled {
		logger.Info("Monitoring is disabled")
		return nil
	}

	logger.Info("Starting monitoring module...")

	if err := m.server.Start(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	logger.Info("Monitoring module started successfully")
	return nil
}

// SetShuttingDown сообщает о начале остановки через /health/ready
func (m *Monitor) SetShuttingDown() {
	m.server.SetShuttingDown()
}

// Stop останавливает модуль мониторинга
func (m *Monitor) Stop(ctx context.Context) error {
	if !m.config.Enabled {
		return nil
	}

	logger.Info("Stopping monitoring module...")

	if err := m.server.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop metrics server: %w", err)
	}

	logger.Info("Monitoring module stopped")
	return nil
}

// GetConfig возвращает конфигурацию мониторинга
func (m *Monitor) GetConfig() *Config {
	return m.config
}

// GetMetrics возвращает метрики процесса
func (m *Monitor) GetMetrics() *Metrics {
	return m.metrics
}

// IsEnabled возвращает true, если мониторинг включен
func (m *Monitor) IsEnabled() bool {
	return m.config.Enabled
}
