package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"emojiresizer/logger"
)

// Server представляет HTTP сервер для экспорта метрик Prometheus
type Server struct {
	config       *Config
	metrics      *Metrics
	server       *http.Server
	shuttingDown atomic.Bool

	// Канал для остановки сбора системных метрик
	stopSystemMetrics chan struct{}
	stopOnce          sync.Once
}

// NewServer создает новый сервер метрик.
// gatherer - источник метрик для эндпоинта, обычно тот же registry,
// в котором регистрируются остальные модули.
func NewServer(config *Config, metrics *Metrics, gatherer prometheus.Gatherer) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		config:            config,
		metrics:           metrics,
		stopSystemMetrics: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.Handle(config.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health/live", s.liveHealthHandler)
	mux.HandleFunc("/health/ready", s.readyHealthHandler)

	s.server = &http.Server{
		Addr:         config.ListenAddress,
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// Handler возвращает мультиплексор сервера
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start занимает порт и обслуживает запросы в отдельной горутине.
// Ошибка занятого адреса возвращается сразу.
func (s *Server) Start() error {
	if !s.config.Enabled {
		logger.Info("Monitoring is disabled, skipping metrics server start")
		return nil
	}

	listener, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	go func() {
		logger.Info("Metrics server listening on %s%s", listener.Addr(), s.config.MetricsPath)
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed: %v", err)
		}
	}()

	if s.config.EnableSystemMetrics && s.metrics != nil {
		go s.systemMetricsLoop(s.config.SystemMetricsInterval)
	}

	return nil
}

// SetShuttingDown переводит /health/ready в 503
func (s *Server) SetShuttingDown() {
	s.shuttingDown.Store(true)
}

// Stop останавливает HTTP сервер метрик
func (s *Server) Stop(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}

	logger.Info("Stopping metrics server...")
	s.SetShuttingDown()

	// Останавливаем сбор системных метрик
	s.stopOnce.Do(func() { close(s.stopSystemMetrics) })

	return s.server.Shutdown(ctx)
}

func (s *Server) systemMetricsLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.metrics.collectSystem()
	for {
		select {
		case <-ticker.C:
			s.metrics.collectSystem()
		case <-s.stopSystemMetrics:
			return
		}
	}
}

// liveHealthHandler обрабатывает запросы /health/live
func (s *Server) liveHealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok"}`)
}

// readyHealthHandler обрабатывает запросы /health/ready
func (s *Server) readyHealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Во время graceful shutdown балансировщик должен перестать слать трафик
	if s.shuttingDown.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, `{"status":"shutting down"}`)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok"}`)
}
