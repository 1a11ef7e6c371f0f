package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"emojiresizer/logger"
	"emojiresizer/monitoring"
	"emojiresizer/origin"
)

// version задается при сборке через -ldflags "-X main.version=..."
var version = "dev"

// cliOverrides - значения флагов, перекрывающие файл конфигурации
type cliOverrides struct {
	listenAddr      string
	logLevel        string
	logFormat       string
	metricsAddr     string
	disableMetrics  bool
	useMock         bool
	cacheTTL        time.Duration
	cacheMaxEntries int
}

func main() {
	// Парсим аргументы командной строки
	var (
		configFile  = flag.StringP("config", "c", "", "Configuration file path (YAML)")
		printConfig = flag.Bool("print-config", false, "Print effective configuration and exit")
		o           cliOverrides
	)
	flag.StringVarP(&o.listenAddr, "listen", "l", "", "Listen address (overrides config)")
	flag.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error) (overrides config)")
	flag.StringVar(&o.logFormat, "log-format", "", "Log format (console, json) (overrides config)")
	flag.StringVar(&o.metricsAddr, "metrics-listen", "", "Metrics server listen address (overrides config)")
	flag.BoolVar(&o.disableMetrics, "disable-metrics", false, "Disable metrics server (overrides config)")
	flag.BoolVar(&o.useMock, "mock", false, "Serve generated images from an in-memory origin")
	flag.DurationVar(&o.cacheTTL, "cache-ttl", 0, "Cache entry lifetime (overrides config)")
	flag.IntVar(&o.cacheMaxEntries, "cache-max-entries", 0, "Cache capacity in entries (overrides config)")
	flag.Parse()

	// Загружаем конфигурацию
	config := DefaultAppConfig()
	if *configFile != "" {
		logger.Info("Loading configuration from file: %s", *configFile)
		loaded, err := LoadConfig(*configFile)
		if err != nil {
			logger.Error("Failed to load configuration: %v", err)
			os.Exit(1)
		}
		config = loaded
		logger.Info("Configuration loaded successfully")
	}

	// Применяем переопределения из командной строки
	applyCommandLineOverrides(config, o)

	if err := config.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	if *printConfig {
		data, err := yaml.Marshal(config.Redacted())
		if err != nil {
			logger.Error("Failed to marshal configuration: %v", err)
			os.Exit(1)
		}
		fmt.Print(string(data))
		return
	}

	// Устанавливаем уровень и формат логирования
	level := logger.ParseLogLevel(config.Logging.Level)
	logger.SetGlobalFormat(logger.Format(config.Logging.Format))
	logger.SetGlobalLevel(level)
	defer logger.Sync()

	logger.Info("Emoji resizer %s starting...", version)
	logger.Info("Log level: %s", level.String())

	if err := run(config); err != nil {
		logger.Error("%v", err)
		logger.Sync()
		os.Exit(1)
	}
}

// run запускает сервис и блокируется до сигнала остановки
func run(config *AppConfig) error {
	reg := prometheus.DefaultRegisterer

	// Создаем и запускаем модуль мониторинга
	var monitor *monitoring.Monitor
	if config.Monitoring.Enabled {
		var err error
		monitor, err = monitoring.New(&config.Monitoring, version, reg, prometheus.DefaultGatherer)
		if err != nil {
			return fmt.Errorf("failed to create monitoring module: %w", err)
		}
		if err := monitor.Start(); err != nil {
			return fmt.Errorf("failed to start monitoring module: %w", err)
		}
		logger.Info("Monitoring enabled on %s", config.Monitoring.ListenAddress)
	} else {
		logger.Info("Monitoring disabled")
	}

	app, err := NewApp(context.Background(), config, reg)
	if err != nil {
		return err
	}

	gatewayConfig := config.ToAPIGatewayConfig()
	logger.Info("Configuration:")
	logger.Info("  Listen Address: %s", gatewayConfig.ListenAddress)
	logger.Info("  Origin: %s", app.Origin.Name())
	if config.Origin.Type == origin.TypeHTTP {
		logger.Info("  Origin URL template: %s", config.Origin.HTTP.URLTemplate)
	}
	logger.Info("  Cache: max %d entries, ttl %v", config.Cache.MaxEntries, config.Cache.TTL)
	logger.Info("  Box: %dx%d (%s)", config.Transform.Width, config.Transform.Height, config.Transform.Filter)
	if gatewayConfig.TLSCertFile != "" {
		logger.Info("  TLS Enabled: Yes")
	} else {
		logger.Info("  TLS Enabled: No")
	}

	// Настраиваем graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Запускаем API Gateway в отдельной горутине
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Gateway.Start()
	}()

	logger.Info("Emoji resizer started successfully")

	// Ждем сигнал для остановки или падения сервера
	select {
	case sig := <-sigChan:
		logger.Info("Received signal %v, shutting down...", sig)
	case err := <-serveErr:
		if monitor != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
			defer cancel()
			_ = monitor.Stop(stopCtx)
		}
		return fmt.Errorf("failed to start server: %w", err)
	}

	if monitor != nil {
		monitor.SetShuttingDown()
	}

	// Создаем контекст с таймаутом для graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()

	// Останавливаем API Gateway, дожидаясь запросов в обработке
	if err := app.Gateway.Stop(ctx); err != nil {
		logger.Error("Error stopping API Gateway: %v", err)
	}

	// Останавливаем мониторинг
	if monitor != nil {
		if err := monitor.Stop(ctx); err != nil {
			logger.Error("Error stopping monitoring: %v", err)
		}
	}

	logger.Info("Emoji resizer stopped")
	return nil
}

// applyCommandLineOverrides применяет переопределения из командной строки
func applyCommandLineOverrides(config *AppConfig, o cliOverrides) {
	// Переопределения сервера
	if o.listenAddr != "" {
		config.Server.ListenAddress = o.listenAddr
		logger.Debug("Override: server.listen_address = %s", o.listenAddr)
	}

	if o.useMock {
		config.Origin.Type = origin.TypeMock
		logger.Debug("Override: origin.type = mock")
	}

	// Переопределения логирования
	if o.logLevel != "" {
		config.Logging.Level = o.logLevel
		logger.Debug("Override: logging.level = %s", o.logLevel)
	}

	if o.logFormat != "" {
		config.Logging.Format = o.logFormat
		logger.Debug("Override: logging.format = %s", o.logFormat)
	}

	// Переопределения кэша
	if o.cacheTTL > 0 {
		config.Cache.TTL = o.cacheTTL
		logger.Debug("Override: cache.ttl = %v", o.cacheTTL)
	}

	if o.cacheMaxEntries > 0 {
		config.Cache.MaxEntries = o.cacheMaxEntries
		logger.Debug("Override: cache.max_entries = %d", o.cacheMaxEntries)
	}

	// Переопределения мониторинга
	if o.metricsAddr != "" {
		config.Monitoring.ListenAddress = o.metricsAddr
		logger.Debug("Override: monitoring.listen_address = %s", o.metricsAddr)
	}

	if o.disableMetrics {
		config.Monitoring.Enabled = false
		logger.Debug("Override: monitoring.enabled = false")
	}
}
