package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"emojiresizer/apigw"
	"emojiresizer/cache"
	"emojiresizer/monitoring"
	"emojiresizer/origin"
	"emojiresizer/transform"
)

// AppConfig содержит полную конфигурацию приложения
type AppConfig struct {
	// Конфигурация API Gateway
	Server ServerConfig `yaml:"server"`

	// Конфигурация логирования
	Logging LoggingConfig `yaml:"logging"`

	// Источник исходных изображений
	Origin origin.Config `yaml:"origin"`

	Cache     cache.Config     `yaml:"cache"`
	Transform transform.Config `yaml:"transform"`

	// Конфигурация мониторинга
	Monitoring monitoring.Config `yaml:"monitoring"`
}

const redactedSecret = "******"

// Redacted возвращает копию конфигурации со скрытыми секретами для вывода
func (c *AppConfig) Redacted() *AppConfig {
	cp := *c
	if cp.Origin.S3.SecretKey != "" {
		cp.Origin.S3.SecretKey = redactedSecret
	}
	return &cp
}

// ServerConfig содержит конфигурацию HTTP сервера
type ServerConfig struct {
	ListenAddress string        `yaml:"listen_address"`
	TLSCertFile   string        `yaml:"tls_cert_file"`
	TLSKeyFile    string        `yaml:"tls_key_file"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout - сколько ждать завершения запросов при остановке
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig содержит конфигурацию логирования
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultAppConfig возвращает конфигурацию по умолчанию
func DefaultAppConfig() *AppConfig {
	gw := apigw.DefaultConfig()

	return &AppConfig{
		Server: ServerConfig{
			ListenAddress:   gw.ListenAddress,
			ReadTimeout:     gw.ReadTimeout,
			WriteTimeout:    gw.WriteTimeout,
			IdleTimeout:     gw.IdleTimeout,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Origin:     *origin.DefaultConfig(),
		Cache:      *cache.DefaultConfig(),
		Transform:  *transform.DefaultConfig(),
		Monitoring: *monitoring.DefaultConfig(),
	}
}

// LoadConfig загружает конфигурацию из файла поверх значений по умолчанию
func LoadConfig(filename string) (*AppConfig, error) {
	// Читаем файл
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	// Начинаем с конфигурации по умолчанию
	config := DefaultAppConfig()

	// Парсим YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	// Валидируем конфигурацию
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate проверяет корректность конфигурации
func (c *AppConfig) Validate() error {
	// Валидируем server конфигурацию
	if c.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address cannot be empty")
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	// Проверяем TLS конфигурацию
	if (c.Server.TLSCertFile != "") != (c.Server.TLSKeyFile != "") {
		return fmt.Errorf("both tls_cert_file and tls_key_file must be specified for TLS")
	}

	// Валидируем логирование
	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}

	// Валидируем конфигурации модулей
	if err := c.Origin.Validate(); err != nil {
		return fmt.Errorf("origin config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Transform.Validate(); err != nil {
		return fmt.Errorf("transform config: %w", err)
	}

	if err := c.Monitoring.Validate(); err != nil {
		return fmt.Errorf("monitoring config: %w", err)
	}

	return nil
}

// ToAPIGatewayConfig преобразует в конфигурацию API Gateway
func (c *AppConfig) ToAPIGatewayConfig() apigw.Config {
	return apigw.Config{
		ListenAddress: c.Server.ListenAddress,
		TLSCertFile:   c.Server.TLSCertFile,
		TLSKeyFile:    c.Server.TLSKeyFile,
		ReadTimeout:   c.Server.ReadTimeout,
		WriteTimeout:  c.Server.WriteTimeout,
		IdleTimeout:   c.Server.IdleTimeout,
	}
}

// isValidLogLevel проверяет корректность уровня логирования
func isValidLogLevel(level string) bool {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return true
		}
	}
	return false
}

// SaveConfig сохраняет конфигурацию в файл (для генерации примера)
func (c *AppConfig) SaveConfig(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", filename, err)
	}

	return nil
}
