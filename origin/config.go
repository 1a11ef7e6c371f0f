package origin

import (
	"fmt"
	"strings"
	"time"
)

const (
	TypeHTTP = "http"
	TypeS3   = "s3"
	TypeMock = "mock"
)

// Config содержит конфигурацию источника исходных изображений
type Config struct {
	// Type - тип источника: http, s3 или mock
	Type string `yaml:"type"`

	// MaxBodyBytes - предельный размер исходника, больший ответ считается ошибкой загрузки
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	HTTP HTTPConfig `yaml:"http"`
	S3   S3Config   `yaml:"s3"`
}

// HTTPConfig содержит настройки загрузки с CDN
type HTTPConfig struct {
	// URLTemplate - шаблон адреса, {id} заменяется идентификатором
	URLTemplate string `yaml:"url_template"`

	Accept    string `yaml:"accept"`
	UserAgent string `yaml:"user_agent"`

	// ConnectTimeout - таймаут установки соединения
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// RequestTimeout - таймаут всего запроса, включая чтение тела
	RequestTimeout time.Duration `yaml:"request_timeout"`

	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// S3Config содержит настройки зеркала исходников в S3-совместимом хранилище
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`   // URL эндпоинта S3 (пусто - AWS по умолчанию)
	Region    string `yaml:"region"`     // Регион AWS (например, us-east-1)
	Bucket    string `yaml:"bucket"`     // Имя бакета с исходниками
	Prefix    string `yaml:"prefix"`     // Префикс ключа, ключ = prefix + id
	AccessKey string `yaml:"access_key"` // Access Key для аутентификации
	SecretKey string `yaml:"secret_key"` // Secret Key для аутентификации
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Type:         TypeHTTP,
		MaxBodyBytes: 10 << 20,
		HTTP: HTTPConfig{
			URLTemplate:         "https://cdn.discordapp.com/emojis/{id}?size=160&animated=true",
			Accept:              "image/webp,image/*",
			UserAgent:           "emoji-resizer/0.1 (+https://example.local)",
			ConnectTimeout:      5 * time.Second,
			RequestTimeout:      15 * time.Second,
			MaxIdleConnsPerHost: 32,
			IdleConnTimeout:     30 * time.Second,
		},
		S3: S3Config{
			Region: "us-east-1",
			Prefix: "emojis/",
		},
	}
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive")
	}

	switch c.Type {
	case TypeHTTP:
		if err := c.HTTP.Validate(); err != nil {
			return fmt.Errorf("http: %w", err)
		}
	case TypeS3:
		if err := c.S3.Validate(); err != nil {
			return fmt.Errorf("s3: %w", err)
		}
	case TypeMock:
	default:
		return fmt.Errorf("unknown origin type: %q (expected http, s3 or mock)", c.Type)
	}

	return nil
}

// Validate проверяет корректность настроек HTTP источника
func (hc *HTTPConfig) Validate() error {
	if !strings.Contains(hc.URLTemplate, "{id}") {
		return fmt.Errorf("url_template must contain {id} placeholder")
	}

	if !strings.HasPrefix(hc.URLTemplate, "http://") && !strings.HasPrefix(hc.URLTemplate, "https://") {
		return fmt.Errorf("url_template must be an http(s) URL")
	}

	if hc.ConnectTimeout <= 0 {
		return fmt.Errorf("connect_timeout must be positive")
	}

	if hc.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}

	if hc.MaxIdleConnsPerHost < 0 {
		return fmt.Errorf("max_idle_conns_per_host cannot be negative")
	}

	return nil
}

// Validate проверяет корректность настроек S3 источника
func (sc *S3Config) Validate() error {
	if sc.Region == "" {
		return fmt.Errorf("region cannot be empty")
	}

	if sc.Bucket == "" {
		return fmt.Errorf("bucket cannot be empty")
	}

	if (sc.AccessKey == "") != (sc.SecretKey == "") {
		return fmt.Errorf("access_key and secret_key must be specified together")
	}

	return nil
}
