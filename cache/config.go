package cache

import (
	"fmt"
	"time"
)

// Config содержит конфигурацию кэша результатов
type Config struct {
	// MaxEntries - максимальное количество записей, при переполнении вытесняется самая старая по использованию
	MaxEntries int `yaml:"max_entries"`

	// TTL - время жизни записи с момента вставки; чтение его не продлевает
	TTL time.Duration `yaml:"ttl"`
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		MaxEntries: 50_000,
		TTL:        24 * time.Hour,
	}
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.MaxEntries <= 0 {
		return fmt.Errorf("max_entries must be positive")
	}

	if c.TTL <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	return nil
}
