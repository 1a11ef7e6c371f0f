package transform

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// Config содержит параметры преобразования статичных изображений
type Config struct {
	// Width, Height - размеры рамки, в которую вписывается изображение
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Filter - фильтр ресемплинга: lanczos, catmullrom, linear, nearest
	Filter string `yaml:"filter"`

	// MaxPixels - предел Width*Height исходника по заголовку. Размер тела
	// ограничивает только сжатые байты, а буфер декодера растет с площадью.
	MaxPixels int64 `yaml:"max_pixels"`
}

// DefaultMaxPixels соответствует 128 MiB буфера RGBA
const DefaultMaxPixels = 32 * 1024 * 1024

// DefaultConfig возвращает конфигурацию по умолчанию (160x160, Lanczos)
func DefaultConfig() *Config {
	return &Config{
		Width:  160,
		Height: 160,
		Filter: "lanczos",

		MaxPixels: DefaultMaxPixels,
	}
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", c.Width, c.Height)
	}

	if c.MaxPixels <= 0 {
		return fmt.Errorf("max_pixels must be positive, got %d", c.MaxPixels)
	}

	if _, ok := filters[c.Filter]; !ok {
		return fmt.Errorf("unknown resample filter: %s", c.Filter)
	}

	return nil
}

var filters = map[string]imaging.ResampleFilter{
	"lanczos":    imaging.Lanczos,
	"catmullrom": imaging.CatmullRom,
	"linear":     imaging.Linear,
	"nearest":    imaging.NearestNeighbor,
}
