package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/prometheus/client_golang/prometheus"

	"emojiresizer/apigw"
	"emojiresizer/cache"
	"emojiresizer/fetch"
	"emojiresizer/origin"
	"emojiresizer/transform"
)

// App связывает модули конвейера в один HTTP сервис
type App struct {
	Gateway *apigw.Gateway
	Fetcher *fetch.Fetcher
	Origin  *origin.Instrumented
	Cache   *cache.Cache
}

// NewApp собирает origin, cache, transform, fetch и apigw по конфигурации.
// Все метрики регистрируются в reg.
func NewApp(ctx context.Context, config *AppConfig, reg prometheus.Registerer) (*App, error) {
	src, err := origin.New(ctx, &config.Origin, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to create origin: %w", err)
	}

	if mock, ok := src.Unwrap().(*origin.MockOrigin); ok {
		if err := seedMockOrigin(mock); err != nil {
			return nil, fmt.Errorf("failed to seed mock origin: %w", err)
		}
	}

	c, err := cache.New(&config.Cache, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	engine, err := transform.New(&config.Transform)
	if err != nil {
		return nil, fmt.Errorf("failed to create transform engine: %w", err)
	}

	fetcher := fetch.NewFetcher(src, c, engine, reg)

	return &App{
		Gateway: apigw.New(config.ToAPIGatewayConfig(), fetcher, reg),
		Fetcher: fetcher,
		Origin:  src,
		Cache:   c,
	}, nil
}

// Идентификаторы, доступные в режиме --mock
const (
	mockWideID   = "1"
	mockSquareID = "2"
)

// seedMockOrigin наполняет источник в памяти парой сгенерированных PNG
func seedMockOrigin(m *origin.MockOrigin) error {
	samples := map[string][2]int{
		mockWideID:   {500, 100},
		mockSquareID: {64, 64},
	}

	for id, size := range samples {
		data, err := gradientPNG(size[0], size[1])
		if err != nil {
			return err
		}
		m.Set(id, data)
	}
	return nil
}

func gradientPNG(w, h int) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{
				R: uint8(255 * x / w),
				G: uint8(255 * y / h),
				B: 160,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
