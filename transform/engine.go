// Package transform вписывает статичные изображения в фиксированную рамку
// и перекодирует их в WebP. Анимированные изображения проходят без изменений.
package transform

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"emojiresizer/sniff"
)

// ErrTooLarge - заявленная в заголовке площадь превышает MaxPixels
var ErrTooLarge = errors.New("image dimensions exceed pixel limit")

// DecodeError - исходные байты не удалось декодировать
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode failed: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError - внутренняя ошибка кодирования результата
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string { return "encode failed: " + e.Err.Error() }
func (e *EncodeError) Unwrap() error { return e.Err }

// Result описывает выполненное преобразование
type Result struct {
	Classification sniff.Classification
	Format         string // формат исходника по данным image.Decode, пусто для анимации
	SourceWidth    int
	SourceHeight   int
	Width          int
	Height         int
}

// Engine выполняет decode -> resize -> encode
type Engine struct {
	width     int
	height    int
	maxPixels int64
	filter    imaging.ResampleFilter
}

// New создает Engine по конфигурации
func New(config *Config) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transform config: %w", err)
	}

	return &Engine{
		width:     config.Width,
		height:    config.Height,
		maxPixels: config.MaxPixels,
		filter:    filters[config.Filter],
	}, nil
}

// Transform возвращает итоговые байты для отдачи клиенту.
// Animated - вход возвращается как есть, декодирование не выполняется.
// Static - изображение всегда масштабируется под рамку, в том числе вверх.
// Исходник с площадью больше MaxPixels отклоняется как DecodeError до декодирования.
func (e *Engine) Transform(data []byte, class sniff.Classification) ([]byte, *Result, error) {
	if class == sniff.Animated {
		return data, &Result{Classification: class}, nil
	}

	// Заголовок читается до выделения буфера под пиксели
	header, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil, &DecodeError{Err: err}
	}
	if int64(header.Width)*int64(header.Height) > e.maxPixels {
		return nil, nil, &DecodeError{
			Err: fmt.Errorf("%w: %dx%d > %d", ErrTooLarge, header.Width, header.Height, e.maxPixels),
		}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, &DecodeError{Err: err}
	}

	bounds := img.Bounds()
	res := &Result{
		Classification: class,
		Format:         format,
		SourceWidth:    bounds.Dx(),
		SourceHeight:   bounds.Dy(),
	}
	if res.SourceWidth == 0 || res.SourceHeight == 0 {
		return nil, nil, &DecodeError{Err: fmt.Errorf("empty image %dx%d", res.SourceWidth, res.SourceHeight)}
	}

	res.Width, res.Height = FitDimensions(res.SourceWidth, res.SourceHeight, e.width, e.height)
	resized := imaging.Resize(img, res.Width, res.Height, e.filter)

	var out bytes.Buffer
	if err := nativewebp.Encode(&out, resized, nil); err != nil {
		return nil, nil, &EncodeError{Err: err}
	}

	return out.Bytes(), res, nil
}

// FitDimensions возвращает наибольшие размеры не больше boxW x boxH
// с исходным соотношением сторон. Каждая сторона не меньше 1.
func FitDimensions(width, height, boxW, boxH int) (int, int) {
	wratio := float64(boxW) / float64(width)
	hratio := float64(boxH) / float64(height)
	ratio := math.Min(wratio, hratio)

	w := int(math.Round(float64(width) * ratio))
	h := int(math.Round(float64(height) * ratio))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
