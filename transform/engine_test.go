package transform

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"

	"emojiresizer/sniff"
)

func solidImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(w, h)))
	return buf.Bytes()
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := New(nil)
	require.NoError(t, err)
	return engine
}

func TestFitDimensions(t *testing.T) {
	testCases := []struct {
		w, h             int
		expectW, expectH int
	}{
		{500, 100, 160, 32},
		{100, 500, 32, 160},
		{160, 160, 160, 160},
		{320, 320, 160, 160},
		{50, 50, 160, 160}, // меньшие изображения масштабируются вверх
		{80, 40, 160, 80},
		{1000, 1, 160, 1}, // сторона не схлопывается в 0
		{3, 1000, 1, 160},
		{300, 200, 160, 107},
	}

	for _, tc := range testCases {
		w, h := FitDimensions(tc.w, tc.h, 160, 160)
		assert.Equal(t, tc.expectW, w, "width for %dx%d", tc.w, tc.h)
		assert.Equal(t, tc.expectH, h, "height for %dx%d", tc.w, tc.h)
		assert.LessOrEqual(t, w, 160)
		assert.LessOrEqual(t, h, 160)
	}
}

func TestTransform_StaticPNG(t *testing.T) {
	engine := newEngine(t)

	out, res, err := engine.Transform(encodePNG(t, 500, 100), sniff.Static)
	require.NoError(t, err)

	assert.Equal(t, "png", res.Format)
	assert.Equal(t, 500, res.SourceWidth)
	assert.Equal(t, 100, res.SourceHeight)
	assert.Equal(t, 160, res.Width)
	assert.Equal(t, 32, res.Height)

	assert.True(t, sniff.IsWebP(out), "output must be a WebP container")
	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 160, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
}

func TestTransform_UpscalesSmallImage(t *testing.T) {
	engine := newEngine(t)

	out, res, err := engine.Transform(encodePNG(t, 40, 20), sniff.Static)
	require.NoError(t, err)
	assert.Equal(t, 160, res.Width)
	assert.Equal(t, 80, res.Height)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 160, cfg.Width)
	assert.Equal(t, 80, cfg.Height)
}

func TestTransform_OtherStaticFormats(t *testing.T) {
	engine := newEngine(t)

	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, solidImage(200, 400), nil))

	var gf bytes.Buffer
	require.NoError(t, gif.Encode(&gf, solidImage(64, 32), nil))

	testCases := []struct {
		name   string
		data   []byte
		format string
		w, h   int
	}{
		{"jpeg", jpg.Bytes(), "jpeg", 80, 160},
		{"gif", gf.Bytes(), "gif", 160, 80},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, res, err := engine.Transform(tc.data, sniff.Static)
			require.NoError(t, err)
			assert.Equal(t, tc.format, res.Format)
			assert.Equal(t, tc.w, res.Width)
			assert.Equal(t, tc.h, res.Height)
			assert.True(t, sniff.IsWebP(out))
		})
	}
}

func TestTransform_ReencodesOwnOutput(t *testing.T) {
	engine := newEngine(t)

	first, _, err := engine.Transform(encodePNG(t, 300, 150), sniff.Static)
	require.NoError(t, err)

	// Результат - валидный статичный WebP, его можно снова прогнать через движок
	assert.Equal(t, sniff.Static, sniff.Classify(first))
	_, res, err := engine.Transform(first, sniff.Static)
	require.NoError(t, err)
	assert.Equal(t, "webp", res.Format)
	assert.Equal(t, 160, res.Width)
	assert.Equal(t, 80, res.Height)
}

func TestTransform_AnimatedPassThrough(t *testing.T) {
	engine := newEngine(t)

	// Байты намеренно не являются валидным изображением: декодирование не должно вызываться
	data := []byte("RIFF\x00\x00\x00\x00WEBPANIM\x06\x00\x00\x00\x00\x00\x00\x00\x00\x00")
	out, res, err := engine.Transform(data, sniff.Animated)
	require.NoError(t, err)
	assert.Equal(t, data, out)
	assert.Equal(t, sniff.Animated, res.Classification)
	assert.Zero(t, res.Width)
}

func TestTransform_DecodeError(t *testing.T) {
	engine := newEngine(t)

	_, _, err := engine.Transform([]byte("definitely not an image"), sniff.Static)
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.Contains(t, err.Error(), "decode failed")
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(&Config{Width: 0, Height: 160, Filter: "lanczos"})
	assert.Error(t, err)

	_, err = New(&Config{Width: 160, Height: 160, Filter: "bicubic-ish", MaxPixels: DefaultMaxPixels})
	assert.Error(t, err)

	_, err = New(&Config{Width: 160, Height: 160, Filter: "lanczos", MaxPixels: 0})
	assert.Error(t, err)
}

// pngHeader возвращает PNG только с сигнатурой и IHDR: размеры заявлены,
// пиксельных данных нет
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // глубина цвета, остальное - gray без чересстрочности

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	crc := crc32.NewIEEE()
	crc.Write([]byte("IHDR"))
	crc.Write(ihdr)
	buf.WriteString("IHDR")
	buf.Write(ihdr)
	binary.Write(&buf, binary.BigEndian, crc.Sum32())
	return buf.Bytes()
}

func TestTransform_RejectsOversizedSource(t *testing.T) {
	engine := newEngine(t)

	// Несколько десятков байт, заявляющих 100000x100000 пикселей
	data := pngHeader(100000, 100000)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 100000, cfg.Width)

	out, res, err := engine.Transform(data, sniff.Static)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Nil(t, res)

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestTransform_PixelLimitBoundary(t *testing.T) {
	engine, err := New(&Config{Width: 160, Height: 160, Filter: "lanczos", MaxPixels: 400})
	require.NoError(t, err)

	_, res, err := engine.Transform(encodePNG(t, 20, 20), sniff.Static)
	require.NoError(t, err)
	assert.Equal(t, 160, res.Width)

	_, _, err = engine.Transform(encodePNG(t, 20, 21), sniff.Static)
	assert.ErrorIs(t, err, ErrTooLarge)

	// Анимация не декодируется и пределом не ограничена
	anim := []byte("RIFF\x00\x00\x00\x00WEBP")
	out, _, err := engine.Transform(anim, sniff.Animated)
	require.NoError(t, err)
	assert.Equal(t, anim, out)
}

func TestEncodeErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &EncodeError{Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "encode failed: boom", err.Error())
}
