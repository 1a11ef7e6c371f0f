// Package sniff определяет, анимирован ли WebP, не декодируя изображение.
package sniff

import (
	"bytes"
	"encoding/binary"
)

// Classification - результат анализа контейнера
type Classification int

const (
	Static Classification = iota
	Animated
)

// String возвращает строковое представление классификации
func (c Classification) String() string {
	switch c {
	case Animated:
		return "animated"
	default:
		return "static"
	}
}

const (
	headerSize      = 12
	chunkHeaderSize = 8

	// animationFlag - бит 1 байта флагов VP8X
	animationFlag = 0x02
)

var (
	riffMarker = []byte("RIFF")
	webpMarker = []byte("WEBP")
	chunkVP8X  = []byte("VP8X")
	chunkANIM  = []byte("ANIM")
)

// IsWebP проверяет сигнатуру контейнера "RIFF????WEBP"
func IsWebP(data []byte) bool {
	if len(data) < headerSize {
		return false
	}
	return bytes.Equal(data[0:4], riffMarker) && bytes.Equal(data[8:12], webpMarker)
}

// Classify проходит по списку чанков RIFF и ищет признаки анимации:
// бит 0x02 в VP8X или наличие чанка ANIM в любой позиции. Сброшенный
// бит VP8X не прерывает обход, так как ANIM может идти следом: файл
// VP8X(бит сброшен)+ANIM считается анимированным, хотя остановка обхода
// на первом VP8X дала бы Static.
// Любые неразборчивые данные считаются статичными: реальная ошибка
// всплывет позже, на этапе декодирования.
func Classify(data []byte) Classification {
	if !IsWebP(data) {
		return Static
	}

	n := uint64(len(data))
	pos := uint64(headerSize)
	for pos+chunkHeaderSize <= n {
		fourcc := data[pos : pos+4]
		size := uint64(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		payload := pos + chunkHeaderSize

		// Выставленный бит анимации в VP8X - окончательный ответ
		if bytes.Equal(fourcc, chunkVP8X) {
			if size > 0 && payload < n && data[payload]&animationFlag != 0 {
				return Animated
			}
		}

		// Некоторые энкодеры не выставляют бит в VP8X, но пишут ANIM
		if bytes.Equal(fourcc, chunkANIM) {
			return Animated
		}

		next := payload + size + size%2
		if next > n {
			// Заявленный размер выходит за буфер
			return Static
		}
		pos = next
	}

	return Static
}
