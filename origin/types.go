package origin

import (
	"context"
	"errors"
	"fmt"
)

// Asset - исходные байты, полученные от origin
type Asset struct {
	ID          string
	SourceURL   string
	ContentType string
	Data        []byte
}

// Origin - источник исходных изображений
type Origin interface {
	// Name возвращает короткое имя источника для логов и метрик
	Name() string

	// SourceURL возвращает адрес исходника для идентификатора
	SourceURL(id string) string

	// Fetch загружает исходные байты. Ошибки: ErrNotFound, *StatusError, *FetchError
	Fetch(ctx context.Context, id string) (*Asset, error)
}

// ErrNotFound - origin сообщил, что такого эмодзи нет
var ErrNotFound = errors.New("emoji not found at origin")

// FetchError - сетевая ошибка, таймаут или ошибка чтения тела
type FetchError struct {
	ID  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed: %v", e.ID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StatusError - origin доступен, но ответил неуспешным статусом (кроме 404)
type StatusError struct {
	ID         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d for %s", e.StatusCode, e.ID)
}

// resultLabel классифицирует ошибку для метрик
func resultLabel(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &statusErr):
		return "upstream_error"
	default:
		return "fetch_error"
	}
}
