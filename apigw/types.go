package apigw

import (
	"context"
	"errors"
	"net/http"
)

// Route определяет, какой эндпоинт запрошен
type Route int

const (
	UnknownRoute Route = iota
	HealthRoute
	EmojiRoute
)

// String возвращает строковое представление маршрута
func (r Route) String() string {
	switch r {
	case HealthRoute:
		return "healthz"
	case EmojiRoute:
		return "emoji"
	default:
		return "unknown"
	}
}

// Ошибки разбора запроса
var (
	// ErrRouteNotFound - путь не соответствует ни одному эндпоинту
	ErrRouteNotFound = errors.New("route not found")
	// ErrMethodNotAllowed - эндпоинт поддерживает только GET и HEAD
	ErrMethodNotAllowed = errors.New("method not allowed")
	// ErrInvalidPath - из пути не удалось извлечь идентификатор
	ErrInvalidPath = errors.New("invalid emoji path")
)

// EmojiRequest - внутреннее представление запроса /e/{name}.
// Создается модулем API Gateway из http.Request.
type EmojiRequest struct {
	// Route - эндпоинт, определенный парсером
	Route Route

	// Method - GET или HEAD
	Method string

	// RequestID - X-Request-Id клиента или сгенерированный UUID
	RequestID string

	// Name - сегмент пути как есть, вместе с расширением
	Name string

	// ID - идентификатор эмодзи без расширения, ключ кэша и origin
	ID string

	// IfNoneMatch - значение заголовка If-None-Match (список валидаторов)
	IfNoneMatch string

	// Headers - оригинальные заголовки запроса
	Headers http.Header

	// Context - контекст входящего запроса, отменяется при обрыве соединения
	Context context.Context
}

// EmojiResponse - внутреннее представление ответа.
// Формируется оркестратором и используется API Gateway для отправки ответа.
type EmojiResponse struct {
	// StatusCode - HTTP код ответа (200, 304, 404, 415, 500, 502)
	StatusCode int

	// Headers - заголовки для отправки клиенту
	Headers http.Header

	// Body - тело ответа; для 304 всегда пусто
	Body []byte

	// Error - ошибка обработки. Если не nil, Body игнорируется,
	// а текст ошибки отправляется клиенту как text/plain
	Error error
}

// RequestHandler - интерфейс, который реализует оркестратор конвейера
type RequestHandler interface {
	// Handle выполняет всю бизнес-логику и возвращает готовый ответ
	Handle(req *EmojiRequest) *EmojiResponse
}

// HandlerFunc позволяет использовать функцию как RequestHandler
type HandlerFunc func(req *EmojiRequest) *EmojiResponse

// Handle вызывает f(req)
func (f HandlerFunc) Handle(req *EmojiRequest) *EmojiResponse {
	return f(req)
}
