package apigw

import (
	"fmt"
	"net/http"
	"strings"

	"emojiresizer/logger"
)

const emojiPrefix = "/e/"

// RequestParser отвечает за разбор HTTP запросов в EmojiRequest
type RequestParser struct{}

// NewRequestParser создает новый экземпляр парсера
func NewRequestParser() *RequestParser {
	return &RequestParser{}
}

// Parse анализирует HTTP запрос и создает EmojiRequest
func (p *RequestParser) Parse(r *http.Request) (*EmojiRequest, error) {
	logger.Debug("Parsing HTTP request: %s %s", r.Method, r.URL.Path)

	req := &EmojiRequest{
		Method:      r.Method,
		IfNoneMatch: r.Header.Get("If-None-Match"),
		Headers:     r.Header.Clone(),
		Context:     r.Context(),
	}

	path := r.URL.Path
	switch {
	case path == "/healthz":
		req.Route = HealthRoute
	case strings.HasPrefix(path, emojiPrefix):
		req.Route = EmojiRoute
	default:
		return req, fmt.Errorf("%w: %s", ErrRouteNotFound, path)
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return req, fmt.Errorf("%w: %s %s", ErrMethodNotAllowed, r.Method, path)
	}

	if req.Route == HealthRoute {
		return req, nil
	}

	// Один сегмент после /e/, вложенные пути не поддерживаются
	name := strings.TrimPrefix(path, emojiPrefix)
	if name == "" || strings.Contains(name, "/") {
		return req, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	req.Name = name
	req.ID = ExtractID(name)
	if req.ID == "" {
		return req, fmt.Errorf("%w: empty identifier in %q", ErrInvalidPath, name)
	}

	logger.Debug("Parsed emoji request: name=%s, id=%s", req.Name, req.ID)
	return req, nil
}

// ExtractID отрезает расширение после последней точки: "123.webp" -> "123".
// Без точки возвращается весь сегмент.
func ExtractID(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}
