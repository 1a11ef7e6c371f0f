package apigw

import (
	"net/http"
	"strconv"

	"emojiresizer/logger"
)

// ResponseWriter отвечает за формирование HTTP ответов из EmojiResponse
type ResponseWriter struct{}

// NewResponseWriter создает новый экземпляр writer'а ответов
func NewResponseWriter() *ResponseWriter {
	return &ResponseWriter{}
}

// WriteResponse записывает EmojiResponse в http.ResponseWriter.
// withBody = false для HEAD: заголовки и Content-Length те же, тела нет.
func (rw *ResponseWriter) WriteResponse(w http.ResponseWriter, resp *EmojiResponse, withBody bool) error {
	logger.Debug("Writing response: status=%d, bodyLen=%d, hasError=%t",
		resp.StatusCode, len(resp.Body), resp.Error != nil)

	// Если есть ошибка, отправляем текстовый ответ
	if resp.Error != nil {
		return rw.writeErrorResponse(w, resp, withBody)
	}

	// Копируем заголовки
	for key, values := range resp.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	// 304 не содержит тела по определению
	if status == http.StatusNotModified {
		w.WriteHeader(status)
		return nil
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(status)

	if !withBody || len(resp.Body) == 0 {
		return nil
	}

	_, err := w.Write(resp.Body)
	if err != nil {
		logger.Debug("Error writing response body: %v", err)
	}
	return err
}

// writeErrorResponse записывает короткое текстовое сообщение об ошибке
func (rw *ResponseWriter) writeErrorResponse(w http.ResponseWriter, resp *EmojiResponse, withBody bool) error {
	status := resp.StatusCode
	if status < 400 {
		status = http.StatusInternalServerError
	}

	for key, values := range resp.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	msg := resp.Error.Error()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(msg)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if !withBody {
		return nil
	}
	_, err := w.Write([]byte(msg))
	return err
}
