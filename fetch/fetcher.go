// Package fetch реализует конвейер обработки одного эмодзи:
// кэш -> origin -> классификация -> преобразование -> кэш -> ответ.
package fetch

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"emojiresizer/apigw"
	"emojiresizer/etag"
	"emojiresizer/logger"
	"emojiresizer/origin"
	"emojiresizer/sniff"
	"emojiresizer/transform"
)

// Fetcher реализует интерфейс apigw.RequestHandler.
// Общего изменяемого состояния, кроме кэша, нет: параллельные промахи
// по одному идентификатору независимо загружают и преобразуют исходник.
type Fetcher struct {
	origin  origin.Origin
	cache   Cache
	engine  Transformer
	metrics *Metrics
}

// NewFetcher создает новый экземпляр Fetcher.
// Если reg == nil, метрики регистрируются в default registry.
func NewFetcher(o origin.Origin, cache Cache, engine Transformer, reg prometheus.Registerer) *Fetcher {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Fetcher{
		origin:  o,
		cache:   cache,
		engine:  engine,
		metrics: NewMetrics(reg),
	}
}

// Handle обрабатывает запрос /e/{name}
func (f *Fetcher) Handle(req *apigw.EmojiRequest) *apigw.EmojiResponse {
	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}
	id := req.ID

	// 1. Проверка кэша
	if asset, found := f.cache.Get(id); found {
		logger.Debug("Cache hit for emoji: %s", id)
		return f.record("cache", f.respond(req, asset, f.origin.SourceURL(id)))
	}

	logger.Debug("Cache miss - fetching emoji: %s", id)

	// 2. Загрузка исходника
	src, err := f.origin.Fetch(ctx, id)
	if err != nil {
		return f.record("origin", f.fetchErrorResponse(req, err))
	}

	// Клиент ушел, пока шла загрузка: преобразование и кэш пропускаем
	if err := ctx.Err(); err != nil {
		logger.Debug("Request for emoji %s abandoned after fetch: %v", id, err)
		f.metrics.ErrorsTotal.WithLabelValues("abandoned").Inc()
		return f.record("origin", errorResponse(http.StatusBadGateway, "upstream fetch failed"))
	}

	// 3. Классификация и преобразование
	class := sniff.Classify(src.Data)
	f.metrics.ClassificationsTotal.WithLabelValues(class.String()).Inc()

	start := time.Now()
	out, res, err := f.engine.Transform(src.Data, class)
	f.metrics.TransformLatency.WithLabelValues(class.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		return f.record("origin", f.transformErrorResponse(req, err))
	}

	if res != nil && class == sniff.Static {
		logger.Info("Static emoji processed - emoji: %s, %s %dx%d -> %dx%d, size: %d bytes",
			id, res.Format, res.SourceWidth, res.SourceHeight, res.Width, res.Height, len(out))
	} else {
		logger.Info("Animated emoji passed through - emoji: %s, size: %d bytes", id, len(out))
	}

	// 4. Сохраняем только полностью готовый результат
	f.cache.Put(id, out)

	return f.record("origin", f.respond(req, out, src.SourceURL))
}

// respond формирует 200 или 304. ETag вычисляется одинаково на обоих путях.
func (f *Fetcher) respond(req *apigw.EmojiRequest, body []byte, sourceURL string) *apigw.EmojiResponse {
	tag := etag.Derive(body)

	if etag.Matches(req.IfNoneMatch, tag) {
		logger.Debug("Validator matched for emoji %s: %s", req.ID, tag)
		return &apigw.EmojiResponse{
			StatusCode: http.StatusNotModified,
			Headers:    commonHeaders(tag, noSourceURL),
		}
	}

	return &apigw.EmojiResponse{
		StatusCode: http.StatusOK,
		Headers:    commonHeaders(tag, sourceURL),
		Body:       body,
	}
}

// commonHeaders - заголовки для 200 и 304
func commonHeaders(tag, sourceURL string) http.Header {
	if sourceURL == "" {
		sourceURL = noSourceURL
	}
	h := make(http.Header)
	h.Set("Content-Type", ContentType)
	h.Set("Cache-Control", CacheControl)
	h.Set("ETag", tag)
	h.Set(SourceURLHeader, sourceURL)
	return h
}

// fetchErrorResponse сопоставляет ошибки origin с кодами ответа
func (f *Fetcher) fetchErrorResponse(req *apigw.EmojiRequest, err error) *apigw.EmojiResponse {
	id, rid := req.ID, req.RequestID
	var statusErr *origin.StatusError

	switch {
	case errors.Is(err, origin.ErrNotFound):
		logger.Warn("Emoji not found: %s [%s]", id, rid)
		f.metrics.ErrorsTotal.WithLabelValues("not_found").Inc()
		return errorResponse(http.StatusNotFound, "emoji not found")
	case errors.As(err, &statusErr):
		logger.Error("Upstream error for emoji %s [%s]: status %d", id, rid, statusErr.StatusCode)
		f.metrics.ErrorsTotal.WithLabelValues("upstream").Inc()
		return errorResponse(http.StatusBadGateway, "upstream error")
	default:
		logger.Error("Fetch error for emoji %s [%s]: %v", id, rid, err)
		f.metrics.ErrorsTotal.WithLabelValues("fetch").Inc()
		return errorResponse(http.StatusBadGateway, "upstream fetch failed")
	}
}

// transformErrorResponse сопоставляет ошибки движка с кодами ответа
func (f *Fetcher) transformErrorResponse(req *apigw.EmojiRequest, err error) *apigw.EmojiResponse {
	id, rid := req.ID, req.RequestID
	var decodeErr *transform.DecodeError

	if errors.As(err, &decodeErr) {
		logger.Error("Decode error for emoji %s [%s]: %v", id, rid, err)
		f.metrics.ErrorsTotal.WithLabelValues("decode").Inc()
		return errorResponse(http.StatusUnsupportedMediaType, "decode failed")
	}

	logger.Error("Encode error for emoji %s [%s]: %v", id, rid, err)
	f.metrics.ErrorsTotal.WithLabelValues("encode").Inc()
	return errorResponse(http.StatusInternalServerError, "encode failed")
}

func errorResponse(status int, msg string) *apigw.EmojiResponse {
	return &apigw.EmojiResponse{
		StatusCode: status,
		Error:      errors.New(msg),
	}
}

func (f *Fetcher) record(path string, resp *apigw.EmojiResponse) *apigw.EmojiResponse {
	f.metrics.ResponsesTotal.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()
	return resp
}
