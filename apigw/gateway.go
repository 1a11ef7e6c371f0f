package apigw

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"emojiresizer/logger"
)

// RequestIDHeader - заголовок для корреляции запроса в логах
const RequestIDHeader = "X-Request-Id"

// Gateway представляет модуль API Gateway
type Gateway struct {
	config         Config
	handler        RequestHandler
	parser         *RequestParser
	responseWriter *ResponseWriter
	server         *http.Server
	metrics        *Metrics
}

// New создает новый экземпляр API Gateway.
// Если reg == nil, метрики регистрируются в default registry.
func New(config Config, handler RequestHandler, reg prometheus.Registerer) *Gateway {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gw := &Gateway{
		config:         config,
		handler:        handler,
		parser:         NewRequestParser(),
		responseWriter: NewResponseWriter(),
		metrics:        NewMetrics(reg),
	}
	gw.server = &http.Server{
		Handler:      gw,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return gw
}

// ServeHTTP реализует интерфейс http.Handler
func (gw *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	gw.metrics.RequestsInFlight.Inc()
	defer gw.metrics.RequestsInFlight.Dec()

	// Клиентский идентификатор переиспользуется для сквозной корреляции
	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	w.Header().Set(RequestIDHeader, requestID)

	logger.Debug("Incoming request %s: %s %s", requestID, r.Method, r.URL.Path)

	req, err := gw.parser.Parse(r)
	req.RequestID = requestID
	var resp *EmojiResponse
	switch {
	case err != nil:
		logger.Debug("Failed to parse request: %v", err)
		resp = gw.parseErrorResponse(err)
	case req.Route == HealthRoute:
		resp = &EmojiResponse{
			StatusCode: http.StatusOK,
			Headers:    http.Header{"Content-Type": []string{"text/plain; charset=utf-8"}},
			Body:       []byte("ok"),
		}
	default:
		resp = gw.handler.Handle(req)
	}

	withBody := r.Method != http.MethodHead
	if err := gw.responseWriter.WriteResponse(w, resp, withBody); err != nil {
		logger.Error("Failed to write response: %v", err)
	}

	latency := time.Since(start)
	route := req.Route.String()
	if req.Route == EmojiRoute {
		logger.Info("%s %s -> %d (%.3f ms) [%s]", r.Method, r.URL.Path, resp.StatusCode, float64(latency.Microseconds())/1000.0, requestID)
	}

	gw.metrics.RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(resp.StatusCode)).Inc()
	gw.metrics.RequestLatency.WithLabelValues(route).Observe(latency.Seconds())
}

// parseErrorResponse сопоставляет ошибки парсера с HTTP статусами
func (gw *Gateway) parseErrorResponse(err error) *EmojiResponse {
	switch {
	case errors.Is(err, ErrMethodNotAllowed):
		return &EmojiResponse{
			StatusCode: http.StatusMethodNotAllowed,
			Headers:    http.Header{"Allow": []string{"GET, HEAD"}},
			Error:      errors.New("method not allowed"),
		}
	case errors.Is(err, ErrInvalidPath):
		return &EmojiResponse{
			StatusCode: http.StatusBadRequest,
			Error:      errors.New("invalid emoji name"),
		}
	default:
		return &EmojiResponse{
			StatusCode: http.StatusNotFound,
			Error:      errors.New("not found"),
		}
	}
}

// Start запускает сервер на заданном адресе и блокируется до остановки
func (gw *Gateway) Start() error {
	listener, err := net.Listen("tcp", gw.config.ListenAddress)
	if err != nil {
		return err
	}
	return gw.Serve(listener)
}

// Serve обслуживает соединения на готовом listener
func (gw *Gateway) Serve(listener net.Listener) error {
	logger.Info("Listening on %s", listener.Addr())

	var err error
	if gw.config.TLSCertFile != "" && gw.config.TLSKeyFile != "" {
		logger.Info("Starting HTTPS server with TLS")
		err = gw.server.ServeTLS(listener, gw.config.TLSCertFile, gw.config.TLSKeyFile)
	} else {
		err = gw.server.Serve(listener)
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop останавливает сервер, дожидаясь завершения запросов в обработке
func (gw *Gateway) Stop(ctx context.Context) error {
	logger.Info("Stopping API Gateway...")
	return gw.server.Shutdown(ctx)
}
