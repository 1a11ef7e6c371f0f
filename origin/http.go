package origin

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"emojiresizer/logger"
)

// HTTPOrigin загружает эмодзи с CDN по шаблону адреса
type HTTPOrigin struct {
	config       HTTPConfig
	client       *http.Client
	maxBodyBytes int64
}

// NewHTTPOrigin создает источник с собственным пулом соединений
func NewHTTPOrigin(cfg HTTPConfig, maxBodyBytes int64) *HTTPOrigin {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          cfg.MaxIdleConnsPerHost * 4,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.RequestTimeout,
	}

	return &HTTPOrigin{
		config: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		maxBodyBytes: maxBodyBytes,
	}
}

// Name возвращает имя источника
func (o *HTTPOrigin) Name() string {
	return TypeHTTP
}

// SourceURL подставляет идентификатор в шаблон
func (o *HTTPOrigin) SourceURL(id string) string {
	return strings.ReplaceAll(o.config.URLTemplate, "{id}", url.PathEscape(id))
}

// Fetch выполняет GET к CDN
func (o *HTTPOrigin) Fetch(ctx context.Context, id string) (*Asset, error) {
	src := o.SourceURL(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, &FetchError{ID: id, Err: err}
	}
	req.Header.Set("Accept", o.config.Accept)
	if o.config.UserAgent != "" {
		req.Header.Set("User-Agent", o.config.UserAgent)
	}

	logger.Debug("Fetching %s", src)
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &FetchError{ID: id, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{ID: id, StatusCode: resp.StatusCode}
	}

	data, err := readLimited(resp.Body, o.maxBodyBytes)
	if err != nil {
		return nil, &FetchError{ID: id, Err: err}
	}

	return &Asset{
		ID:          id,
		SourceURL:   src,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// readLimited читает тело целиком, но не больше limit байт
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("body exceeds %d bytes", limit)
	}
	return data, nil
}
