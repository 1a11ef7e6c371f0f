package origin

import (
	"context"
	"sync"
)

// MockOrigin - источник в памяти для тестов и режима --mock
type MockOrigin struct {
	mu       sync.RWMutex
	assets   map[string][]byte
	statuses map[string]int
	errs     map[string]error
	calls    map[string]int
}

// NewMockOrigin создает пустой источник в памяти
func NewMockOrigin() *MockOrigin {
	return &MockOrigin{
		assets:   make(map[string][]byte),
		statuses: make(map[string]int),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

// Set задает байты для идентификатора
func (o *MockOrigin) Set(id string, data []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.assets[id] = data
}

// SetStatus заставляет источник отвечать неуспешным статусом
func (o *MockOrigin) SetStatus(id string, code int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses[id] = code
}

// SetError заставляет источник возвращать ошибку загрузки
func (o *MockOrigin) SetError(id string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs[id] = err
}

// Calls возвращает количество обращений к идентификатору
func (o *MockOrigin) Calls(id string) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.calls[id]
}

// Name возвращает имя источника
func (o *MockOrigin) Name() string {
	return TypeMock
}

// SourceURL возвращает mock:// адрес
func (o *MockOrigin) SourceURL(id string) string {
	return "mock://emojis/" + id
}

// Fetch возвращает сохраненные байты
func (o *MockOrigin) Fetch(ctx context.Context, id string) (*Asset, error) {
	o.mu.Lock()
	o.calls[id]++
	data, ok := o.assets[id]
	code, hasStatus := o.statuses[id]
	fetchErr := o.errs[id]
	o.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &FetchError{ID: id, Err: err}
	}
	if fetchErr != nil {
		return nil, &FetchError{ID: id, Err: fetchErr}
	}
	if hasStatus {
		if code == 404 {
			return nil, ErrNotFound
		}
		return nil, &StatusError{ID: id, StatusCode: code}
	}
	if !ok {
		return nil, ErrNotFound
	}

	return &Asset{
		ID:        id,
		SourceURL: o.SourceURL(id),
		Data:      data,
	}, nil
}
