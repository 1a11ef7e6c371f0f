package fetch

import (
	"emojiresizer/sniff"
	"emojiresizer/transform"
)

// Cache - интерфейс для взаимодействия с кэшем результатов
type Cache interface {
	// Get ищет итоговые байты по идентификатору
	Get(id string) (asset []byte, found bool)

	// Put сохраняет итоговые байты, заменяя предыдущую запись
	Put(id string, asset []byte)
}

// Transformer - интерфейс движка преобразования
type Transformer interface {
	// Transform возвращает байты для отдачи клиенту
	Transform(data []byte, class sniff.Classification) ([]byte, *transform.Result, error)
}

const (
	// ContentType - все ответы сервиса - WebP (статичный или анимированный)
	ContentType = "image/webp"

	// CacheControl - сутки публичной свежести плюс окно stale-while-revalidate
	CacheControl = "public, max-age=86400, stale-while-revalidate=600"

	// SourceURLHeader - диагностический заголовок с адресом исходника
	SourceURLHeader = "X-Source-Url"

	// noSourceURL - значение SourceURLHeader, когда исходник не указывается
	noSourceURL = "-"
)
