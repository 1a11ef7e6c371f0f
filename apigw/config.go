package apigw

import "time"

// Config содержит конфигурацию для API Gateway
type Config struct {
	// ListenAddress - адрес и порт для прослушивания (например, "0.0.0.0:53292")
	ListenAddress string

	// TLSCertFile - путь к файлу SSL-сертификата (опционально, для включения HTTPS)
	TLSCertFile string

	// TLSKeyFile - путь к файлу приватного ключа SSL (опционально)
	TLSKeyFile string

	// ReadTimeout - таймаут на чтение всего запроса
	ReadTimeout time.Duration

	// WriteTimeout - таймаут на запись всего ответа, включает загрузку с origin и перекодирование
	WriteTimeout time.Duration

	// IdleTimeout - время жизни keep-alive соединения без запросов
	IdleTimeout time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		ListenAddress: "0.0.0.0:53292",
		ReadTimeout:   10 * time.Second,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   90 * time.Second,
	}
}
