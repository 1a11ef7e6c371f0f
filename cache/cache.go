// Package cache хранит итоговые байты эмодзи в памяти процесса.
package cache

import (
	"fmt"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"

	"emojiresizer/logger"
)

// Cache - ограниченный по количеству записей кэш с TTL.
// Безопасен для конкурентного использования; два одновременных Put
// для одного идентификатора не упорядочиваются, выигрывает последний.
type Cache struct {
	lru     *expirable.LRU[string, []byte]
	metrics *Metrics
}

// New создает кэш. Если reg == nil, метрики регистрируются в default registry.
// expirable.LRU запускает фоновую горутину очистки, которая живет до конца
// процесса: кэш рассчитан на один экземпляр на процесс.
func New(config *Config, reg prometheus.Registerer) (*Cache, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache config: %w", err)
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Cache{}
	c.metrics = NewMetrics(reg, func() float64 { return float64(c.Len()) })

	// Колбэк вызывается под внутренней блокировкой LRU - только метрики
	c.lru = expirable.NewLRU[string, []byte](config.MaxEntries, func(key string, _ []byte) {
		c.metrics.EvictionsTotal.Inc()
		logger.Debug("Cache entry evicted: %s", key)
	}, config.TTL)

	logger.Info("Result cache initialized: max_entries=%d, ttl=%v", config.MaxEntries, config.TTL)
	return c, nil
}

// Get возвращает закэшированный результат для идентификатора
func (c *Cache) Get(id string) ([]byte, bool) {
	asset, ok := c.lru.Get(id)
	if ok {
		c.metrics.HitsTotal.Inc()
	} else {
		c.metrics.MissesTotal.Inc()
	}
	return asset, ok
}

// Put сохраняет результат, заменяя предыдущую запись и перезапуская ее TTL.
// Сохраненный срез не должен изменяться вызывающей стороной.
func (c *Cache) Put(id string, asset []byte) {
	c.lru.Add(id, asset)
	c.metrics.StoredBytes.Add(float64(len(asset)))
}

// Len возвращает количество записей, включая еще не вычищенные просроченные
func (c *Cache) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge удаляет все записи
func (c *Cache) Purge() {
	c.lru.Purge()
}
