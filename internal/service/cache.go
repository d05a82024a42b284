// StatsCache — LRU-кэш дневной статистики с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yuk-jeongmin/wantedcat/internal/domain/model"
	"github.com/yuk-jeongmin/wantedcat/internal/domain/stats"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mm_stats_cache_hits_total",
		Help: "Общее количество попаданий в кэш дневной статистики.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mm_stats_cache_misses_total",
		Help: "Общее количество промахов кэша дневной статистики.",
	})
)

// StatsCache — LRU-кэш сводок по ключу (userID, date).
// Каждый экземпляр имеет собственный in-memory кэш.
type StatsCache struct {
	cache *expirable.LRU[string, []model.DailyCatStats]
}

// NewStatsCache создаёт LRU-кэш с указанным максимальным размером и TTL.
func NewStatsCache(maxSize int, ttl time.Duration) *StatsCache {
	cache := expirable.NewLRU[string, []model.DailyCatStats](maxSize, nil, ttl)
	return &StatsCache{cache: cache}
}

// statsKey — ключ кэша. "|" не встречается в дате, поэтому ключи не пересекаются.
func statsKey(userID string, date stats.Date) string {
	return date.String() + "|" + userID
}

// Get возвращает сводки из кэша.
// Возвращает копию, чтобы вызывающий код не мог изменить закэшированное значение.
func (c *StatsCache) Get(userID string, date stats.Date) ([]model.DailyCatStats, bool) {
	val, ok := c.cache.Get(statsKey(userID, date))
	if !ok {
		cacheMissesTotal.Inc()
		return nil, false
	}
	cacheHitsTotal.Inc()
	out := make([]model.DailyCatStats, len(val))
	copy(out, val)
	return out, true
}

// Set добавляет или обновляет запись в кэше.
func (c *StatsCache) Set(userID string, date stats.Date, summaries []model.DailyCatStats) {
	stored := make([]model.DailyCatStats, len(summaries))
	copy(stored, summaries)
	c.cache.Add(statsKey(userID, date), stored)
}

// Len возвращает текущее число записей.
func (c *StatsCache) Len() int {
	return c.cache.Len()
}
