// Пакет clock — источник текущего времени.
// Все компоненты, зависящие от времени (выпуск SAS, окна статистики),
// получают Clock явно, чтобы тесты могли подставить фиксированное время.
package clock

import (
	"sync"
	"time"
)

// Clock — источник текущего времени.
type Clock interface {
	Now() time.Time
}

// System — системные часы (time.Now).
type System struct{}

// Now возвращает текущее время.
func (System) Now() time.Time {
	return time.Now()
}

// Fixed — управляемые часы для тестов.
// Безопасны для конкурентного использования.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed создаёт часы, остановленные на момент t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

// Now возвращает установленное время.
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set переставляет часы на момент t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance сдвигает часы вперёд на d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
