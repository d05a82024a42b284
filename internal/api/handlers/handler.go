// handler.go — основной обработчик API media-module.
// Объединяет health и бизнес-обработчики, делегирует в сервисный слой.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yuk-jeongmin/wantedcat/internal/domain/model"
	"github.com/yuk-jeongmin/wantedcat/internal/domain/stats"
	"github.com/yuk-jeongmin/wantedcat/internal/service"
)

// EventStats — источник событий, истории и дневной статистики.
// Реализуется *service.StatsService.
type EventStats interface {
	DailyEvents(ctx context.Context, userID string, date stats.Date) ([]*model.Event, error)
	History(ctx context.Context, userID string) ([]*model.Event, error)
	DailyStats(ctx context.Context, userID string, date stats.Date) ([]model.DailyCatStats, error)
}

// MediaSigner — выпуск подписанных URL.
// Реализуется *service.SasURLService.
type MediaSigner interface {
	Reissue(originalURL string) (string, error)
	UploadURL(blobName string) (*service.UploadGrant, error)
}

// APIHandler — основной обработчик API media-module.
type APIHandler struct {
	health *HealthHandler
	stats  EventStats
	media  MediaSigner
	// loc — часовой пояс, в котором отдаётся время событий
	loc    *time.Location
	logger *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	stats EventStats,
	media MediaSigner,
	loc *time.Location,
	logger *slog.Logger,
) *APIHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &APIHandler{
		health: health,
		stats:  stats,
		media:  media,
		loc:    loc,
		logger: logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — проверка живости (liveness).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — проверка готовности (readiness).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
