// events.go — обработчики GET /api/events, /api/events/history и /api/events/stats.
// Параметры userId и date связываются через oapi-codegen runtime.
package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"

	apierrors "github.com/yuk-jeongmin/wantedcat/internal/api/errors"
	"github.com/yuk-jeongmin/wantedcat/internal/api/middleware"
	"github.com/yuk-jeongmin/wantedcat/internal/domain/model"
	"github.com/yuk-jeongmin/wantedcat/internal/domain/stats"
)

// dailyParams — параметры запросов за календарные сутки.
type dailyParams struct {
	UserID string
	Date   stats.Date
}

// eventResponse — JSON-представление события.
type eventResponse struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"userId"`
	EventTime       time.Time `json:"eventTime"`
	DurationSeconds *float32  `json:"durationSeconds"`
	WeightInfo      *string   `json:"weightInfo"`
	OriginVideoURL  *string   `json:"originVideoUrl"`
	BBoxVideoURL    *string   `json:"bboxVideoUrl"`
	EventType       string    `json:"eventType"`
	CatName         *string   `json:"catName"`
}

// bindUserID связывает обязательный query-параметр userId.
func bindUserID(query url.Values) (string, string) {
	var userID string
	if err := runtime.BindQueryParameter("form", true, true, "userId", query, &userID); err != nil {
		return "", "Некорректный параметр userId: " + err.Error()
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", "Параметр userId не должен быть пустым"
	}
	return userID, ""
}

// bindDailyParams связывает обязательные query-параметры userId и date.
// date связывается строкой: отсутствие параметра не должно превращаться
// в нулевую дату.
func bindDailyParams(r *http.Request) (*dailyParams, string) {
	query := r.URL.Query()

	userID, msg := bindUserID(query)
	if msg != "" {
		return nil, msg
	}

	if !query.Has("date") {
		return nil, "Параметр date обязателен (YYYY-MM-DD)"
	}
	var rawDate string
	if err := runtime.BindQueryParameter("form", true, true, "date", query, &rawDate); err != nil {
		return nil, "Некорректный параметр date: " + err.Error()
	}
	date, err := stats.ParseDate(strings.TrimSpace(rawDate))
	if err != nil {
		return nil, "Некорректный параметр date (ожидается YYYY-MM-DD): " + err.Error()
	}

	return &dailyParams{UserID: userID, Date: date}, ""
}

// ListDailyEvents — GET /api/events?userId&date.
// События пользователя за календарные сутки по возрастанию времени.
func (h *APIHandler) ListDailyEvents(w http.ResponseWriter, r *http.Request) {
	params, msg := bindDailyParams(r)
	if params == nil {
		apierrors.ValidationError(w, msg)
		return
	}

	events, err := h.stats.DailyEvents(r.Context(), params.UserID, params.Date)
	if err != nil {
		h.logError(r, "Ошибка выборки событий", err, params)
		apierrors.FromDomain(w, err)
		return
	}

	h.writeEvents(w, events)
}

// ListEventHistory — GET /api/events/history?userId.
// Все события пользователя, новые первыми.
func (h *APIHandler) ListEventHistory(w http.ResponseWriter, r *http.Request) {
	userID, msg := bindUserID(r.URL.Query())
	if msg != "" {
		apierrors.ValidationError(w, msg)
		return
	}

	events, err := h.stats.History(r.Context(), userID)
	if err != nil {
		h.logger.Error("Ошибка выборки истории событий",
			slog.String("user_id", userID),
			slog.String("subject", middleware.SubjectFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		apierrors.FromDomain(w, err)
		return
	}

	h.writeEvents(w, events)
}

// GetDailyStats — GET /api/events/stats?userId&date.
// Сводка воды и корма по животным за календарные сутки.
func (h *APIHandler) GetDailyStats(w http.ResponseWriter, r *http.Request) {
	params, msg := bindDailyParams(r)
	if params == nil {
		apierrors.ValidationError(w, msg)
		return
	}

	summaries, err := h.stats.DailyStats(r.Context(), params.UserID, params.Date)
	if err != nil {
		h.logError(r, "Ошибка построения дневной статистики", err, params)
		apierrors.FromDomain(w, err)
		return
	}

	if summaries == nil {
		summaries = []model.DailyCatStats{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// writeEvents отдаёт список событий; пустой список сериализуется как [].
func (h *APIHandler) writeEvents(w http.ResponseWriter, events []*model.Event) {
	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, h.toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// toEventResponse конвертирует доменную модель в JSON-ответ.
// Время события отдаётся в часовом поясе сервиса.
func (h *APIHandler) toEventResponse(e *model.Event) eventResponse {
	return eventResponse{
		ID:              e.ID,
		UserID:          e.UserID,
		EventTime:       e.EventTime.In(h.loc),
		DurationSeconds: e.DurationSeconds,
		WeightInfo:      e.WeightInfo,
		OriginVideoURL:  e.OriginVideoURL,
		BBoxVideoURL:    e.BBoxVideoURL,
		EventType:       e.EventType,
		CatName:         e.CatName,
	}
}

// logError логирует ошибку сервисного слоя с контекстом запроса.
func (h *APIHandler) logError(r *http.Request, msg string, err error, params *dailyParams) {
	h.logger.Error(msg,
		slog.String("user_id", params.UserID),
		slog.String("date", params.Date.String()),
		slog.String("subject", middleware.SubjectFromContext(r.Context())),
		slog.String("error", err.Error()),
	)
}
