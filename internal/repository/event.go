package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yuk-jeongmin/wantedcat/internal/domain/model"
)

// eventColumns — список столбцов таблицы events для SELECT-запросов.
const eventColumns = `id, user_id, event_time, duration_seconds, weight_info,
	origin_video_url, bbox_video_url, COALESCE(event_type, ''), cat_name`

// EventRepository — доступ к событиям устройств.
type EventRepository interface {
	// FindByUserInRange возвращает события пользователя с event_time в [start, end]
	// (обе границы включительно), по возрастанию времени.
	FindByUserInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Event, error)
	// FindByUser возвращает все события пользователя, новые первыми.
	FindByUser(ctx context.Context, userID string) ([]*model.Event, error)
}

// eventRepo — реализация EventRepository через pgx.
type eventRepo struct {
	db DBTX
}

// NewEventRepository создаёт репозиторий событий.
func NewEventRepository(db DBTX) EventRepository {
	return &eventRepo{db: db}
}

// FindByUserInRange — SELECT ... WHERE user_id = $1 AND event_time BETWEEN $2 AND $3.
func (r *eventRepo) FindByUserInRange(ctx context.Context, userID string, start, end time.Time) ([]*model.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events
		WHERE user_id = $1 AND event_time BETWEEN $2 AND $3
		ORDER BY event_time ASC, id ASC`, eventColumns)

	rows, err := r.db.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки событий за период: %w", err)
	}
	return collectEvents(rows)
}

// FindByUser возвращает историю событий пользователя.
func (r *eventRepo) FindByUser(ctx context.Context, userID string) ([]*model.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events
		WHERE user_id = $1
		ORDER BY event_time DESC, id DESC`, eventColumns)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки событий пользователя: %w", err)
	}
	return collectEvents(rows)
}

// collectEvents сканирует все строки результата и закрывает rows.
func collectEvents(rows pgx.Rows) ([]*model.Event, error) {
	defer rows.Close()

	result := make([]*model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования события: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// scanEvent сканирует одну строку в порядке eventColumns.
func scanEvent(row pgx.Row) (*model.Event, error) {
	e := &model.Event{}
	err := row.Scan(
		&e.ID, &e.UserID, &e.EventTime, &e.DurationSeconds, &e.WeightInfo,
		&e.OriginVideoURL, &e.BBoxVideoURL, &e.EventType, &e.CatName,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}
