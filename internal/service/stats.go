// stats.go — события пользователя и дневная статистика по животным.
// Координирует TimeWindowResolver, repository, агрегатор, кэш и метрики.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yuk-jeongmin/wantedcat/internal/domain/model"
	"github.com/yuk-jeongmin/wantedcat/internal/domain/stats"
	"github.com/yuk-jeongmin/wantedcat/internal/repository"
)

// Prometheus-метрики статистики.
var (
	statsRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mm_stats_requests_total",
		Help: "Общее количество запросов дневной статистики.",
	})
	statsDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mm_stats_duration_seconds",
		Help:    "Длительность построения дневной статистики.",
		Buckets: prometheus.DefBuckets,
	})
	statsDroppedEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_stats_dropped_events_total",
		Help: "События, не попавшие в сводку или посчитанные как 0 (по причине).",
	}, []string{"reason"})
)

// StatsService — выборка событий за календарные сутки и построение сводок.
type StatsService struct {
	eventRepo repository.EventRepository
	resolver  *stats.WindowResolver
	cache     *StatsCache
	logger    *slog.Logger
}

// NewStatsService создаёт сервис статистики.
// cache может быть nil — тогда каждая сводка строится заново.
func NewStatsService(
	eventRepo repository.EventRepository,
	resolver *stats.WindowResolver,
	cache *StatsCache,
	logger *slog.Logger,
) *StatsService {
	return &StatsService{
		eventRepo: eventRepo,
		resolver:  resolver,
		cache:     cache,
		logger:    logger.With(slog.String("component", "stats_service")),
	}
}

// DailyEvents возвращает события пользователя за календарные сутки,
// по возрастанию времени.
func (s *StatsService) DailyEvents(ctx context.Context, userID string, date stats.Date) ([]*model.Event, error) {
	start, end, err := s.resolver.Resolve(date)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.FindByUserInRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("события за %s: %w", date, err)
	}
	return events, nil
}

// History возвращает все события пользователя, новые первыми.
func (s *StatsService) History(ctx context.Context, userID string) ([]*model.Event, error) {
	events, err := s.eventRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("история событий: %w", err)
	}
	return events, nil
}

// DailyStats возвращает сводки по животным за календарные сутки.
// Ошибка возможна только при неверной дате или сбое хранилища:
// сама агрегация не отказывает.
func (s *StatsService) DailyStats(ctx context.Context, userID string, date stats.Date) ([]model.DailyCatStats, error) {
	startedAt := time.Now()
	statsRequestsTotal.Inc()
	defer func() {
		statsDuration.Observe(time.Since(startedAt).Seconds())
	}()

	if s.cache != nil {
		if cached, ok := s.cache.Get(userID, date); ok {
			return cached, nil
		}
	}

	events, err := s.DailyEvents(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	summaries, report := stats.AggregateWithReport(events)
	if report.NoLabel > 0 {
		statsDroppedEventsTotal.WithLabelValues("no_label").Add(float64(report.NoLabel))
	}
	if report.Degraded > 0 {
		statsDroppedEventsTotal.WithLabelValues("malformed_weight").Add(float64(report.Degraded))
	}
	if report.NoLabel > 0 || report.Degraded > 0 {
		s.logger.Debug("Часть событий не учтена в сводке",
			slog.String("user_id", userID),
			slog.String("date", date.String()),
			slog.Int("no_label", report.NoLabel),
			slog.Int("malformed_weight", report.Degraded),
		)
	}

	if s.cache != nil {
		s.cache.Set(userID, date, summaries)
	}

	return summaries, nil
}
