// Точка входа media-module — сервис медиа и статистики наблюдений.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт выпуск SAS и сервис статистики, запускает topologymetrics
// и HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/yuk-jeongmin/wantedcat/internal/api/handlers"
	"github.com/yuk-jeongmin/wantedcat/internal/api/middleware"
	"github.com/yuk-jeongmin/wantedcat/internal/api/openapi"
	"github.com/yuk-jeongmin/wantedcat/internal/clock"
	"github.com/yuk-jeongmin/wantedcat/internal/config"
	"github.com/yuk-jeongmin/wantedcat/internal/database"
	"github.com/yuk-jeongmin/wantedcat/internal/domain/stats"
	"github.com/yuk-jeongmin/wantedcat/internal/repository"
	"github.com/yuk-jeongmin/wantedcat/internal/sas"
	"github.com/yuk-jeongmin/wantedcat/internal/server"
	"github.com/yuk-jeongmin/wantedcat/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("media-module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("timezone", cfg.Timezone.String()),
	)

	// 3. Применение миграций БД
	if cfg.DBMigrate {
		logger.Info("Применение миграций БД...")
		if err := database.Migrate(cfg, logger); err != nil {
			logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Выпуск SAS
	issuer := sas.NewIssuer(sas.IssuerConfig{
		Key: sas.SharedKey{
			AccountName: cfg.StorageAccountName,
			AccountKey:  cfg.StorageAccountKey,
		},
		Endpoint:    cfg.StorageBlobEndpoint,
		ClockSkew:   cfg.SASClockSkew,
		MaxValidity: cfg.SASMaxTTL,
		Profiles: map[string]sas.Profile{
			sas.ProfileUpload: {
				Permissions: sas.PermReadWriteCreate,
				Validity:    cfg.SASUploadTTL,
				Protocol:    sas.ProtocolHTTPSOnly,
			},
			sas.ProfilePlayback: {
				Permissions: sas.PermRead,
				Validity:    cfg.SASPlaybackTTL,
				Protocol:    sas.ProtocolAny,
			},
		},
	}, sas.NewSharedKeySigner(), clock.System{}, logger)
	sasSvc := service.NewSasURLService(issuer, cfg.StorageContainer, logger)
	logger.Info("Выпуск SAS инициализирован",
		slog.String("account", cfg.StorageAccountName),
		slog.String("container", cfg.StorageContainer),
		slog.String("upload_ttl", cfg.SASUploadTTL.String()),
		slog.String("playback_ttl", cfg.SASPlaybackTTL.String()),
	)

	// 6. Статистика
	eventRepo := repository.NewEventRepository(pool)
	var statsCache *service.StatsCache
	if cfg.StatsCacheSize > 0 {
		statsCache = service.NewStatsCache(cfg.StatsCacheSize, cfg.StatsCacheTTL)
	}
	statsSvc := service.NewStatsService(eventRepo, stats.NewWindowResolver(cfg.Timezone), statsCache, logger)

	// 7. topologymetrics — мониторинг зависимостей (PostgreSQL + blob storage)
	dephealthSvc, dephealthErr := service.NewDephealthService(service.DephealthConfig{
		ServiceID:      "media-module",
		Group:          cfg.DephealthGroup,
		PgConnURL:      cfg.DatabaseURL(),
		BlobEndpoint:   cfg.StorageBlobEndpoint,
		BlobHealthPath: cfg.StorageHealthPath,
		CheckInterval:  cfg.DephealthCheckInterval,
		IsEntry:        cfg.DephealthIsEntry,
	}, pgDB, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
		dephealthSvc = nil
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics",
			slog.String("error", startErr.Error()),
		)
		dephealthSvc = nil
	} else {
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 8. Handlers; blob storage в readiness только при работающем topologymetrics
	var blobChecker handlers.ReadinessChecker
	if dephealthSvc != nil {
		blobChecker = handlers.ReadinessFunc(dephealthSvc.CheckBlobStorage)
	}
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool), blobChecker)
	apiHandler := handlers.NewAPIHandler(healthHandler, statsSvc, sasSvc, cfg.Timezone, logger)

	// 9. Middleware группы /api: JWT (если задан JWKS), затем валидация OpenAPI
	var apiMiddlewares []func(http.Handler) http.Handler
	if cfg.JWTEnabled() {
		jwtAuth, err := middleware.NewJWTAuth(
			cfg.JWTJWKSURL,
			cfg.JWTIssuer,
			cfg.JWKSClientTimeout,
			cfg.JWKSRefreshInterval,
			cfg.JWTLeeway,
			logger,
		)
		if err != nil {
			logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
			os.Exit(1)
		}
		apiMiddlewares = append(apiMiddlewares, jwtAuth.Middleware())
		logger.Info("JWT middleware инициализирован",
			slog.String("jwks_url", cfg.JWTJWKSURL),
			slog.String("issuer", cfg.JWTIssuer),
		)
	} else {
		logger.Warn("MM_JWT_JWKS_URL не задан, API доступен без аутентификации")
	}

	validator, err := openapi.NewValidator(ctx, logger)
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI контракта", slog.String("error", err.Error()))
		os.Exit(1)
	}
	apiMiddlewares = append(apiMiddlewares, validator.Middleware())

	// 10. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, apiMiddlewares...)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 11. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("media-module остановлен")
}
