// Пакет config — загрузка и валидация конфигурации media-module
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // встроенная база часовых поясов для образов без zoneinfo
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации media-module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (по умолчанию 8040)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	// Применять миграции при старте
	DBMigrate bool

	// --- Blob storage ---

	// Имя storage account
	StorageAccountName string
	// Общий ключ account (base64). Никогда не логируется.
	StorageAccountKey string
	// Контейнер, в который пишут устройства
	StorageContainer string
	// Базовый URL blob endpoint без завершающего "/"
	StorageBlobEndpoint string
	// Путь HTTP-проверки blob endpoint для dephealth
	StorageHealthPath string

	// --- SAS ---

	SASUploadTTL   time.Duration
	SASPlaybackTTL time.Duration
	SASClockSkew   time.Duration
	SASMaxTTL      time.Duration

	// --- Статистика ---

	// Часовой пояс, в котором считаются календарные сутки
	Timezone *time.Location
	// Размер LRU-кэша суточной статистики (0 — кэш выключен)
	StatsCacheSize int
	// TTL записей кэша статистики
	StatsCacheTTL time.Duration

	// --- JWT ---

	// URL JWKS endpoint; пустое значение отключает проверку JWT
	JWTJWKSURL string
	// Ожидаемый issuer (пусто — не проверяется)
	JWTIssuer string
	// Допуск на расхождение часов при проверке exp/nbf
	JWTLeeway time.Duration
	// Интервал обновления JWKS
	JWKSRefreshInterval time.Duration
	// Таймаут HTTP-клиента JWKS
	JWKSClientTimeout time.Duration

	// --- Мониторинг зависимостей ---

	DephealthGroup         string
	DephealthCheckInterval time.Duration
	// Лейбл isentry=yes для всех зависимостей
	DephealthIsEntry bool

	// --- Graceful shutdown ---

	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// MM_PORT — порт HTTP-сервера (по умолчанию 8040)
	cfg.Port, err = getEnvInt("MM_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("MM_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("MM_PORT: порт %d вне диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("MM_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("MM_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("MM_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("MM_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("MM_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MM_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("MM_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MM_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("MM_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MM_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- PostgreSQL ---

	cfg.DBHost, err = getEnvRequired("MM_DB_HOST")
	if err != nil {
		return nil, err
	}
	cfg.DBPort, err = getEnvInt("MM_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("MM_DB_PORT: %w", err)
	}
	cfg.DBName = getEnvDefault("MM_DB_NAME", "wantedcat")
	cfg.DBUser = getEnvDefault("MM_DB_USER", "wantedcat")
	cfg.DBPassword, err = getEnvRequired("MM_DB_PASSWORD")
	if err != nil {
		return nil, err
	}
	cfg.DBSSLMode = getEnvDefault("MM_DB_SSL_MODE", "disable")
	cfg.DBMigrate, err = getEnvBool("MM_DB_MIGRATE", true)
	if err != nil {
		return nil, fmt.Errorf("MM_DB_MIGRATE: %w", err)
	}

	// --- Blob storage ---

	cfg.StorageAccountName, err = getEnvRequired("MM_STORAGE_ACCOUNT_NAME")
	if err != nil {
		return nil, err
	}
	cfg.StorageAccountKey, err = getEnvRequired("MM_STORAGE_ACCOUNT_KEY")
	if err != nil {
		return nil, err
	}
	cfg.StorageContainer, err = getEnvRequired("MM_STORAGE_CONTAINER")
	if err != nil {
		return nil, err
	}

	// MM_STORAGE_BLOB_ENDPOINT — по умолчанию публичный endpoint account
	endpoint := getEnvDefault("MM_STORAGE_BLOB_ENDPOINT",
		fmt.Sprintf("https://%s.blob.core.windows.net", cfg.StorageAccountName))
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("MM_STORAGE_BLOB_ENDPOINT: некорректный URL %q", endpoint)
	}
	cfg.StorageBlobEndpoint = strings.TrimRight(endpoint, "/")

	// MM_STORAGE_HEALTH_PATH — например, публичный служебный объект контейнера
	cfg.StorageHealthPath = getEnvDefault("MM_STORAGE_HEALTH_PATH", "/")
	if !strings.HasPrefix(cfg.StorageHealthPath, "/") {
		return nil, fmt.Errorf("MM_STORAGE_HEALTH_PATH: путь должен начинаться с \"/\"")
	}

	// --- SAS ---

	cfg.SASMaxTTL, err = getEnvPositiveDuration("MM_SAS_MAX_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("MM_SAS_MAX_TTL: %w", err)
	}
	cfg.SASUploadTTL, err = getEnvPositiveDuration("MM_SAS_UPLOAD_TTL", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("MM_SAS_UPLOAD_TTL: %w", err)
	}
	if cfg.SASUploadTTL > cfg.SASMaxTTL {
		return nil, fmt.Errorf("MM_SAS_UPLOAD_TTL: %v превышает MM_SAS_MAX_TTL (%v)", cfg.SASUploadTTL, cfg.SASMaxTTL)
	}
	cfg.SASPlaybackTTL, err = getEnvPositiveDuration("MM_SAS_PLAYBACK_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("MM_SAS_PLAYBACK_TTL: %w", err)
	}
	if cfg.SASPlaybackTTL > cfg.SASMaxTTL {
		return nil, fmt.Errorf("MM_SAS_PLAYBACK_TTL: %v превышает MM_SAS_MAX_TTL (%v)", cfg.SASPlaybackTTL, cfg.SASMaxTTL)
	}
	cfg.SASClockSkew, err = getEnvDuration("MM_SAS_CLOCK_SKEW", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("MM_SAS_CLOCK_SKEW: %w", err)
	}
	if cfg.SASClockSkew < 0 {
		return nil, fmt.Errorf("MM_SAS_CLOCK_SKEW: значение должно быть >= 0")
	}

	// --- Статистика ---

	tz := getEnvDefault("MM_TIMEZONE", "Asia/Seoul")
	cfg.Timezone, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("MM_TIMEZONE: неизвестный часовой пояс %q: %w", tz, err)
	}
	cfg.StatsCacheSize, err = getEnvInt("MM_STATS_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("MM_STATS_CACHE_SIZE: %w", err)
	}
	if cfg.StatsCacheSize < 0 {
		return nil, fmt.Errorf("MM_STATS_CACHE_SIZE: значение должно быть >= 0")
	}
	cfg.StatsCacheTTL, err = getEnvPositiveDuration("MM_STATS_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MM_STATS_CACHE_TTL: %w", err)
	}

	// --- JWT ---

	cfg.JWTJWKSURL = getEnvDefault("MM_JWT_JWKS_URL", "")
	cfg.JWTIssuer = getEnvDefault("MM_JWT_ISSUER", "")
	cfg.JWTLeeway, err = getEnvDuration("MM_JWT_LEEWAY", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MM_JWT_LEEWAY: %w", err)
	}
	cfg.JWKSRefreshInterval, err = getEnvPositiveDuration("MM_JWKS_REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("MM_JWKS_REFRESH_INTERVAL: %w", err)
	}
	cfg.JWKSClientTimeout, err = getEnvPositiveDuration("MM_JWKS_CLIENT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MM_JWKS_CLIENT_TIMEOUT: %w", err)
	}

	// --- Мониторинг зависимостей ---

	cfg.DephealthGroup = getEnvDefault("MM_DEPHEALTH_GROUP", "wantedcat")
	cfg.DephealthCheckInterval, err = getEnvPositiveDuration("MM_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MM_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}
	// DEPHEALTH_ISENTRY — общая переменная для всех модулей, без префикса
	cfg.DephealthIsEntry, err = getEnvBool("DEPHEALTH_ISENTRY", false)
	if err != nil {
		return nil, fmt.Errorf("DEPHEALTH_ISENTRY: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("MM_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MM_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// JWTEnabled сообщает, включена ли проверка JWT.
func (c *Config) JWTEnabled() bool {
	return c.JWTJWKSURL != ""
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения без пароля.
// Используется для лейблов dephealth.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%d/%s", c.DBHost, c.DBPort, c.DBName)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvPositiveDuration — getEnvDuration с проверкой > 0.
func getEnvPositiveDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	d, err := getEnvDuration(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
