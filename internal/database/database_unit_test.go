package database

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/yuk-jeongmin/wantedcat/internal/config"
)

// fakePinger — мок pinger с функцией-полем.
type fakePinger struct {
	pingFn func(ctx context.Context) error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	return f.pingFn(ctx)
}

func TestMigrationURL(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db.internal",
		DBPort:     5433,
		DBName:     "wantedcat",
		DBUser:     "media",
		DBPassword: "p@ss/w:rd?",
		DBSSLMode:  "require",
	}

	raw := migrationURL(cfg)
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("URL миграций не разбирается: %v", err)
	}
	if u.Scheme != "pgx5" || u.Host != "db.internal:5433" || u.Path != "/wantedcat" {
		t.Errorf("URL = %s", raw)
	}
	if pass, _ := u.User.Password(); pass != cfg.DBPassword {
		t.Errorf("пароль после разбора = %q, ожидался %q", pass, cfg.DBPassword)
	}
	if got := u.Query().Get("sslmode"); got != "require" {
		t.Errorf("sslmode = %q, ожидался require", got)
	}
}

func TestReadinessChecker_Statuses(t *testing.T) {
	tests := []struct {
		name       string
		pingFn     func(ctx context.Context) error
		wantStatus string
		wantMsg    string
	}{
		{
			name:       "ok",
			pingFn:     func(context.Context) error { return nil },
			wantStatus: "ok",
		},
		{
			name: "ошибка драйвера не раскрывается",
			pingFn: func(context.Context) error {
				return errors.New("FATAL: password authentication failed for user media")
			},
			wantStatus: "fail",
			wantMsg:    "PostgreSQL недоступен",
		},
		{
			name: "таймаут",
			pingFn: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
			wantStatus: "fail",
			wantMsg:    "не ответил",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &ReadinessChecker{db: &fakePinger{pingFn: tt.pingFn}, timeout: 50 * time.Millisecond}

			status, msg := c.CheckReady()
			if status != tt.wantStatus {
				t.Errorf("status = %q, ожидался %q", status, tt.wantStatus)
			}
			if !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("message = %q, ожидалось содержание %q", msg, tt.wantMsg)
			}
			if strings.Contains(msg, "password") {
				t.Errorf("message раскрывает ошибку драйвера: %q", msg)
			}
		})
	}
}
