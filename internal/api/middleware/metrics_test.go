package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newTestRouter — chi-роутер с middleware метрик и одним маршрутом.
func newTestRouter(logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware())
	r.Use(RequestLogger(logger))
	r.Get("/api/events/stats", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	return r
}

// scrapeMetrics возвращает текстовый вывод /metrics глобального registry.
func scrapeMetrics(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestMetricsMiddleware_RoutePattern(t *testing.T) {
	router := newTestRouter(testLogger())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/stats?userId=u1&date=2024-03-01", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("статус = %d, ожидался 418", rec.Code)
	}

	want := `mm_http_requests_total{method="GET",path="/api/events/stats",status="418"}`
	if out := scrapeMetrics(t); !strings.Contains(out, want) {
		t.Errorf("в /metrics нет серии %s", want)
	}
}

func TestMetricsMiddleware_Unmatched(t *testing.T) {
	router := newTestRouter(testLogger())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/random/a1b2c3", nil))

	out := scrapeMetrics(t)
	if strings.Contains(out, "/random/a1b2c3") {
		t.Error("сырой путь попал в лейбл метрики")
	}
	want := `mm_http_requests_total{method="GET",path="unmatched",status="404"}`
	if !strings.Contains(out, want) {
		t.Errorf("в /metrics нет серии %s", want)
	}
}

func TestRequestLogger_NoQueryString(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	router := newTestRouter(logger)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/stats?sig=secret-signature", nil))

	out := buf.String()
	if !strings.Contains(out, "status=418") {
		t.Errorf("в логе нет статуса: %s", out)
	}
	// 4xx логируется на уровне WARN
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("ожидался уровень WARN: %s", out)
	}
	if strings.Contains(out, "secret-signature") {
		t.Error("строка запроса попала в лог")
	}
}
