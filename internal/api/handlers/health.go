// health.go — /health/live, /health/ready и /metrics.
package handlers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yuk-jeongmin/wantedcat/internal/config"
)

const serviceName = "media-module"

// Статусы проверок готовности.
const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusFail     = "fail"
)

// ReadinessChecker — проверка одной зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "degraded", "fail") и пояснение.
	CheckReady() (status, message string)
}

// ReadinessFunc позволяет использовать функцию как ReadinessChecker.
type ReadinessFunc func() (status, message string)

// CheckReady вызывает f.
func (f ReadinessFunc) CheckReady() (string, string) {
	return f()
}

// HealthHandler отвечает на проверки Kubernetes и отдаёт метрики.
//
// PostgreSQL критичен: без него нет ни событий, ни статистики.
// Blob storage не критичен: подпись SAS выполняется локально ключом
// аккаунта, поэтому его сбой понижает статус до degraded, но не снимает
// под с балансировки.
type HealthHandler struct {
	postgres    ReadinessChecker
	blobStorage ReadinessChecker
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// postgres == nil означает, что БД не инициализирована (readiness = fail);
// blobStorage == nil исключает blob storage из ответа.
func NewHealthHandler(postgres, blobStorage ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		postgres:    postgres,
		blobStorage: blobStorage,
		promHandler: promhttp.Handler(),
	}
}

type checkResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

type readyChecks struct {
	PostgreSQL  checkResult  `json:"postgresql"`
	BlobStorage *checkResult `json:"blobStorage,omitempty"`
}

type healthReadyResponse struct {
	Status    string      `json:"status"`
	Timestamp string      `json:"timestamp"`
	Version   string      `json:"version"`
	Service   string      `json:"service"`
	Checks    readyChecks `json:"checks"`
}

// HealthLive всегда отвечает 200, пока процесс обслуживает запросы.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthLiveResponse{
		Status:    statusOK,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	})
}

// HealthReady отвечает 503 только при сбое PostgreSQL.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}

	resp.Checks.PostgreSQL = checkResult{Status: statusFail, Message: "не инициализирован"}
	if h.postgres != nil {
		status, msg := h.postgres.CheckReady()
		resp.Checks.PostgreSQL = checkResult{Status: status, Message: msg}
	}
	statuses := []string{resp.Checks.PostgreSQL.Status}

	if h.blobStorage != nil {
		status, msg := h.blobStorage.CheckReady()
		if status == statusFail {
			status = statusDegraded
		}
		resp.Checks.BlobStorage = &checkResult{Status: status, Message: msg}
		statuses = append(statuses, status)
	}

	resp.Status = overallStatus(statuses...)

	code := http.StatusOK
	if resp.Status == statusFail {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// GetMetrics отдаёт метрики из глобального Prometheus registry.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// overallStatus: худший из статусов, fail > degraded > ok.
func overallStatus(statuses ...string) string {
	result := statusOK
	for _, s := range statuses {
		switch s {
		case statusFail:
			return statusFail
		case statusDegraded:
			result = statusDegraded
		}
	}
	return result
}
