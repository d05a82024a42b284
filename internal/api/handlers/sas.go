// sas.go — обработчики выпуска подписанных URL.
// POST /api/events/video/sas — переподпись URL сохранённого видео (только чтение).
// GET /api/blob/generate-sas — SAS на загрузку видео устройством.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"

	apierrors "github.com/yuk-jeongmin/wantedcat/internal/api/errors"
	"github.com/yuk-jeongmin/wantedcat/internal/api/middleware"
	"github.com/yuk-jeongmin/wantedcat/internal/sas"
)

// Максимальный размер тела запроса переподписи.
const maxVideoSasBody = 8 << 10

// videoSasRequest — тело POST /api/events/video/sas.
type videoSasRequest struct {
	VideoURL string `json:"videoUrl"`
}

// videoSasResponse — ответ POST /api/events/video/sas.
type videoSasResponse struct {
	VideoURL string `json:"videoUrl"`
}

// uploadSasResponse — ответ GET /api/blob/generate-sas.
type uploadSasResponse struct {
	SasURL    string    `json:"sasUrl"`
	SasToken  string    `json:"sasToken"`
	BlobName  string    `json:"blobName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ReissueVideoSas — POST /api/events/video/sas.
func (h *APIHandler) ReissueVideoSas(w http.ResponseWriter, r *http.Request) {
	var req videoSasRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxVideoSasBody)).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON в теле запроса")
		return
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		apierrors.ValidationError(w, "Поле videoUrl обязательно")
		return
	}

	signed, err := h.media.Reissue(req.VideoURL)
	if err != nil {
		h.logSasError(r, "Ошибка переподписи URL видео", err)
		apierrors.FromDomain(w, err)
		return
	}

	writeJSON(w, http.StatusOK, videoSasResponse{VideoURL: signed})
}

// GenerateUploadSas — GET /api/blob/generate-sas?blobName.
func (h *APIHandler) GenerateUploadSas(w http.ResponseWriter, r *http.Request) {
	var blobName string
	if err := runtime.BindQueryParameter("form", true, false, "blobName", r.URL.Query(), &blobName); err != nil {
		apierrors.ValidationError(w, "Некорректный параметр blobName: "+err.Error())
		return
	}

	grant, err := h.media.UploadURL(blobName)
	if err != nil {
		h.logSasError(r, "Ошибка выпуска SAS на загрузку", err)
		apierrors.FromDomain(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadSasResponse{
		SasURL:    grant.URL,
		SasToken:  grant.Token,
		BlobName:  grant.BlobName,
		ExpiresAt: grant.ExpiresAt,
	})
}

// logSasError логирует ошибку выпуска: клиентские ошибки — WARN, сбои ключа и подписи — ERROR.
// Исходный URL не логируется: в нём может быть прежняя подпись.
func (h *APIHandler) logSasError(r *http.Request, msg string, err error) {
	level := slog.LevelWarn
	if errors.Is(err, sas.ErrInvalidKey) || errors.Is(err, sas.ErrSigningFailed) {
		level = slog.LevelError
	}
	h.logger.LogAttrs(r.Context(), level, msg,
		slog.String("subject", middleware.SubjectFromContext(r.Context())),
		slog.String("error", err.Error()),
	)
}
