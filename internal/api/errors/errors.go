// Пакет errors — конструкторы стандартных ошибок media-module.
// Единый формат: {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/yuk-jeongmin/wantedcat/internal/domain/stats"
	"github.com/yuk-jeongmin/wantedcat/internal/sas"
	"github.com/yuk-jeongmin/wantedcat/internal/service"
)

// Коды ошибок, определённые в OpenAPI контракте.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeConfigurationError = "CONFIGURATION_ERROR"
	CodeSigningFailed      = "SIGNING_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном формате.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}

// FromDomain маппит доменную ошибку в HTTP-ответ.
// Клиентские ошибки (URL, права, дата, имя объекта) — 400.
// Ошибки ключа и подписи — 500: это сбой конфигурации сервера, а не клиента.
// Текст ошибок ключа и подписи клиенту не передаётся.
func FromDomain(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, sas.ErrMalformedURL),
		stderrors.Is(err, sas.ErrInvalidPermissions),
		stderrors.Is(err, sas.ErrInvalidValidity),
		stderrors.Is(err, stats.ErrInvalidDate),
		stderrors.Is(err, service.ErrInvalidBlobName):
		ValidationError(w, err.Error())
	case stderrors.Is(err, sas.ErrInvalidKey):
		WriteError(w, http.StatusInternalServerError, CodeConfigurationError,
			"ключ хранилища не сконфигурирован")
	case stderrors.Is(err, sas.ErrSigningFailed),
		stderrors.Is(err, sas.ErrUnknownProfile):
		WriteError(w, http.StatusInternalServerError, CodeSigningFailed,
			"не удалось подписать URL")
	default:
		InternalError(w, "внутренняя ошибка сервера")
	}
}
