// Пакет service — бизнес-логика media-module.
// SasURLService — выпуск подписанных URL для видео и загрузки в blob-хранилище.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yuk-jeongmin/wantedcat/internal/sas"
)

// Максимальная длина имени blob-объекта.
const maxBlobNameLength = 1024

// ErrInvalidBlobName — имя объекта для загрузки недопустимо.
var ErrInvalidBlobName = errors.New("недопустимое имя объекта")

// TokenIssuer — выпуск токенов по именованному профилю.
// Реализуется *sas.Issuer.
type TokenIssuer interface {
	IssueProfile(name string, resource sas.ResourcePath) (*sas.SignedToken, error)
}

// UploadGrant — результат выпуска SAS на загрузку.
type UploadGrant struct {
	// BlobName — итоговое имя объекта (сгенерированное, если не было задано)
	BlobName string
	// URL — полный адрес объекта с SAS
	URL string
	// Token — строка запроса SAS без "?"
	Token string
	// ExpiresAt — момент окончания действия токена
	ExpiresAt time.Time
}

// SasURLService — выпуск подписанных URL.
type SasURLService struct {
	issuer    TokenIssuer
	container string
	logger    *slog.Logger
}

// NewSasURLService создаёт сервис подписанных URL.
// container — контейнер, в который устройства загружают записи.
func NewSasURLService(issuer TokenIssuer, container string, logger *slog.Logger) *SasURLService {
	return &SasURLService{
		issuer:    issuer,
		container: container,
		logger:    logger.With(slog.String("component", "sas_url_service")),
	}
}

// ParseObjectURL раскладывает URL объекта на контейнер (первый сегмент пути)
// и имя объекта (остаток пути).
func ParseObjectURL(raw string) (*url.URL, sas.ResourcePath, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, sas.ResourcePath{}, fmt.Errorf("%w: пустой URL", sas.ErrMalformedURL)
	}

	// Текст ошибки url.Parse содержит весь URL вместе с прежней подписью
	u, err := url.Parse(raw)
	if err != nil {
		return nil, sas.ResourcePath{}, fmt.Errorf("%w: URL не разбирается", sas.ErrMalformedURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, sas.ResourcePath{}, fmt.Errorf("%w: ожидается абсолютный URL", sas.ErrMalformedURL)
	}

	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, sas.ResourcePath{}, fmt.Errorf("%w: путь %q не содержит контейнер и имя объекта",
			sas.ErrMalformedURL, u.Path)
	}

	return u, sas.ResourcePath{Container: parts[0], Blob: parts[1]}, nil
}

// Reissue выпускает новый URL только на чтение для ранее сохранённого объекта.
// Схема, хост и путь исходного URL сохраняются, старая строка запроса
// заменяется новой подписью. Существование объекта не проверяется.
func (s *SasURLService) Reissue(originalURL string) (string, error) {
	u, resource, err := ParseObjectURL(originalURL)
	if err != nil {
		return "", err
	}

	token, err := s.issuer.IssueProfile(sas.ProfilePlayback, resource)
	if err != nil {
		return "", err
	}

	signed := url.URL{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     u.Path,
		RawPath:  u.RawPath,
		RawQuery: token.Query,
	}

	s.logger.Debug("URL видео переподписан",
		slog.String("resource", resource.String()),
		slog.Time("valid_until", token.Descriptor.ValidUntil),
	)

	return signed.String(), nil
}

// UploadURL выпускает SAS на загрузку объекта в контейнер устройств.
// Пустое имя заменяется сгенерированным UUID.
func (s *SasURLService) UploadURL(blobName string) (*UploadGrant, error) {
	name := strings.TrimSpace(blobName)
	if name == "" {
		name = uuid.NewString()
	}
	if err := validateBlobName(name); err != nil {
		return nil, err
	}

	token, err := s.issuer.IssueProfile(sas.ProfileUpload, sas.ResourcePath{
		Container: s.container,
		Blob:      name,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Выпущен SAS на загрузку",
		slog.String("blob_name", name),
		slog.Time("valid_until", token.Descriptor.ValidUntil),
	)

	return &UploadGrant{
		BlobName:  name,
		URL:       token.URL,
		Token:     token.Query,
		ExpiresAt: token.Descriptor.ValidUntil,
	}, nil
}

// validateBlobName проверяет имя объекта: без ведущего "/", без сегментов
// "." и "..", без управляющих символов, не длиннее maxBlobNameLength.
func validateBlobName(name string) error {
	if len(name) > maxBlobNameLength {
		return fmt.Errorf("%w: длина больше %d", ErrInvalidBlobName, maxBlobNameLength)
	}
	if strings.HasPrefix(name, "/") {
		return fmt.Errorf("%w: имя начинается с \"/\"", ErrInvalidBlobName)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("%w: недопустимый сегмент пути в %q", ErrInvalidBlobName, name)
		}
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: управляющий символ", ErrInvalidBlobName)
		}
	}
	return nil
}
