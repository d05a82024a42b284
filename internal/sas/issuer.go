package sas

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yuk-jeongmin/wantedcat/internal/clock"
)

// Профиль-метка для прямых вызовов Issue (вне таблицы профилей).
const adhocProfile = "adhoc"

// Prometheus-метрики выпуска SAS.
var (
	sasIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_sas_issued_total",
		Help: "Количество выпущенных SAS-токенов (по профилю).",
	}, []string{"profile"})

	sasFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mm_sas_failures_total",
		Help: "Количество отказов в выпуске SAS-токена (по причине).",
	}, []string{"reason"})
)

// IssuerConfig — параметры выпуска токенов.
type IssuerConfig struct {
	// Key — учётные данные аккаунта хранилища
	Key SharedKey
	// Endpoint — базовый URL blob-сервиса (https://{account}.blob.core.windows.net)
	Endpoint string
	// ClockSkew — на сколько ValidFrom сдвигается назад от текущего времени
	ClockSkew time.Duration
	// MaxValidity — верхняя граница срока действия (0 — без ограничения)
	MaxValidity time.Duration
	// Profiles — таблица профилей по имени
	Profiles map[string]Profile
}

// Issuer строит дескриптор, подписывает его и собирает итоговый URL.
// Состояние между вызовами не хранится.
type Issuer struct {
	cfg    IssuerConfig
	signer Signer
	clock  clock.Clock
	logger *slog.Logger
}

// NewIssuer создаёт выпускающий сервис.
// Если cfg.Profiles пуст, используется DefaultProfiles.
func NewIssuer(cfg IssuerConfig, signer Signer, clk clock.Clock, logger *slog.Logger) *Issuer {
	if len(cfg.Profiles) == 0 {
		cfg.Profiles = DefaultProfiles()
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")

	return &Issuer{
		cfg:    cfg,
		signer: signer,
		clock:  clk,
		logger: logger.With(slog.String("component", "sas_issuer")),
	}
}

// Issue выпускает токен для ресурса.
//
//	validFrom  = now - ClockSkew
//	validUntil = now + validity
//
// Ошибка подписи не повторяется: ключ либо сконфигурирован верно, либо нет.
func (i *Issuer) Issue(resource ResourcePath, perms Permissions, validity time.Duration, protocol Protocol) (*SignedToken, error) {
	return i.issue(adhocProfile, resource, perms, validity, protocol)
}

// IssueProfile выпускает токен по именованному профилю.
func (i *Issuer) IssueProfile(name string, resource ResourcePath) (*SignedToken, error) {
	p, ok := i.cfg.Profiles[name]
	if !ok {
		sasFailuresTotal.WithLabelValues("unknown_profile").Inc()
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return i.issue(name, resource, p.Permissions, p.Validity, p.Protocol)
}

// ObjectURL возвращает адрес объекта на сконфигурированном endpoint (без SAS).
func (i *Issuer) ObjectURL(resource ResourcePath) string {
	u := url.URL{Path: "/" + resource.Container + "/" + resource.Blob}
	return i.cfg.Endpoint + u.EscapedPath()
}

func (i *Issuer) issue(profile string, resource ResourcePath, perms Permissions, validity time.Duration, protocol Protocol) (*SignedToken, error) {
	if perms.IsEmpty() {
		sasFailuresTotal.WithLabelValues("invalid_permissions").Inc()
		return nil, ErrInvalidPermissions
	}
	if validity <= 0 || (i.cfg.MaxValidity > 0 && validity > i.cfg.MaxValidity) {
		sasFailuresTotal.WithLabelValues("invalid_validity").Inc()
		return nil, fmt.Errorf("%w: %s", ErrInvalidValidity, validity)
	}
	if protocol == "" {
		protocol = ProtocolHTTPSOnly
	}

	// SAS подписывает время с точностью до секунды
	now := i.clock.Now().UTC().Truncate(time.Second)

	desc := AccessDescriptor{
		Resource:    resource,
		Permissions: perms,
		ValidFrom:   now.Add(-i.cfg.ClockSkew),
		ValidUntil:  now.Add(validity),
		Protocol:    protocol,
	}

	sig, err := i.signer.Sign(desc, i.cfg.Key)
	if err != nil {
		reason := "signing_failed"
		if errors.Is(err, ErrInvalidKey) {
			reason = "invalid_key"
		}
		sasFailuresTotal.WithLabelValues(reason).Inc()
		i.logger.Error("Ошибка подписи SAS",
			slog.String("profile", profile),
			slog.String("resource", resource.String()),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, ErrInvalidKey) || errors.Is(err, ErrSigningFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}

	sasIssuedTotal.WithLabelValues(profile).Inc()
	i.logger.Debug("SAS выпущен",
		slog.String("profile", profile),
		slog.String("resource", resource.String()),
		slog.String("permissions", perms.String()),
		slog.Time("valid_until", desc.ValidUntil),
	)

	return &SignedToken{
		Descriptor: desc,
		Signature:  sig.Value,
		Query:      sig.Query,
		URL:        i.ObjectURL(resource) + "?" + sig.Query,
	}, nil
}
