package sas

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/yuk-jeongmin/wantedcat/internal/clock"
)

// issuanceTime — момент выпуска в тестах (целые секунды).
var issuanceTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// mockSigner — мок Signer для unit-тестов.
type mockSigner struct {
	signFn func(d AccessDescriptor, key SharedKey) (Signature, error)
	last   AccessDescriptor
	calls  int
}

func (m *mockSigner) Sign(d AccessDescriptor, key SharedKey) (Signature, error) {
	m.calls++
	m.last = d
	if m.signFn != nil {
		return m.signFn(d, key)
	}
	return Signature{Value: "sig", Query: "sv=x&sig=sig"}, nil
}

func newTestIssuer(signer Signer, clk clock.Clock) *Issuer {
	return NewIssuer(IssuerConfig{
		Key:         testKey1,
		Endpoint:    "https://acct.blob.core.windows.net/",
		ClockSkew:   time.Minute,
		MaxValidity: 24 * time.Hour,
	}, signer, clk, slog.Default())
}

// TestIssuer_ProfileWindows проверяет окна действия стандартных профилей.
func TestIssuer_ProfileWindows(t *testing.T) {
	tests := []struct {
		profile  string
		validity time.Duration
		perms    Permissions
		protocol Protocol
	}{
		{ProfileUpload, 30 * time.Minute, PermReadWriteCreate, ProtocolHTTPSOnly},
		{ProfilePlayback, time.Hour, PermRead, ProtocolAny},
	}

	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			signer := &mockSigner{}
			iss := newTestIssuer(signer, clock.NewFixed(issuanceTime))

			tok, err := iss.IssueProfile(tt.profile, ResourcePath{Container: "videos", Blob: "a.mp4"})
			if err != nil {
				t.Fatalf("IssueProfile ошибка: %v", err)
			}

			d := tok.Descriptor
			if got := d.ValidUntil.Sub(issuanceTime); got != tt.validity {
				t.Errorf("validUntil - now = %v, ожидалось %v", got, tt.validity)
			}
			if got := issuanceTime.Sub(d.ValidFrom); got != time.Minute {
				t.Errorf("now - validFrom = %v, ожидалась 1m", got)
			}
			if got := d.ValidUntil.Sub(d.ValidFrom); got != tt.validity+time.Minute {
				t.Errorf("ширина окна = %v, ожидалось %v", got, tt.validity+time.Minute)
			}
			if d.ValidFrom.After(issuanceTime) || issuanceTime.After(d.ValidUntil) {
				t.Errorf("момент выпуска вне окна [%v, %v]", d.ValidFrom, d.ValidUntil)
			}
			if d.Permissions != tt.perms {
				t.Errorf("права = %v, ожидались %v", d.Permissions, tt.perms)
			}
			if d.Protocol != tt.protocol {
				t.Errorf("протокол = %q, ожидался %q", d.Protocol, tt.protocol)
			}
			if signer.last != d {
				t.Error("подписан не тот дескриптор, что возвращён в токене")
			}
		})
	}
}

// TestIssuer_URL проверяет сборку URL на базовом endpoint.
func TestIssuer_URL(t *testing.T) {
	iss := newTestIssuer(&mockSigner{}, clock.NewFixed(issuanceTime))

	tok, err := iss.Issue(ResourcePath{Container: "videos", Blob: "cam 1/a.mp4"}, PermRead, time.Hour, ProtocolAny)
	if err != nil {
		t.Fatalf("Issue ошибка: %v", err)
	}

	want := "https://acct.blob.core.windows.net/videos/cam%201/a.mp4?sv=x&sig=sig"
	if tok.URL != want {
		t.Errorf("URL = %q, ожидался %q", tok.URL, want)
	}
	if tok.Signature != "sig" {
		t.Errorf("Signature = %q, ожидался sig", tok.Signature)
	}
}

// TestIssuer_EmptyPermissions проверяет отказ без обращения к подписчику.
func TestIssuer_EmptyPermissions(t *testing.T) {
	signer := &mockSigner{}
	iss := newTestIssuer(signer, clock.NewFixed(issuanceTime))

	_, err := iss.Issue(ResourcePath{Container: "c", Blob: "b"}, Permissions{}, time.Hour, ProtocolAny)
	if !errors.Is(err, ErrInvalidPermissions) {
		t.Fatalf("ошибка = %v, ожидалась ErrInvalidPermissions", err)
	}
	if signer.calls != 0 {
		t.Errorf("подписчик вызван %d раз, ожидалось 0", signer.calls)
	}
}

// TestIssuer_InvalidValidity проверяет границы срока действия.
func TestIssuer_InvalidValidity(t *testing.T) {
	iss := newTestIssuer(&mockSigner{}, clock.NewFixed(issuanceTime))
	res := ResourcePath{Container: "c", Blob: "b"}

	for _, d := range []time.Duration{0, -time.Minute, 25 * time.Hour} {
		if _, err := iss.Issue(res, PermRead, d, ProtocolAny); !errors.Is(err, ErrInvalidValidity) {
			t.Errorf("validity=%v: ошибка = %v, ожидалась ErrInvalidValidity", d, err)
		}
	}
}

// TestIssuer_UnknownProfile проверяет ErrUnknownProfile.
func TestIssuer_UnknownProfile(t *testing.T) {
	iss := newTestIssuer(&mockSigner{}, clock.NewFixed(issuanceTime))

	_, err := iss.IssueProfile("archive", ResourcePath{Container: "c", Blob: "b"})
	if !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("ошибка = %v, ожидалась ErrUnknownProfile", err)
	}
}

// TestIssuer_SignerErrorsPropagate проверяет проброс ошибок подписчика.
func TestIssuer_SignerErrorsPropagate(t *testing.T) {
	res := ResourcePath{Container: "c", Blob: "b"}

	keyErr := &mockSigner{signFn: func(AccessDescriptor, SharedKey) (Signature, error) {
		return Signature{}, ErrInvalidKey
	}}
	if _, err := newTestIssuer(keyErr, clock.NewFixed(issuanceTime)).Issue(res, PermRead, time.Hour, ProtocolAny); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("ошибка = %v, ожидалась ErrInvalidKey", err)
	}

	otherErr := &mockSigner{signFn: func(AccessDescriptor, SharedKey) (Signature, error) {
		return Signature{}, errors.New("hsm недоступен")
	}}
	_, err := newTestIssuer(otherErr, clock.NewFixed(issuanceTime)).Issue(res, PermRead, time.Hour, ProtocolAny)
	if !errors.Is(err, ErrSigningFailed) {
		t.Errorf("ошибка = %v, ожидалась ErrSigningFailed", err)
	}
}

// TestIssuer_RealSigner — сквозная проверка с SharedKeySigner.
func TestIssuer_RealSigner(t *testing.T) {
	iss := newTestIssuer(NewSharedKeySigner(), clock.NewFixed(issuanceTime))

	tok, err := iss.IssueProfile(ProfileUpload, ResourcePath{Container: "videos", Blob: "u1/rec.mp4"})
	if err != nil {
		t.Fatalf("IssueProfile ошибка: %v", err)
	}
	if !strings.HasPrefix(tok.URL, "https://acct.blob.core.windows.net/videos/u1/rec.mp4?") {
		t.Errorf("URL = %q", tok.URL)
	}
	if !strings.Contains(tok.Query, "sig=") {
		t.Errorf("query без sig: %q", tok.Query)
	}
}
