package sas

import (
	"errors"
	"net/url"
	"testing"
	"time"
)

// Тестовые ключи (base64 от "test-account-key-1" / "test-account-key-2").
var (
	testKey1 = SharedKey{AccountName: "acct", AccountKey: "dGVzdC1hY2NvdW50LWtleS0x"}
	testKey2 = SharedKey{AccountName: "acct", AccountKey: "dGVzdC1hY2NvdW50LWtleS0y"}
)

// testDescriptor возвращает дескриптор с фиксированным окном.
func testDescriptor(blob string) AccessDescriptor {
	from := time.Date(2024, 3, 1, 9, 59, 0, 0, time.UTC)
	return AccessDescriptor{
		Resource:    ResourcePath{Container: "videos", Blob: blob},
		Permissions: PermRead,
		ValidFrom:   from,
		ValidUntil:  from.Add(61 * time.Minute),
		Protocol:    ProtocolAny,
	}
}

// TestSharedKeySigner_Deterministic проверяет, что подпись — чистая функция входов.
func TestSharedKeySigner_Deterministic(t *testing.T) {
	s := NewSharedKeySigner()
	d := testDescriptor("cam1/event.mp4")

	a, err := s.Sign(d, testKey1)
	if err != nil {
		t.Fatalf("Sign ошибка: %v", err)
	}
	b, err := s.Sign(d, testKey1)
	if err != nil {
		t.Fatalf("Sign ошибка: %v", err)
	}

	if a.Value == "" {
		t.Fatal("пустая подпись")
	}
	if a != b {
		t.Errorf("подписи различаются: %q != %q", a.Value, b.Value)
	}
}

// TestSharedKeySigner_KeySensitivity — разные ключи дают разные подписи.
func TestSharedKeySigner_KeySensitivity(t *testing.T) {
	s := NewSharedKeySigner()
	d := testDescriptor("cam1/event.mp4")

	a, err := s.Sign(d, testKey1)
	if err != nil {
		t.Fatalf("Sign ошибка: %v", err)
	}
	b, err := s.Sign(d, testKey2)
	if err != nil {
		t.Fatalf("Sign ошибка: %v", err)
	}

	if a.Value == b.Value {
		t.Error("подписи разными ключами совпали")
	}
}

// TestSharedKeySigner_DescriptorSensitivity — разные ресурсы дают разные подписи.
func TestSharedKeySigner_DescriptorSensitivity(t *testing.T) {
	s := NewSharedKeySigner()

	a, err := s.Sign(testDescriptor("cam1/a.mp4"), testKey1)
	if err != nil {
		t.Fatalf("Sign ошибка: %v", err)
	}
	b, err := s.Sign(testDescriptor("cam1/b.mp4"), testKey1)
	if err != nil {
		t.Fatalf("Sign ошибка: %v", err)
	}

	if a.Value == b.Value {
		t.Error("подписи разных ресурсов совпали")
	}
}

// TestSharedKeySigner_Query проверяет состав SAS query-строки.
func TestSharedKeySigner_Query(t *testing.T) {
	s := NewSharedKeySigner()
	d := testDescriptor("cam1/event.mp4")
	d.Permissions = PermReadWriteCreate
	d.Protocol = ProtocolHTTPSOnly

	sig, err := s.Sign(d, testKey1)
	if err != nil {
		t.Fatalf("Sign ошибка: %v", err)
	}

	q, err := url.ParseQuery(sig.Query)
	if err != nil {
		t.Fatalf("некорректная query-строка %q: %v", sig.Query, err)
	}

	if got := q.Get("sig"); got != sig.Value {
		t.Errorf("sig = %q, ожидался %q", got, sig.Value)
	}
	if got := q.Get("sr"); got != "b" {
		t.Errorf("sr = %q, ожидался b", got)
	}
	if got := q.Get("sp"); got != "rcw" {
		t.Errorf("sp = %q, ожидался rcw", got)
	}
	if got := q.Get("spr"); got != "https" {
		t.Errorf("spr = %q, ожидался https", got)
	}
	if q.Get("se") == "" || q.Get("st") == "" || q.Get("sv") == "" {
		t.Errorf("в query отсутствуют se/st/sv: %q", sig.Query)
	}
}

// TestSharedKeySigner_InvalidKey проверяет отказ при пустом и не-base64 ключе.
func TestSharedKeySigner_InvalidKey(t *testing.T) {
	tests := []struct {
		name string
		key  SharedKey
	}{
		{"пустой ключ", SharedKey{AccountName: "acct"}},
		{"пустой аккаунт", SharedKey{AccountKey: testKey1.AccountKey}},
		{"не base64", SharedKey{AccountName: "acct", AccountKey: "%%%not-base64%%%"}},
	}

	s := NewSharedKeySigner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Sign(testDescriptor("a.mp4"), tt.key)
			if !errors.Is(err, ErrInvalidKey) {
				t.Errorf("ошибка = %v, ожидалась ErrInvalidKey", err)
			}
		})
	}
}

// TestSharedKeySigner_RejectedDescriptor проверяет ErrSigningFailed.
func TestSharedKeySigner_RejectedDescriptor(t *testing.T) {
	s := NewSharedKeySigner()

	noBlob := testDescriptor("")
	if _, err := s.Sign(noBlob, testKey1); !errors.Is(err, ErrSigningFailed) {
		t.Errorf("пустой blob: ошибка = %v, ожидалась ErrSigningFailed", err)
	}

	inverted := testDescriptor("a.mp4")
	inverted.ValidUntil = inverted.ValidFrom
	if _, err := s.Sign(inverted, testKey1); !errors.Is(err, ErrSigningFailed) {
		t.Errorf("пустое окно: ошибка = %v, ожидалась ErrSigningFailed", err)
	}

	noPerms := testDescriptor("a.mp4")
	noPerms.Permissions = Permissions{}
	if _, err := s.Sign(noPerms, testKey1); !errors.Is(err, ErrSigningFailed) {
		t.Errorf("без прав: ошибка = %v, ожидалась ErrSigningFailed", err)
	}
}

func TestPermissions_String(t *testing.T) {
	if got := PermReadWriteCreate.String(); got != "rcw" {
		t.Errorf("String() = %q, ожидался rcw", got)
	}
	if got := PermRead.String(); got != "r" {
		t.Errorf("String() = %q, ожидался r", got)
	}
	if !(Permissions{}).IsEmpty() {
		t.Error("пустой набор прав не распознан")
	}
}
