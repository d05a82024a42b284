// Пакет sas — выпуск короткоживущих SAS-токенов доступа к объектам blob-хранилища.
//
// Дескриптор (ресурс, права, окно действия, протокол) подписывается shared key
// аккаунта; мастер-ключ клиенту никогда не передаётся.
package sas

import (
	"strings"
	"time"
)

// Permissions — набор прав на объект.
type Permissions struct {
	Read   bool
	Write  bool
	Create bool
}

// Наборы прав стандартных профилей.
var (
	PermRead            = Permissions{Read: true}
	PermReadWriteCreate = Permissions{Read: true, Write: true, Create: true}
)

// IsEmpty сообщает, что не задано ни одного права.
func (p Permissions) IsEmpty() bool {
	return !p.Read && !p.Write && !p.Create
}

// String возвращает права в каноническом порядке хранилища (r, c, w).
func (p Permissions) String() string {
	var b strings.Builder
	if p.Read {
		b.WriteByte('r')
	}
	if p.Create {
		b.WriteByte('c')
	}
	if p.Write {
		b.WriteByte('w')
	}
	return b.String()
}

// Protocol — ограничение протокола для SAS.
type Protocol string

const (
	// ProtocolAny — разрешены HTTPS и HTTP.
	ProtocolAny Protocol = "https,http"
	// ProtocolHTTPSOnly — только HTTPS.
	ProtocolHTTPSOnly Protocol = "https"
)

// ResourcePath — адрес объекта: контейнер + имя blob внутри контейнера.
type ResourcePath struct {
	// Container — контейнер (первый сегмент пути)
	Container string
	// Blob — имя объекта (остаток пути, может содержать "/")
	Blob string
}

// String возвращает путь вида container/blob.
func (r ResourcePath) String() string {
	return r.Container + "/" + r.Blob
}

// AccessDescriptor — неподписанный набор параметров доступа.
// Создаётся на каждый запрос, не сохраняется.
type AccessDescriptor struct {
	Resource    ResourcePath
	Permissions Permissions
	// ValidFrom — начало действия (с учётом допуска на рассинхрон часов)
	ValidFrom time.Time
	// ValidUntil — окончание действия, всегда позже ValidFrom
	ValidUntil time.Time
	Protocol   Protocol
}

// SignedToken — результат выпуска. Неизменяем после создания.
type SignedToken struct {
	Descriptor AccessDescriptor
	// Signature — значение sig (HMAC-SHA256, base64)
	Signature string
	// Query — полная SAS query-строка (sv, st, se, sp, sr, spr, sig)
	Query string
	// URL — адрес объекта с добавленной SAS query-строкой
	URL string
}
