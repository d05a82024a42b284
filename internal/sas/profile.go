package sas

import "time"

// Имена стандартных профилей.
const (
	// ProfileUpload — клиент записывает видео/изображение (rcw, 30 минут, только HTTPS).
	ProfileUpload = "upload"
	// ProfilePlayback — клиент воспроизводит сохранённое медиа (r, 1 час).
	ProfilePlayback = "playback"
)

// Profile — параметры выпуска для одного сценария.
// Новые профили добавляются в таблицу без изменения подписчика.
type Profile struct {
	Permissions Permissions
	Validity    time.Duration
	Protocol    Protocol
}

// DefaultProfiles возвращает таблицу стандартных профилей.
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		ProfileUpload: {
			Permissions: PermReadWriteCreate,
			Validity:    30 * time.Minute,
			Protocol:    ProtocolHTTPSOnly,
		},
		ProfilePlayback: {
			Permissions: PermRead,
			Validity:    time.Hour,
			Protocol:    ProtocolAny,
		},
	}
}
