package sas

import "errors"

// Ошибки выпуска SAS-токенов.
// Вызывающий код различает их через errors.Is и маппит в HTTP-статусы.
var (
	// ErrInvalidKey — ключ аккаунта хранилища отсутствует или не является base64.
	// Ошибка конфигурации сервера, не клиента.
	ErrInvalidKey = errors.New("некорректный ключ аккаунта хранилища")

	// ErrInvalidPermissions — запрошен пустой набор прав.
	ErrInvalidPermissions = errors.New("не задано ни одного права доступа")

	// ErrInvalidValidity — срок действия токена не положителен или превышает максимум.
	ErrInvalidValidity = errors.New("недопустимый срок действия токена")

	// ErrMalformedURL — URL не раскладывается на контейнер и имя объекта.
	ErrMalformedURL = errors.New("некорректный URL объекта")

	// ErrSigningFailed — примитив подписи отклонил дескриптор.
	ErrSigningFailed = errors.New("ошибка подписи SAS")

	// ErrUnknownProfile — профиль выпуска не найден в таблице профилей.
	ErrUnknownProfile = errors.New("неизвестный профиль SAS")
)
