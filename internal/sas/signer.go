package sas

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
)

// SharedKey — учётные данные аккаунта хранилища.
// AccountKey — base64-ключ из конфигурации, в логи не попадает.
type SharedKey struct {
	AccountName string
	AccountKey  string
}

// Signature — результат подписи дескриптора.
type Signature struct {
	// Value — значение параметра sig
	Value string
	// Query — закодированная SAS query-строка целиком
	Query string
}

// Signer подписывает дескриптор доступа ключом аккаунта.
// Реализация детерминирована: одинаковые дескриптор и ключ дают одинаковую подпись.
type Signer interface {
	Sign(d AccessDescriptor, key SharedKey) (Signature, error)
}

// SharedKeySigner — service SAS на shared key (HMAC-SHA256 по canonical string-to-sign).
// Не хранит состояния, безопасен для конкурентного использования.
type SharedKeySigner struct{}

// NewSharedKeySigner создаёт подписчика.
func NewSharedKeySigner() *SharedKeySigner {
	return &SharedKeySigner{}
}

// Sign подписывает дескриптор.
// Время окна подписывается с точностью до секунды.
func (s *SharedKeySigner) Sign(d AccessDescriptor, key SharedKey) (Signature, error) {
	if key.AccountName == "" || key.AccountKey == "" {
		return Signature{}, fmt.Errorf("%w: имя аккаунта или ключ не заданы", ErrInvalidKey)
	}

	cred, err := azblob.NewSharedKeyCredential(key.AccountName, key.AccountKey)
	if err != nil {
		// Текст ошибки SDK не содержит сам ключ
		return Signature{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	if d.Resource.Container == "" || d.Resource.Blob == "" {
		return Signature{}, fmt.Errorf("%w: не задан контейнер или имя объекта", ErrSigningFailed)
	}
	if !d.ValidUntil.After(d.ValidFrom) {
		return Signature{}, fmt.Errorf("%w: окончание действия не позже начала", ErrSigningFailed)
	}

	perms := sas.BlobPermissions{
		Read:   d.Permissions.Read,
		Write:  d.Permissions.Write,
		Create: d.Permissions.Create,
	}

	values := sas.BlobSignatureValues{
		Protocol:      sas.Protocol(d.Protocol),
		StartTime:     d.ValidFrom.UTC(),
		ExpiryTime:    d.ValidUntil.UTC(),
		Permissions:   perms.String(),
		ContainerName: d.Resource.Container,
		BlobName:      d.Resource.Blob,
	}

	qp, err := values.SignWithSharedKey(cred)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}

	return Signature{
		Value: qp.Signature(),
		Query: qp.Encode(),
	}, nil
}
