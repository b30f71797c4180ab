package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenType — назначение токена.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Valid сообщает, является ли тип токена известным.
func (t TokenType) Valid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// TokenPayload — содержимое подписанного токена.
//
// На сервере полезная нагрузка не хранится: она существует только внутри
// закодированной строки. TokenID используется как ключ отзыва.
// Время хранится с точностью до секунды (так оно кодируется в токене).
type TokenPayload struct {
	SubjectID uuid.UUID
	Role      Role
	TokenType TokenType
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair — пара токенов, выдаваемая при входе и при обновлении.
type TokenPair struct {
	// AccessToken — короткоживущий токен для вызовов API.
	AccessToken string
	// RefreshToken — одноразовый токен для выпуска новой пары.
	RefreshToken string
	// AccessExpiresAt — момент истечения access-токена (UTC).
	AccessExpiresAt time.Time
	// RefreshExpiresAt — момент истечения refresh-токена (UTC).
	RefreshExpiresAt time.Time
}
