package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownRole — строка не соответствует ни одной известной роли.
var ErrUnknownRole = errors.New("unknown role")

// Role — роль учётной записи. Роли образуют строгий порядок:
// read_only < user < admin.
type Role string

const (
	RoleReadOnly Role = "read_only"
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
)

// Rank возвращает ранг роли. Для неизвестной роли — 0, что меньше
// ранга любой известной роли.
func (r Role) Rank() int {
	switch r {
	case RoleReadOnly:
		return 1
	case RoleUser:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

// Valid сообщает, является ли роль одной из известных.
func (r Role) Valid() bool { return r.Rank() > 0 }

// AtLeast сообщает, что ранг r не ниже ранга min.
// Неизвестная роль (с любой стороны) всегда даёт false.
func (r Role) AtLeast(min Role) bool {
	if !r.Valid() || !min.Valid() {
		return false
	}

	return r.Rank() >= min.Rank()
}

func (r Role) String() string { return string(r) }

// ParseRole разбирает роль без учёта регистра и пробелов по краям.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrUnknownRole
	}

	return r, nil
}

// Principal — учётная запись пользователя портала.
// Записи не удаляются физически: на них ссылается журнал аудита,
// вместо удаления учётная запись отключается (Disabled).
type Principal struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         Role
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
