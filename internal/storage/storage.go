package storage

//go:generate mockgen -source=storage.go -destination=../../mocks/mock_storage.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/datasource-portal/internal/models"
)

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (username).
	ErrAlreadyExists = errors.New("already exists")
)

// PrincipalStorage выполняет операции над учётными записями.
type PrincipalStorage interface {
	// SavePrincipal создаёт новую учётную запись.
	SavePrincipal(ctx context.Context, p *models.Principal) error
	// PrincipalByUsername находит учётную запись по нормализованному имени.
	PrincipalByUsername(ctx context.Context, username string) (*models.Principal, error)
	// PrincipalByID находит учётную запись по ID.
	PrincipalByID(ctx context.Context, id uuid.UUID) (*models.Principal, error)
	// UpdatePassword заменяет хэш пароля.
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, at time.Time) error
	// UpdateRole меняет роль.
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role, at time.Time) error
	// SetDisabled блокирует или разблокирует учётную запись.
	SetDisabled(ctx context.Context, id uuid.UUID, disabled bool, at time.Time) error
}

// AuditStorage хранит журнал событий аутентификации.
type AuditStorage interface {
	// SaveAuthEvent добавляет событие в журнал.
	SaveAuthEvent(ctx context.Context, e *models.AuthEvent) error
	// AuthEventsByPrincipal возвращает последние события учётной записи, новые первыми.
	AuthEventsByPrincipal(ctx context.Context, id uuid.UUID, limit int) ([]models.AuthEvent, error)
	// DeleteAuthEventsBefore удаляет события старше before и возвращает их число.
	DeleteAuthEventsBefore(ctx context.Context, before time.Time) (int64, error)
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	PrincipalStorage
	AuditStorage
	Ping(ctx context.Context) error
	Close()
}
