package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pribylovaa/datasource-portal/internal/models"
	"github.com/pribylovaa/datasource-portal/internal/storage"
)

const principalColumns = `id, username, password_hash, role, disabled, created_at, updated_at`

// SavePrincipal создаёт новую учётную запись.
func (s *Storage) SavePrincipal(ctx context.Context, p *models.Principal) error {
	const op = "storage.postgres.SavePrincipal"

	query := `
		INSERT INTO principals(id, username, password_hash, role, disabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.Exec(ctx, query,
		p.ID,
		p.Username,
		p.PasswordHash,
		string(p.Role),
		p.Disabled,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PrincipalByUsername находит учётную запись по имени.
func (s *Storage) PrincipalByUsername(ctx context.Context, username string) (*models.Principal, error) {
	const op = "storage.postgres.PrincipalByUsername"

	query := `SELECT ` + principalColumns + ` FROM principals WHERE username = $1`

	p, err := scanPrincipal(s.db.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// PrincipalByID находит учётную запись по ID.
func (s *Storage) PrincipalByID(ctx context.Context, id uuid.UUID) (*models.Principal, error) {
	const op = "storage.postgres.PrincipalByID"

	query := `SELECT ` + principalColumns + ` FROM principals WHERE id = $1`

	p, err := scanPrincipal(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// UpdatePassword заменяет хэш пароля.
func (s *Storage) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, at time.Time) error {
	const op = "storage.postgres.UpdatePassword"

	return s.update(ctx, op, `UPDATE principals SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, hash, at)
}

// UpdateRole меняет роль.
func (s *Storage) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role, at time.Time) error {
	const op = "storage.postgres.UpdateRole"

	return s.update(ctx, op, `UPDATE principals SET role = $2, updated_at = $3 WHERE id = $1`, id, string(role), at)
}

// SetDisabled блокирует или разблокирует учётную запись.
func (s *Storage) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool, at time.Time) error {
	const op = "storage.postgres.SetDisabled"

	return s.update(ctx, op, `UPDATE principals SET disabled = $2, updated_at = $3 WHERE id = $1`, id, disabled, at)
}

// update выполняет UPDATE одной строки; 0 затронутых строк — ErrNotFound.
func (s *Storage) update(ctx context.Context, op, query string, args ...any) error {
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func scanPrincipal(row pgx.Row) (*models.Principal, error) {
	var (
		p    models.Principal
		role string
	)

	err := row.Scan(
		&p.ID,
		&p.Username,
		&p.PasswordHash,
		&role,
		&p.Disabled,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, err
	}

	p.Role = models.Role(role)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()

	return &p, nil
}
