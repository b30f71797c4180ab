package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pribylovaa/datasource-portal/internal/models"
)

// SaveAuthEvent добавляет событие в журнал аудита.
func (s *Storage) SaveAuthEvent(ctx context.Context, e *models.AuthEvent) error {
	const op = "storage.postgres.SaveAuthEvent"

	query := `
		INSERT INTO auth_events(id, principal_id, kind, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	principal := pgtype.UUID{Bytes: e.PrincipalID, Valid: e.PrincipalID != uuid.Nil}

	_, err := s.db.Exec(ctx, query, e.ID, principal, string(e.Kind), e.Detail, e.OccurredAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// AuthEventsByPrincipal возвращает последние limit событий учётной записи.
func (s *Storage) AuthEventsByPrincipal(ctx context.Context, id uuid.UUID, limit int) ([]models.AuthEvent, error) {
	const op = "storage.postgres.AuthEventsByPrincipal"

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, principal_id, kind, detail, occurred_at
		FROM auth_events
		WHERE principal_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, id, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.AuthEvent
	for rows.Next() {
		var (
			e         models.AuthEvent
			principal pgtype.UUID
			kind      string
		)
		if err := rows.Scan(&e.ID, &principal, &kind, &e.Detail, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if principal.Valid {
			e.PrincipalID = principal.Bytes
		}
		e.Kind = models.AuthEventKind(kind)
		e.OccurredAt = e.OccurredAt.UTC()
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// DeleteAuthEventsBefore удаляет события старше before.
func (s *Storage) DeleteAuthEventsBefore(ctx context.Context, before time.Time) (int64, error) {
	const op = "storage.postgres.DeleteAuthEventsBefore"

	tag, err := s.db.Exec(ctx, `DELETE FROM auth_events WHERE occurred_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}
