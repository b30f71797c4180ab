package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/datasource-portal/internal/metrics"
	"github.com/pribylovaa/datasource-portal/internal/models"
	"github.com/pribylovaa/datasource-portal/internal/pkg/log"
)

// auditTimeout ограничивает запись события, чтобы журнал не задерживал ответ.
const auditTimeout = time.Second

// record добавляет событие в журнал аудита. Ошибка записи только логируется:
// операция, которую описывает событие, уже выполнена.
func (s *Service) record(ctx context.Context, p *models.Principal, kind models.AuthEventKind, detail string) {
	var id uuid.UUID
	if p != nil {
		id = p.ID
	}

	s.save(ctx, id, kind, detail)
}

func (s *Service) recordID(ctx context.Context, payload *models.TokenPayload, kind models.AuthEventKind, detail string) {
	s.save(ctx, payload.SubjectID, kind, detail)
}

func (s *Service) save(ctx context.Context, principalID uuid.UUID, kind models.AuthEventKind, detail string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	e := &models.AuthEvent{
		ID:          uuid.New(),
		PrincipalID: principalID,
		Kind:        kind,
		Detail:      detail,
		OccurredAt:  s.now().UTC(),
	}

	if err := s.storage.SaveAuthEvent(ctx, e); err != nil {
		log.From(ctx).Warn("audit_record_failed", "op", "service.audit.save", "kind", kind, "err", err)
	}
}

// AuthEvents возвращает последние события учётной записи.
func (s *Service) AuthEvents(ctx context.Context, id uuid.UUID, limit int) ([]models.AuthEvent, error) {
	const op = "service.audit.AuthEvents"

	if _, err := s.account(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events, err := s.storage.AuthEventsByPrincipal(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// PurgeAuthEvents удаляет события старше retention и возвращает их число.
func (s *Service) PurgeAuthEvents(ctx context.Context, retention time.Duration) (int64, error) {
	const op = "service.audit.PurgeAuthEvents"

	n, err := s.storage.DeleteAuthEventsBefore(ctx, s.now().UTC().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	metrics.AddAuditPurged(n)

	return n, nil
}
