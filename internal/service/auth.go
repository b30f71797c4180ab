package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pribylovaa/datasource-portal/internal/metrics"
	"github.com/pribylovaa/datasource-portal/internal/models"
	"github.com/pribylovaa/datasource-portal/internal/pkg/log"
	"github.com/pribylovaa/datasource-portal/internal/pkg/redact"
	"github.com/pribylovaa/datasource-portal/internal/revocation"
	"github.com/pribylovaa/datasource-portal/internal/storage"
)

// Значения записей в хранилище отзыва.
const (
	revokedByRotation = "rotated"
	revokedByLogout   = "logout"
)

// Login выполняет вход по имени и паролю и выпускает пару токенов.
// Неизвестное имя и неверный пароль неразличимы: оба дают ErrInvalidCredentials,
// и в обоих случаях выполняется сравнение bcrypt.
func (s *Service) Login(ctx context.Context, username, password string) (*models.TokenPair, *models.Principal, error) {
	const op = "service.auth.Login"

	pair, p, err := s.login(ctx, username, password)
	metrics.IncAuth("login", outcome(err))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, p, nil
}

func (s *Service) login(ctx context.Context, username, password string) (*models.TokenPair, *models.Principal, error) {
	lg := log.From(ctx).With("op", "service.auth.Login", "username", redact.Username(username))

	name := normalizeUsername(username)
	if name == "" || password == "" {
		s.hasher.Verify(password, s.dummyHash)
		return nil, nil, ErrInvalidCredentials
	}

	p, err := s.storage.PrincipalByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			s.record(ctx, nil, models.EventLoginFailed, "unknown username")
			lg.Info("login_failed", "reason", "unknown_username")
			return nil, nil, ErrInvalidCredentials
		}

		return nil, nil, err
	}

	if !s.hasher.Verify(password, p.PasswordHash) {
		s.record(ctx, p, models.EventLoginFailed, "wrong password")
		lg.Info("login_failed", "reason", "wrong_password")
		return nil, nil, ErrInvalidCredentials
	}

	if p.Disabled {
		s.record(ctx, p, models.EventLoginFailed, "principal disabled")
		lg.Info("login_failed", "reason", "disabled")
		return nil, nil, ErrPrincipalDisabled
	}

	pair, err := s.issuePair(p)
	if err != nil {
		return nil, nil, err
	}

	s.record(ctx, p, models.EventLoginSucceeded, "")
	lg.Info("login_succeeded", "principal_id", p.ID, "role", p.Role)

	return pair, p, nil
}

// Authenticate проверяет access-токен и возвращает актуальную учётную запись.
// Роль берётся из хранилища, а не из токена: понижение роли действует сразу.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.Principal, error) {
	const op = "service.auth.Authenticate"

	p, err := s.authenticate(ctx, accessToken)
	metrics.IncAuth("authenticate", outcome(err))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (s *Service) authenticate(ctx context.Context, accessToken string) (*models.Principal, error) {
	payload, err := s.codec.DecodeAs(accessToken, models.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	// Fail closed: без ответа хранилища отзыва токен не принимается.
	revoked, err := s.revoked.IsBlacklisted(ctx, payload.TokenID)
	if err != nil {
		log.From(ctx).Error("revocation_check_failed",
			"op", "service.auth.Authenticate",
			"token_id", redact.TokenID(payload.TokenID),
			"err", err,
		)
		return nil, ErrStoreUnavailable
	}
	if revoked {
		return nil, ErrBlacklisted
	}

	return s.activePrincipal(ctx, payload)
}

// Refresh обменивает refresh-токен на новую пару. Потреблённый токен
// отзывается атомарно до выпуска новой пары; из конкурентных вызовов
// с одним токеном успешен ровно один, остальные получают ErrTokenAlreadyUsed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	const op = "service.auth.Refresh"

	pair, err := s.refresh(ctx, refreshToken)
	metrics.IncAuth("refresh", outcome(err))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, nil
}

func (s *Service) refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	lg := log.From(ctx).With("op", "service.auth.Refresh")

	payload, err := s.codec.DecodeAs(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	lg = lg.With("token_id", redact.TokenID(payload.TokenID))

	// Fail closed.
	revoked, err := s.revoked.IsBlacklisted(ctx, payload.TokenID)
	if err != nil {
		lg.Error("revocation_check_failed", "err", err)
		return nil, ErrStoreUnavailable
	}
	if revoked {
		s.recordID(ctx, payload, models.EventRefreshReused, "")
		lg.Warn("refresh_token_reused", "principal_id", payload.SubjectID)
		return nil, ErrTokenAlreadyUsed
	}

	p, err := s.activePrincipal(ctx, payload)
	if err != nil {
		return nil, err
	}

	// Fail closed: не удалось записать отзыв — новая пара не выпускается.
	stored, err := s.revoked.Blacklist(ctx, payload.TokenID, revokedByRotation, s.revocationTTL(payload))
	if err != nil {
		lg.Error("revocation_write_failed", "err", err)
		return nil, ErrStoreUnavailable
	}
	if !stored {
		s.recordID(ctx, payload, models.EventRefreshReused, "concurrent")
		lg.Warn("refresh_token_reused", "principal_id", payload.SubjectID, "reason", "lost_race")
		return nil, ErrTokenAlreadyUsed
	}

	pair, err := s.issuePair(p)
	if err != nil {
		return nil, err
	}

	s.record(ctx, p, models.EventTokenRefreshed, "")
	lg.Debug("token_refreshed", "principal_id", p.ID)

	return pair, nil
}

// Logout отзывает access и refresh токены.
//
// Токены должны принадлежать одному субъекту. Истёкший токен пропускается:
// принять его уже невозможно. Повторный logout той же пары не ошибка.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	const op = "service.auth.Logout"

	err := s.logout(ctx, accessToken, refreshToken)
	metrics.IncAuth("logout", outcome(err))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) logout(ctx context.Context, accessToken, refreshToken string) error {
	lg := log.From(ctx).With("op", "service.auth.Logout")

	access, err := s.decodeForLogout(accessToken, models.TokenTypeAccess)
	if err != nil {
		return err
	}

	refresh, err := s.decodeForLogout(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return err
	}

	if access != nil && refresh != nil && access.SubjectID != refresh.SubjectID {
		lg.Warn("logout_token_mismatch")
		return ErrTokenMismatch
	}

	var subject *models.TokenPayload
	for _, p := range []*models.TokenPayload{access, refresh} {
		if p == nil {
			continue
		}
		subject = p

		// Fail closed: без записи в хранилище отзыва logout не считается выполненным.
		if _, err := s.revoked.Blacklist(ctx, p.TokenID, revokedByLogout, s.revocationTTL(p)); err != nil {
			lg.Error("revocation_write_failed", "token_id", redact.TokenID(p.TokenID), "err", err)
			return ErrStoreUnavailable
		}
	}

	if subject != nil {
		s.recordID(ctx, subject, models.EventLogout, "")
		lg.Info("logout", "principal_id", subject.SubjectID)
	}

	return nil
}

// decodeForLogout декодирует токен; истёкший токен даёт (nil, nil).
func (s *Service) decodeForLogout(raw string, typ models.TokenType) (*models.TokenPayload, error) {
	p, err := s.codec.DecodeAs(raw, typ)
	if err != nil {
		if errors.Is(err, ErrExpired) {
			return nil, nil
		}

		return nil, err
	}

	return p, nil
}

// activePrincipal загружает субъект токена и проверяет, что он не отключён.
func (s *Service) activePrincipal(ctx context.Context, payload *models.TokenPayload) (*models.Principal, error) {
	p, err := s.storage.PrincipalByID(ctx, payload.SubjectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPrincipalNotFound
		}

		return nil, err
	}

	if p.Disabled {
		return nil, ErrPrincipalDisabled
	}

	return p, nil
}

// issuePair выпускает новую пару access+refresh с уникальными TokenID.
func (s *Service) issuePair(p *models.Principal) (*models.TokenPair, error) {
	access, ap, err := s.codec.Issue(p.ID, p.Role, models.TokenTypeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	refresh, rp, err := s.codec.Issue(p.ID, p.Role, models.TokenTypeRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  ap.ExpiresAt,
		RefreshExpiresAt: rp.ExpiresAt,
	}, nil
}

// revocationTTL — оставшийся срок жизни токена плюс допуск на расхождение
// часов: запись живёт, пока токен ещё может быть принят.
func (s *Service) revocationTTL(p *models.TokenPayload) time.Duration {
	ttl := p.ExpiresAt.Sub(s.now()) + s.codec.Leeway()
	if ttl < revocation.MinTTL {
		return revocation.MinTTL
	}

	return ttl
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// outcome — метка результата для метрик.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrWrongTokenType):
		return "wrong_token_type"
	case errors.Is(err, ErrBlacklisted):
		return "blacklisted"
	case errors.Is(err, ErrTokenAlreadyUsed):
		return "token_already_used"
	case errors.Is(err, ErrPrincipalDisabled):
		return "principal_disabled"
	case errors.Is(err, ErrPrincipalNotFound):
		return "principal_not_found"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrTokenMismatch):
		return "token_mismatch"
	default:
		return "error"
	}
}
