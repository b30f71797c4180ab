package service

import (
	"context"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pribylovaa/datasource-portal/internal/hasher"
	"github.com/pribylovaa/datasource-portal/internal/models"
	"github.com/pribylovaa/datasource-portal/internal/pkg/log"
	"github.com/pribylovaa/datasource-portal/internal/pkg/redact"
	"github.com/pribylovaa/datasource-portal/internal/storage"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 64
	minPasswordLen = 8
)

// Register создаёт учётную запись с заданной ролью.
func (s *Service) Register(ctx context.Context, username, password string, role models.Role) (*models.Principal, error) {
	const op = "service.accounts.Register"

	name, err := validateUsername(username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !role.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRole)
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	p := &models.Principal{
		ID:           uuid.New(),
		Username:     name,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SavePrincipal(ctx, p); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.record(ctx, p, models.EventPrincipalCreated, string(role))
	log.From(ctx).Info("principal_created", "op", op, "principal_id", p.ID, "username", redact.Username(name), "role", role)

	return p, nil
}

// EnsureAdmin создаёт администратора username, если имя свободно.
// Существующая учётная запись не меняется: ни пароль, ни роль.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	const op = "service.accounts.EnsureAdmin"

	_, err := s.storage.PrincipalByUsername(ctx, normalizeUsername(username))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.Register(ctx, username, password, models.RoleAdmin); err != nil {
		// Параллельный старт второй реплики.
		if errors.Is(err, ErrUsernameTaken) {
			return false, nil
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

// ChangePassword меняет пароль после проверки текущего.
// Уже выданные токены остаются действительными до истечения.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error {
	const op = "service.accounts.ChangePassword"

	p, err := s.account(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !s.hasher.Verify(oldPassword, p.PasswordHash) {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if err := validatePassword(newPassword); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdatePassword(ctx, id, hash, s.now().UTC()); err != nil {
		return fmt.Errorf("%s: %w", op, notFoundAsAccount(err))
	}

	s.record(ctx, p, models.EventPasswordChanged, "")

	return nil
}

// SetRole меняет роль учётной записи.
func (s *Service) SetRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	const op = "service.accounts.SetRole"

	if !role.Valid() {
		return fmt.Errorf("%s: %w", op, ErrInvalidRole)
	}

	if err := s.storage.UpdateRole(ctx, id, role, s.now().UTC()); err != nil {
		return fmt.Errorf("%s: %w", op, notFoundAsAccount(err))
	}

	s.save(ctx, id, models.EventRoleChanged, string(role))
	log.From(ctx).Info("role_changed", "op", op, "principal_id", id, "role", role)

	return nil
}

// SetDisabled отключает или включает учётную запись. Отключённая запись
// не проходит ни вход, ни проверку access-токена, ни обновление.
func (s *Service) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	const op = "service.accounts.SetDisabled"

	if err := s.storage.SetDisabled(ctx, id, disabled, s.now().UTC()); err != nil {
		return fmt.Errorf("%s: %w", op, notFoundAsAccount(err))
	}

	detail := "enabled"
	if disabled {
		detail = "disabled"
	}
	s.save(ctx, id, models.EventDisabledChanged, detail)
	log.From(ctx).Info("principal_disabled_changed", "op", op, "principal_id", id, "disabled", disabled)

	return nil
}

func (s *Service) account(ctx context.Context, id uuid.UUID) (*models.Principal, error) {
	p, err := s.storage.PrincipalByID(ctx, id)
	if err != nil {
		return nil, notFoundAsAccount(err)
	}

	return p, nil
}

func notFoundAsAccount(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrAccountNotFound
	}

	return err
}

// validateUsername нормализует имя: обрезает пробелы, приводит к нижнему
// регистру и проверяет формат [a-z0-9._-]{3,64}.
func validateUsername(raw string) (string, error) {
	name := normalizeUsername(raw)

	if len(name) < minUsernameLen || len(name) > maxUsernameLen {
		return "", ErrInvalidUsername
	}

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
		default:
			return "", ErrInvalidUsername
		}
	}

	return name, nil
}

// validatePassword проверяет минимальные требования к паролю.
// Политика: длина >= 8 символов и <= 72 байт, хотя бы одна строчная,
// заглавная, цифра и спецсимвол.
func validatePassword(pw string) error {
	if len(pw) == 0 {
		return ErrEmptyPassword
	}

	if utf8.RuneCountInString(pw) < minPasswordLen || len(pw) > hasher.MaxPasswordBytes {
		return ErrWeakPassword
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !(hasLower && hasUpper && hasDigit && hasSpecial) {
		return ErrWeakPassword
	}

	return nil
}
