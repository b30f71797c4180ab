// gate реализует ролевую авторизацию поверх строгого порядка ролей
// read_only < user < admin и переносит аутентифицированную учётную
// запись через context.Context.
package gate

import (
	"context"
	"errors"

	"github.com/pribylovaa/datasource-portal/internal/models"
)

var (
	// ErrForbidden — ранг роли ниже требуемого. Транспорт: 403.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated — в контексте нет учётной записи. Транспорт: 401.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Guard проверяет аутентифицированную учётную запись.
type Guard func(p *models.Principal) error

// RoleRequired пропускает учётные записи с рангом роли не ниже min.
// Неизвестная минимальная роль не пропускает никого.
func RoleRequired(min models.Role) Guard {
	return func(p *models.Principal) error {
		if p == nil {
			return ErrUnauthenticated
		}

		if !p.Role.AtLeast(min) {
			return ErrForbidden
		}

		return nil
	}
}

func AdminRequired() Guard    { return RoleRequired(models.RoleAdmin) }
func UserRequired() Guard     { return RoleRequired(models.RoleUser) }
func ReadOnlyRequired() Guard { return RoleRequired(models.RoleReadOnly) }

// All объединяет охранников: первая ошибка прерывает проверку.
func All(guards ...Guard) Guard {
	return func(p *models.Principal) error {
		for _, g := range guards {
			if err := g(p); err != nil {
				return err
			}
		}

		return nil
	}
}

type ctxKey struct{}

// WithPrincipal кладёт учётную запись в контекст.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFrom достаёт учётную запись из контекста.
func PrincipalFrom(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(*models.Principal)
	return p, ok && p != nil
}

// Check применяет g к учётной записи из контекста.
func Check(ctx context.Context, g Guard) error {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	return g(p)
}
