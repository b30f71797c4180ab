package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pribylovaa/datasource-portal/internal/gate"
	"github.com/pribylovaa/datasource-portal/internal/models"
	"github.com/pribylovaa/datasource-portal/internal/pkg/log"
	"github.com/pribylovaa/datasource-portal/internal/transport/http/apierrors"
)

// Authenticator проверяет access-токен.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.Principal, error)
}

// BearerToken извлекает токен из заголовка Authorization: Bearer <token>.
func BearerToken(r *http.Request) (string, bool) {
	const prefix = "bearer "

	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(auth[len(prefix):])
	return token, token != ""
}

// Authenticate требует валидный access-токен и кладёт учётную запись
// в контекст (gate.WithPrincipal). Любая ошибка даёт 401 без деталей.
func Authenticate(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				apierrors.WriteError(w, r, gate.ErrUnauthenticated)
				return
			}

			p, err := a.Authenticate(r.Context(), token)
			if err != nil {
				log.From(r.Context()).Info("authentication_failed", "path", r.URL.Path, "err", err)
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := gate.WithPrincipal(r.Context(), p)
			ctx = log.With(ctx, "principal_id", p.ID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require пропускает запрос, только если учётная запись из контекста
// проходит g. Ставится после Authenticate.
func Require(g gate.Guard) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := gate.Check(r.Context(), g); err != nil {
				log.From(r.Context()).Info("authorization_denied", "path", r.URL.Path, "err", err)
				apierrors.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
