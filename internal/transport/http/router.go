package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/datasource-portal/internal/gate"
	"github.com/pribylovaa/datasource-portal/internal/transport/http/apierrors"
	"github.com/pribylovaa/datasource-portal/internal/transport/http/handlers"
	"github.com/pribylovaa/datasource-portal/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(a handlers.Authority, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),
		middleware.Timeout(opts.Timeout), // общий дедлайн запроса
	)

	root.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, r, apierrors.ErrRouteNotFound)
	})
	root.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, r, apierrors.ErrMethodNotAllowed)
	})

	h := handlers.New(a)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, a)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, a)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, a middleware.Authenticator) {
	// Публичные: учётные данные передаются в теле.
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(a))

		r.With(middleware.Require(gate.ReadOnlyRequired())).Get("/auth/me", h.Me)
		r.With(middleware.Require(gate.UserRequired())).Put("/auth/password", h.ChangePassword)

		// users (admin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Require(gate.AdminRequired()))

			r.Post("/users", h.CreateUser)
			r.Patch("/users/{id}/role", h.SetRole)
			r.Post("/users/{id}/disable", h.Disable)
			r.Post("/users/{id}/enable", h.Enable)
			r.Get("/users/{id}/events", h.AuthEvents)
		})
	})
}
