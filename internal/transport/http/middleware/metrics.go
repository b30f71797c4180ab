package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/datasource-portal/internal/metrics"
)

// Metrics учитывает запросы по шаблону маршрута chi, а не по сырому пути,
// чтобы {id} не раздувал кардинальность меток.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			start := time.Now()

			next.ServeHTTP(sw, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					route = p
				}
			}

			metrics.ObserveHTTP(route, r.Method, strconv.Itoa(sw.Status()), time.Since(start))
		})
	}
}
