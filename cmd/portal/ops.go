package main

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/datasource-portal/internal/pkg/log"
)

const healthTimeout = 2 * time.Second

// pinger — зависимость, проверяемая в /healthz.
type pinger interface {
	Ping(ctx context.Context) error
}

// opsMux собирает служебный HTTP: /livez, /healthz, /metrics.
// /healthz готов, только пока поднят флаг ready и отвечают все зависимости:
// без хранилища отзыва сервис отклоняет любые токены.
func opsMux(ready *atomic.Bool, deps ...pinger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		for _, d := range deps {
			if err := d.Ping(ctx); err != nil {
				log.From(ctx).Warn("healthz_dependency_failed", slog.String("err", err.Error()))
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// auditPurger — часть сервиса, нужная janitor'у.
type auditPurger interface {
	PurgeAuthEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// startAuditJanitor запускает фоновую задачу, которая периодически удаляет
// события аудита старше retention.
func startAuditJanitor(ctx context.Context, p auditPurger, l *slog.Logger, retention, period time.Duration) {
	if period <= 0 || retention <= 0 {
		return
	}

	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				purgeOnce(ctx, p, l, retention)
			}
		}
	}()
}

func purgeOnce(ctx context.Context, p auditPurger, l *slog.Logger, retention time.Duration) {
	n, err := p.PurgeAuthEvents(ctx, retention)
	if err != nil {
		l.Error("audit_janitor_failed", slog.String("err", err.Error()))
		return
	}

	if n > 0 {
		l.Info("audit_events_purged", slog.Int64("count", n))
	}
}
