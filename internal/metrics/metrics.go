// metrics содержит Prometheus-метрики портала.
//
// Коллекторы создаются при инициализации пакета, поэтому Inc*/Observe*
// безопасно вызывать и до Register (например, в юнит-тестах).
package metrics

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portal"

var (
	once        sync.Once
	registerErr error

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "http", Name: "requests_total",
		Help: "Total HTTP requests",
	}, []string{"route", "method", "code"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
		Help:    "HTTP request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	authOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "auth", Name: "outcomes_total",
		Help: "Authentication operations by result",
	}, []string{"op", "result"})

	revocationOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "revocation", Name: "ops_total",
		Help: "Revocation store operations by result",
	}, []string{"op", "result"})

	revocationLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "revocation", Name: "op_duration_seconds",
		Help:    "Revocation store operation latency",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
	}, []string{"op"})

	auditPurged = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "audit", Name: "purged_total",
		Help: "Audit events removed by the retention janitor",
	})
)

// Register регистрирует коллекторы в r. Регистрация выполняется один раз,
// повторные вызовы возвращают результат первого.
func Register(r prometheus.Registerer) error {
	once.Do(func() { registerErr = register(r) })
	return registerErr
}

func register(r prometheus.Registerer) error {
	const op = "metrics.Register"

	collectors := []prometheus.Collector{
		httpRequests, httpDuration,
		authOutcomes,
		revocationOps, revocationLatency,
		auditPurged,
	}

	var errs []error
	for _, c := range collectors {
		if err := r.Register(c); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func ObserveHTTP(route, method, code string, d time.Duration) {
	httpRequests.WithLabelValues(route, method, code).Inc()
	httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// IncAuth учитывает исход операции аутентификации (login, refresh, logout, authenticate).
func IncAuth(op, result string) { authOutcomes.WithLabelValues(op, result).Inc() }

func ObserveRevocation(op, result string, d time.Duration) {
	revocationOps.WithLabelValues(op, result).Inc()
	revocationLatency.WithLabelValues(op).Observe(d.Seconds())
}

func AddAuditPurged(n int64) {
	if n > 0 {
		auditPurged.Add(float64(n))
	}
}
