package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/datasource-portal/internal/config"
	"github.com/pribylovaa/datasource-portal/internal/metrics"
	"github.com/pribylovaa/datasource-portal/internal/revocation"
	"github.com/pribylovaa/datasource-portal/internal/service"
	"github.com/pribylovaa/datasource-portal/internal/storage/postgres"
	transport "github.com/pribylovaa/datasource-portal/internal/transport/http"
)

const (
	connectTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("service_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("service_stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	// Postgres.
	str, err := connectWithRetry(rootCtx, log, "postgres", connectTimeout, func(ctx context.Context) (*postgres.Storage, error) {
		return postgres.New(ctx, cfg.DB.DatabaseURL)
	})
	if err != nil {
		return err
	}
	defer str.Close()
	log.Info("postgres_connected")

	if cfg.DB.Migrate {
		if err := str.Migrate(rootCtx); err != nil {
			return err
		}
		log.Info("migrations_applied")
	}

	// Хранилище отзыва.
	revoked, err := openRevocationStore(rootCtx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = revoked.Close() }()

	// Сервис.
	srvc, err := service.New(str, revoked, cfg.Auth)
	if err != nil {
		return err
	}
	log.Info("service_initialized")

	if cfg.Bootstrap.AdminUsername != "" {
		created, err := srvc.EnsureAdmin(rootCtx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword)
		if err != nil {
			return err
		}
		log.Info("bootstrap_admin_checked", "created", created)
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	var ready atomic.Bool

	apiSrv := &http.Server{
		Addr: cfg.HTTP.Addr(),
		Handler: transport.NewRouter(srvc, transport.Options{
			Logger:   log,
			Timeout:  cfg.Timeouts.Service,
			BasePath: cfg.HTTP.BasePath,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	opsSrv := &http.Server{
		Addr:              cfg.Metrics.Addr(),
		Handler:           opsMux(&ready, str, revoked),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Фоновая очистка журнала аудита.
	startAuditJanitor(rootCtx, srvc, log, cfg.Audit.Retention, cfg.Audit.JanitorPeriod)

	g, ctx := errgroup.WithContext(rootCtx)
	g.Go(func() error { return serve(log, "http", apiSrv) })
	g.Go(func() error { return serve(log, "ops", opsSrv) })

	ready.Store(true)

	// Ожидание сигнала завершения или фатальной ошибки сервера.
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutdown_requested")
		ready.Store(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(
			apiSrv.Shutdown(shutdownCtx),
			opsSrv.Shutdown(shutdownCtx),
		)
	})

	return g.Wait()
}

// serve запускает сервер; штатная остановка через Shutdown не считается ошибкой.
func serve(log *slog.Logger, name string, srv *http.Server) error {
	log.Info(name+"_listen_start", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(name+"_serve_failed", slog.String("err", err.Error()))
		return err
	}

	return nil
}

// openRevocationStore выбирает реализацию хранилища отзыва:
// Redis, если задан URL; иначе (только env=local) хранилище в памяти процесса.
func openRevocationStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (revocation.Store, error) {
	if cfg.Redis.RedisURL == "" {
		log.Warn("revocation_store_in_memory", "env", cfg.Env)
		return revocation.NewMemoryStore(time.Now), nil
	}

	rs, err := connectWithRetry(ctx, log, "redis", connectTimeout, func(ctx context.Context) (*revocation.RedisStore, error) {
		return revocation.NewRedisStore(ctx, cfg.Redis)
	})
	if err != nil {
		return nil, err
	}
	log.Info("redis_connected")

	return rs, nil
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case config.EnvDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case config.EnvProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
