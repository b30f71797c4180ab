package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type purgeFunc func(ctx context.Context, retention time.Duration) (int64, error)

func (f purgeFunc) PurgeAuthEvents(ctx context.Context, retention time.Duration) (int64, error) {
	return f(ctx, retention)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestOpsMux_Health(t *testing.T) {
	var ready atomic.Bool
	var redisDown atomic.Bool

	ok := pingFunc(func(context.Context) error { return nil })
	redis := pingFunc(func(context.Context) error {
		if redisDown.Load() {
			return errors.New("connection refused")
		}
		return nil
	})

	h := opsMux(&ready, ok, redis)

	require.Equal(t, http.StatusOK, get(t, h, "/livez").Code)
	require.Equal(t, http.StatusServiceUnavailable, get(t, h, "/healthz").Code)

	ready.Store(true)
	require.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)

	redisDown.Store(true)
	require.Equal(t, http.StatusServiceUnavailable, get(t, h, "/healthz").Code)
	require.Equal(t, http.StatusOK, get(t, h, "/livez").Code)
}

func TestOpsMux_Metrics(t *testing.T) {
	var ready atomic.Bool
	rr := get(t, opsMux(&ready), "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestPurgeOnce(t *testing.T) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))

	var got time.Duration
	purgeOnce(context.Background(), purgeFunc(func(_ context.Context, r time.Duration) (int64, error) {
		got = r
		return 3, nil
	}), l, 48*time.Hour)
	require.Equal(t, 48*time.Hour, got)

	// Ошибка только логируется.
	purgeOnce(context.Background(), purgeFunc(func(context.Context, time.Duration) (int64, error) {
		return 0, errors.New("db down")
	}), l, time.Hour)
}

func TestConnectWithRetry(t *testing.T) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))

	calls := 0
	v, err := connectWithRetry(context.Background(), l, "test", 5*time.Second, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("not yet")
		}
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, 3, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = connectWithRetry(ctx, l, "test", 5*time.Second, func(context.Context) (int, error) {
		return 0, errors.New("down")
	})
	require.Error(t, err)
}
