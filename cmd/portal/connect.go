package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// connectWithRetry повторяет open с экспоненциальной задержкой,
// пока не истечёт maxElapsed или не отменится ctx.
func connectWithRetry[T any](ctx context.Context, log *slog.Logger, name string, maxElapsed time.Duration, open func(context.Context) (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = maxElapsed

	var (
		res     T
		attempt int
	)

	operation := func() error {
		attempt++

		attemptCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		v, err := open(attemptCtx)
		if err != nil {
			return err
		}

		res = v
		return nil
	}

	notify := func(err error, next time.Duration) {
		log.Warn(name+"_connect_retry",
			slog.Int("attempt", attempt),
			slog.Duration("next", next),
			slog.String("err", err.Error()),
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		var zero T
		return zero, fmt.Errorf("%s connect: %w", name, err)
	}

	return res, nil
}
