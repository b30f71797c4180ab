package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/datasource-portal/internal/config"
	"github.com/pribylovaa/datasource-portal/internal/metrics"
)

const defaultPrefix = "portal:revoked:"

// RedisStore — Store поверх Redis: SET key value NX EX ttl и EXISTS key.
type RedisStore struct {
	rdb       *redis.Client
	prefix    string
	opTimeout time.Duration
}

// NewRedisStore создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и проверяет соединение. Таймауты сокета не превышают cfg.OpTimeout.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	const op = "revocation.NewRedisStore"

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = 300 * time.Millisecond
	}
	opt.DialTimeout = opTimeout
	opt.ReadTimeout = opTimeout
	opt.WriteTimeout = opTimeout

	s := NewRedisStoreFromClient(redis.NewClient(opt), cfg.KeyPrefix, opTimeout)

	// Fail-fast на старте.
	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// NewRedisStoreFromClient оборачивает готовый клиент.
func NewRedisStoreFromClient(rdb *redis.Client, prefix string, opTimeout time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &RedisStore{rdb: rdb, prefix: prefix, opTimeout: opTimeout}
}

func (s *RedisStore) key(tokenID string) string { return s.prefix + tokenID }

// Blacklist выполняет одну команду SET NX EX: запись либо создаётся целиком
// вместе со сроком жизни, либо не создаётся вовсе.
// Отмена входящего запроса не прерывает запись; её ограничивает только opTimeout.
func (s *RedisStore) Blacklist(ctx context.Context, tokenID, value string, ttl time.Duration) (bool, error) {
	const op = "revocation.RedisStore.Blacklist"

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opTimeout)
	defer cancel()

	stored, err := s.rdb.SetNX(ctx, s.key(tokenID), value, clampTTL(ttl)).Result()
	if err != nil {
		metrics.ObserveRevocation("blacklist", "error", time.Since(start))
		return false, fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}

	if stored {
		metrics.ObserveRevocation("blacklist", "stored", time.Since(start))
	} else {
		metrics.ObserveRevocation("blacklist", "exists", time.Since(start))
	}

	return stored, nil
}

// IsBlacklisted выполняет EXISTS. Ошибка или таймаут дают ErrUnavailable.
func (s *RedisStore) IsBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	const op = "revocation.RedisStore.IsBlacklisted"

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	n, err := s.rdb.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		metrics.ObserveRevocation("check", "error", time.Since(start))
		return false, fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}

	if n > 0 {
		metrics.ObserveRevocation("check", "revoked", time.Since(start))
		return true, nil
	}

	metrics.ObserveRevocation("check", "clean", time.Since(start))
	return false, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}

	return nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

var _ Store = (*RedisStore)(nil)
