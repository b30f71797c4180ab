// revocation хранит идентификаторы отозванных токенов до их естественного истечения.
//
// Запись создаётся атомарно "если отсутствует" (SET NX EX), поэтому из
// нескольких конкурентных попыток отозвать один и тот же токен успешна
// ровно одна. Любая ошибка хранилища возвращается как ErrUnavailable;
// вызывающая сторона обязана трактовать её как отказ.
package revocation

//go:generate mockgen -source=revocation.go -destination=../../mocks/mock_revocation.go -package=mocks

import (
	"context"
	"errors"
	"time"
)

// MinTTL — нижняя граница срока жизни записи.
const MinTTL = time.Second

// ErrUnavailable — хранилище недоступно (сеть, таймаут, отмена).
var ErrUnavailable = errors.New("revocation store unavailable")

// Store — контракт хранилища отозванных токенов.
type Store interface {
	// Blacklist сохраняет запись tokenID -> value на ttl, если её ещё нет.
	// stored == false означает, что токен уже был отозван ранее.
	Blacklist(ctx context.Context, tokenID, value string, ttl time.Duration) (stored bool, err error)
	// IsBlacklisted сообщает, отозван ли токен.
	IsBlacklisted(ctx context.Context, tokenID string) (bool, error)
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
	// Close освобождает ресурсы.
	Close() error
}

// clampTTL не даёт записи истечь раньше, чем через MinTTL.
func clampTTL(ttl time.Duration) time.Duration {
	if ttl < MinTTL {
		return MinTTL
	}

	return ttl
}
