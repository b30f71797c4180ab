package revocation

import (
	"context"
	"sync"
	"time"
)

// sweepEvery — как часто (в записях) MemoryStore вычищает истёкшие ключи.
const sweepEvery = 256

type memEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore — Store в памяти процесса для окружения local и тестов.
// Между репликами не разделяется.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	writes  int
	now     func() time.Time
}

// NewMemoryStore создаёт пустое хранилище. now == nil означает time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}

	return &MemoryStore{entries: make(map[string]memEntry), now: now}
}

// Blacklist не смотрит на отмену ctx: запись локальна и выполняется целиком.
func (m *MemoryStore) Blacklist(_ context.Context, tokenID, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[tokenID]; ok && now.Before(e.expiresAt) {
		return false, nil
	}

	m.entries[tokenID] = memEntry{value: value, expiresAt: now.Add(clampTTL(ttl))}

	m.writes++
	if m.writes%sweepEvery == 0 {
		for k, e := range m.entries {
			if !now.Before(e.expiresAt) {
				delete(m.entries, k)
			}
		}
	}

	return true, nil
}

func (m *MemoryStore) IsBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, ErrUnavailable
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[tokenID]
	if !ok {
		return false, nil
	}

	if !m.now().Before(e.expiresAt) {
		delete(m.entries, tokenID)
		return false, nil
	}

	return true, nil
}

// Len возвращает число хранимых записей, включая ещё не вычищенные истёкшие.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
