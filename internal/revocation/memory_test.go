package revocation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestMemoryStore_BlacklistThenCheck(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore(nil)
	ctx := context.Background()

	revoked, err := m.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	stored, err := m.Blacklist(ctx, "jti-1", "logout", time.Minute)
	require.NoError(t, err)
	require.True(t, stored)

	revoked, err = m.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	// Повторная запись — не затирает существующую.
	stored, err = m.Blacklist(ctx, "jti-1", "refresh", time.Minute)
	require.NoError(t, err)
	require.False(t, stored)
}

func TestMemoryStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	clk := &manualClock{t: time.Unix(1_700_000_000, 0)}
	m := NewMemoryStore(clk.Now)
	ctx := context.Background()

	_, err := m.Blacklist(ctx, "jti", "v", 10*time.Second)
	require.NoError(t, err)

	clk.Advance(9 * time.Second)
	revoked, err := m.IsBlacklisted(ctx, "jti")
	require.NoError(t, err)
	require.True(t, revoked)

	clk.Advance(time.Second)
	revoked, err = m.IsBlacklisted(ctx, "jti")
	require.NoError(t, err)
	require.False(t, revoked)
	require.Equal(t, 0, m.Len())

	// После истечения id снова можно записать.
	stored, err := m.Blacklist(ctx, "jti", "v", time.Minute)
	require.NoError(t, err)
	require.True(t, stored)
}

func TestMemoryStore_TTLFloor(t *testing.T) {
	t.Parallel()

	clk := &manualClock{t: time.Unix(1_700_000_000, 0)}
	m := NewMemoryStore(clk.Now)
	ctx := context.Background()

	_, err := m.Blacklist(ctx, "jti", "v", -5*time.Second)
	require.NoError(t, err)

	revoked, err := m.IsBlacklisted(ctx, "jti")
	require.NoError(t, err)
	require.True(t, revoked)

	clk.Advance(MinTTL)
	revoked, err = m.IsBlacklisted(ctx, "jti")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestMemoryStore_SweepsExpired(t *testing.T) {
	t.Parallel()

	clk := &manualClock{t: time.Unix(1_700_000_000, 0)}
	m := NewMemoryStore(clk.Now)
	ctx := context.Background()

	for i := 0; i < sweepEvery-1; i++ {
		_, err := m.Blacklist(ctx, fmt.Sprintf("old-%d", i), "v", time.Second)
		require.NoError(t, err)
	}

	clk.Advance(time.Minute)
	_, err := m.Blacklist(ctx, "fresh", "v", time.Hour)
	require.NoError(t, err)

	require.Equal(t, 1, m.Len())
}

func TestMemoryStore_ConcurrentBlacklist_ExactlyOneWinner(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore(nil)

	const workers = 64
	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		start   = make(chan struct{})
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			stored, err := m.Blacklist(context.Background(), "same-jti", "refresh", time.Minute)
			if err == nil && stored {
				winners.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	require.Equal(t, int32(1), winners.Load())
}

func TestMemoryStore_CancelledCheck_FailsClosed(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.IsBlacklisted(ctx, "jti")
	require.ErrorIs(t, err, ErrUnavailable)

	// Запись при отменённом контексте всё равно выполняется целиком.
	stored, err := m.Blacklist(ctx, "jti", "v", time.Minute)
	require.NoError(t, err)
	require.True(t, stored)
}
