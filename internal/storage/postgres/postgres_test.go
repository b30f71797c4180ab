package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/datasource-portal/internal/models"
	"github.com/pribylovaa/datasource-portal/internal/storage"
)

// Интеграционные тесты пакета postgres:
// - поднимают реальный PostgreSQL через testcontainers-go (postgres:16-alpine);
// - применяют встроенные миграции goose через Storage.Migrate;
// - проверяют уникальность username, ErrNotFound и журнал аудита.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

func startPostgres(t *testing.T) *Storage {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	st, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	require.NoError(t, st.Migrate(ctx))

	return st
}

func newPrincipal(username string, role models.Role) *models.Principal {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Principal{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "hash",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestIntegration_SavePrincipal_And_Lookup_OK(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	p := newPrincipal("alice", models.RoleUser)
	require.NoError(t, st.SavePrincipal(ctx, p))

	byName, err := st.PrincipalByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, p.ID, byName.ID)
	require.Equal(t, models.RoleUser, byName.Role)
	require.False(t, byName.Disabled)
	require.WithinDuration(t, p.CreatedAt, byName.CreatedAt, time.Second)

	byID, err := st.PrincipalByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)
}

func TestIntegration_SavePrincipal_DuplicateUsername(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	require.NoError(t, st.SavePrincipal(ctx, newPrincipal("bob", models.RoleUser)))

	err := st.SavePrincipal(ctx, newPrincipal("bob", models.RoleAdmin))
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestIntegration_Lookup_NotFound(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	_, err := st.PrincipalByUsername(ctx, "nobody")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.PrincipalByID(ctx, uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.ErrorIs(t, st.UpdateRole(ctx, uuid.New(), models.RoleAdmin, time.Now()), storage.ErrNotFound)
}

func TestIntegration_Updates(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	p := newPrincipal("carol", models.RoleReadOnly)
	require.NoError(t, st.SavePrincipal(ctx, p))

	later := p.UpdatedAt.Add(time.Minute)
	require.NoError(t, st.UpdatePassword(ctx, p.ID, "new-hash", later))
	require.NoError(t, st.UpdateRole(ctx, p.ID, models.RoleAdmin, later))
	require.NoError(t, st.SetDisabled(ctx, p.ID, true, later))

	got, err := st.PrincipalByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)
	require.Equal(t, models.RoleAdmin, got.Role)
	require.True(t, got.Disabled)
	require.WithinDuration(t, later, got.UpdatedAt, time.Second)
}

func TestIntegration_AuditEvents_SaveListPurge(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	p := newPrincipal("dave", models.RoleUser)
	require.NoError(t, st.SavePrincipal(ctx, p))

	old := time.Now().UTC().Add(-48 * time.Hour)
	recent := time.Now().UTC()

	for _, e := range []models.AuthEvent{
		{ID: uuid.New(), PrincipalID: p.ID, Kind: models.EventLoginSucceeded, OccurredAt: old},
		{ID: uuid.New(), PrincipalID: p.ID, Kind: models.EventLogout, OccurredAt: recent},
		{ID: uuid.New(), Kind: models.EventLoginFailed, Detail: "unknown username", OccurredAt: recent},
	} {
		e := e
		require.NoError(t, st.SaveAuthEvent(ctx, &e))
	}

	events, err := st.AuthEventsByPrincipal(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, models.EventLogout, events[0].Kind)

	n, err := st.DeleteAuthEventsBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	events, err = st.AuthEventsByPrincipal(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestIntegration_Migrate_Idempotent(t *testing.T) {
	st := startPostgres(t)

	require.NoError(t, st.Migrate(context.Background()))
}

func TestIntegration_ContextCanceled(t *testing.T) {
	st := startPostgres(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.PrincipalByID(ctx, uuid.New())
	require.ErrorIs(t, err, context.Canceled)
}

// lazyStorage возвращает Storage, пул которого ещё не открывал соединений.
func lazyStorage(t *testing.T) *Storage {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), "postgres://u:p@127.0.0.1:1/db?sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return &Storage{db: pool}
}

func TestMigrate_UsesEmbeddedRoot(t *testing.T) {
	st := lazyStorage(t)

	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, st.Migrate(context.Background()))
	require.Equal(t, ".", gotDir)
}

func TestMigrate_WrapsError(t *testing.T) {
	st := lazyStorage(t)

	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	boom := errors.New("boom")
	gooseUp = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error { return boom }

	err := st.Migrate(context.Background())
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "storage.postgres.Migrate")
}
