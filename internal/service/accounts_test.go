package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/datasource-portal/internal/models"
	"github.com/pribylovaa/datasource-portal/internal/storage"
)

func TestRegister_OK(t *testing.T) {
	t.Parallel()

	f := newSvc(t)

	var saved *models.Principal
	f.st.EXPECT().SavePrincipal(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *models.Principal) error {
			saved = p
			return nil
		})

	p, err := f.svc.Register(context.Background(), "  Carol.Ops ", "Abcdef1!", models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, saved, p)
	require.Equal(t, "carol.ops", p.Username)
	require.Equal(t, models.RoleAdmin, p.Role)
	require.NotEqual(t, uuid.Nil, p.ID)
	require.NotEqual(t, "Abcdef1!", p.PasswordHash)
	require.True(t, f.svc.hasher.Verify("Abcdef1!", p.PasswordHash))
	require.Equal(t, f.clock.Now(), p.CreatedAt)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		password string
		role     models.Role
		want     error
	}{
		{name: "short_username", username: "ab", password: "Abcdef1!", role: models.RoleUser, want: ErrInvalidUsername},
		{name: "long_username", username: strings.Repeat("a", 65), password: "Abcdef1!", role: models.RoleUser, want: ErrInvalidUsername},
		{name: "bad_chars", username: "alice smith", password: "Abcdef1!", role: models.RoleUser, want: ErrInvalidUsername},
		{name: "unicode", username: "юзер", password: "Abcdef1!", role: models.RoleUser, want: ErrInvalidUsername},
		{name: "unknown_role", username: "alice", password: "Abcdef1!", role: "root", want: ErrInvalidRole},
		{name: "empty_password", username: "alice", password: "", role: models.RoleUser, want: ErrEmptyPassword},
		{name: "short_password", username: "alice", password: "Ab1!", role: models.RoleUser, want: ErrWeakPassword},
		{name: "no_special", username: "alice", password: "Abcdefg1", role: models.RoleUser, want: ErrWeakPassword},
		{name: "no_upper", username: "alice", password: "abcdef1!", role: models.RoleUser, want: ErrWeakPassword},
		{name: "too_long", username: "alice", password: "Aa1!" + strings.Repeat("x", 70), role: models.RoleUser, want: ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newSvc(t)
			_, err := f.svc.Register(context.Background(), tt.username, tt.password, tt.role)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	t.Parallel()

	f := newSvc(t)
	f.st.EXPECT().SavePrincipal(gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyExists)

	_, err := f.svc.Register(context.Background(), "alice", "Abcdef1!", models.RoleUser)
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	f := newSvc(t)
	p := newPrincipal(t, "alice", "Old-pass1", models.RoleUser)

	f.st.EXPECT().PrincipalByID(gomock.Any(), p.ID).Return(p, nil).Times(2)

	err := f.svc.ChangePassword(context.Background(), p.ID, "wrong", "New-pass1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	var newHash string
	f.st.EXPECT().UpdatePassword(gomock.Any(), p.ID, gomock.Any(), f.clock.Now()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, hash string, _ time.Time) error {
			newHash = hash
			return nil
		})

	require.NoError(t, f.svc.ChangePassword(context.Background(), p.ID, "Old-pass1", "New-pass1"))
	require.True(t, f.svc.hasher.Verify("New-pass1", newHash))
}

func TestChangePassword_WeakNewPassword(t *testing.T) {
	t.Parallel()

	f := newSvc(t)
	p := newPrincipal(t, "alice", "Old-pass1", models.RoleUser)
	f.st.EXPECT().PrincipalByID(gomock.Any(), p.ID).Return(p, nil)

	err := f.svc.ChangePassword(context.Background(), p.ID, "Old-pass1", "weak")
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestChangePassword_UnknownAccount(t *testing.T) {
	t.Parallel()

	f := newSvc(t)
	id := uuid.New()
	f.st.EXPECT().PrincipalByID(gomock.Any(), id).Return(nil, storage.ErrNotFound)

	err := f.svc.ChangePassword(context.Background(), id, "a", "New-pass1")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestSetRole(t *testing.T) {
	t.Parallel()

	f := newSvc(t)
	id := uuid.New()

	require.ErrorIs(t, f.svc.SetRole(context.Background(), id, "owner"), ErrInvalidRole)

	f.st.EXPECT().UpdateRole(gomock.Any(), id, models.RoleAdmin, gomock.Any()).Return(nil)
	require.NoError(t, f.svc.SetRole(context.Background(), id, models.RoleAdmin))

	f.st.EXPECT().UpdateRole(gomock.Any(), id, models.RoleUser, gomock.Any()).Return(storage.ErrNotFound)
	require.ErrorIs(t, f.svc.SetRole(context.Background(), id, models.RoleUser), ErrAccountNotFound)
}

func TestSetDisabled_BlocksExistingSession(t *testing.T) {
	t.Parallel()

	f := newSvc(t)
	p := newPrincipal(t, "alice", "correct-pw", models.RoleUser)

	f.st.EXPECT().PrincipalByUsername(gomock.Any(), "alice").Return(p, nil)
	pair, _, err := f.svc.Login(context.Background(), "alice", "correct-pw")
	require.NoError(t, err)

	f.st.EXPECT().SetDisabled(gomock.Any(), p.ID, true, gomock.Any()).Return(nil)
	require.NoError(t, f.svc.SetDisabled(context.Background(), p.ID, true))

	disabled := *p
	disabled.Disabled = true
	f.st.EXPECT().PrincipalByID(gomock.Any(), p.ID).Return(&disabled, nil).AnyTimes()

	_, err = f.svc.Authenticate(context.Background(), pair.AccessToken)
	require.ErrorIs(t, err, ErrPrincipalDisabled)
}

func TestSetDisabled_UnknownAccount(t *testing.T) {
	t.Parallel()

	f := newSvc(t)
	id := uuid.New()
	f.st.EXPECT().SetDisabled(gomock.Any(), id, false, gomock.Any()).Return(storage.ErrNotFound)

	require.ErrorIs(t, f.svc.SetDisabled(context.Background(), id, false), ErrAccountNotFound)
}

func TestAuthEvents(t *testing.T) {
	t.Parallel()

	f := newSvc(t)
	p := newPrincipal(t, "alice", "correct-pw", models.RoleUser)
	events := []models.AuthEvent{{ID: uuid.New(), PrincipalID: p.ID, Kind: models.EventLogout}}

	f.st.EXPECT().PrincipalByID(gomock.Any(), p.ID).Return(p, nil)
	f.st.EXPECT().AuthEventsByPrincipal(gomock.Any(), p.ID, 20).Return(events, nil)

	got, err := f.svc.AuthEvents(context.Background(), p.ID, 20)
	require.NoError(t, err)
	require.Equal(t, events, got)

	missing := uuid.New()
	f.st.EXPECT().PrincipalByID(gomock.Any(), missing).Return(nil, storage.ErrNotFound)
	_, err = f.svc.AuthEvents(context.Background(), missing, 20)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestPurgeAuthEvents(t *testing.T) {
	t.Parallel()

	f := newSvc(t)
	retention := 90 * 24 * time.Hour

	f.st.EXPECT().DeleteAuthEventsBefore(gomock.Any(), f.clock.Now().Add(-retention)).Return(int64(7), nil)

	n, err := f.svc.PurgeAuthEvents(context.Background(), retention)
	require.NoError(t, err)
	require.Equal(t, int64(7), n)

	boom := errors.New("boom")
	f.st.EXPECT().DeleteAuthEventsBefore(gomock.Any(), gomock.Any()).Return(int64(0), boom)
	_, err = f.svc.PurgeAuthEvents(context.Background(), retention)
	require.ErrorIs(t, err, boom)
}

func TestEnsureAdmin(t *testing.T) {
	t.Parallel()

	t.Run("creates_missing", func(t *testing.T) {
		t.Parallel()

		f := newSvc(t)
		f.st.EXPECT().PrincipalByUsername(gomock.Any(), "root").Return(nil, storage.ErrNotFound)
		f.st.EXPECT().SavePrincipal(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *models.Principal) error {
				require.Equal(t, models.RoleAdmin, p.Role)
				return nil
			})

		created, err := f.svc.EnsureAdmin(context.Background(), " Root ", "Adm1n-pass")
		require.NoError(t, err)
		require.True(t, created)
	})

	t.Run("keeps_existing", func(t *testing.T) {
		t.Parallel()

		f := newSvc(t)
		p := newPrincipal(t, "root", "whatever", models.RoleUser)
		f.st.EXPECT().PrincipalByUsername(gomock.Any(), "root").Return(p, nil)

		created, err := f.svc.EnsureAdmin(context.Background(), "root", "Adm1n-pass")
		require.NoError(t, err)
		require.False(t, created)
	})

	t.Run("lost_race", func(t *testing.T) {
		t.Parallel()

		f := newSvc(t)
		f.st.EXPECT().PrincipalByUsername(gomock.Any(), "root").Return(nil, storage.ErrNotFound)
		f.st.EXPECT().SavePrincipal(gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyExists)

		created, err := f.svc.EnsureAdmin(context.Background(), "root", "Adm1n-pass")
		require.NoError(t, err)
		require.False(t, created)
	})

	t.Run("weak_password", func(t *testing.T) {
		t.Parallel()

		f := newSvc(t)
		f.st.EXPECT().PrincipalByUsername(gomock.Any(), "root").Return(nil, storage.ErrNotFound)

		_, err := f.svc.EnsureAdmin(context.Background(), "root", "admin")
		require.ErrorIs(t, err, ErrWeakPassword)
	})
}

func TestNew_RequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := New(nil, nil, testCfg())
	require.Error(t, err)
}
