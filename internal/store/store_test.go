package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/debate/internal/domain"
)

func backends(t *testing.T) map[string]Local {
	t.Helper()
	sq, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Local{
		BackendSQLite: sq,
		BackendMemory: NewMemory(),
	}
}

func TestSessionRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.LoadSession(ctx)
			assert.True(t, IsNotFound(err))

			want := &domain.Session{
				UserID:    "u1",
				Username:  "ada",
				Email:     "ada@example.com",
				Role:      domain.RoleAdmin,
				Token:     "tok",
				SignedIn:  time.Unix(1700000000, 0),
				ExpiresAt: time.Unix(1700003600, 0),
			}
			require.NoError(t, s.SaveSession(ctx, want))

			got, err := s.LoadSession(ctx)
			require.NoError(t, err)
			assert.Equal(t, want.UserID, got.UserID)
			assert.Equal(t, want.Token, got.Token)
			assert.Equal(t, want.Role, got.Role)
			assert.True(t, want.SignedIn.Equal(got.SignedIn))
			assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))

			want.Token = "tok2"
			want.ExpiresAt = time.Time{}
			require.NoError(t, s.SaveSession(ctx, want))
			got, err = s.LoadSession(ctx)
			require.NoError(t, err)
			assert.Equal(t, "tok2", got.Token)
			assert.True(t, got.ExpiresAt.IsZero())

			require.NoError(t, s.ClearSession(ctx))
			_, err = s.LoadSession(ctx)
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestPreferences(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.GetPref(ctx, "email")
			var nf *NotFoundError
			require.True(t, errors.As(err, &nf))
			assert.Equal(t, "email", nf.Key)

			require.NoError(t, s.SetPref(ctx, "email", "a@b.c"))
			require.NoError(t, s.SetPref(ctx, "email", "d@e.f"))
			v, err := s.GetPref(ctx, "email")
			require.NoError(t, err)
			assert.Equal(t, "d@e.f", v)
		})
	}
}

func TestClosed(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Ping(ctx))
			require.NoError(t, s.Close())

			assert.ErrorIs(t, s.Ping(ctx), ErrClosed)
			_, err := s.LoadSession(ctx)
			assert.ErrorIs(t, err, ErrClosed)
			assert.ErrorIs(t, s.SetPref(ctx, "k", "v"), ErrClosed)
		})
	}
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := OpenSQLite(dir)
	require.NoError(t, err)
	require.NoError(t, s1.SaveSession(ctx, &domain.Session{UserID: "u1", Token: "tok", SignedIn: time.Now()}))
	require.NoError(t, s1.Close())

	s2, err := OpenSQLite(dir)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(BackendMemory, "")
	require.NoError(t, err)
	_, ok := s.(*Memory)
	assert.True(t, ok)
}

func TestNotFoundErrorMessage(t *testing.T) {
	assert.Equal(t, "session not found", NewNotFoundError("session", "").Error())
	assert.Equal(t, "preference not found: k", NewNotFoundError("preference", "k").Error())
}
