package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/svc/auth"
)

func newTestService(t *testing.T) *auth.Service {
	t.Helper()
	return auth.NewService(
		auth.Config{SessionTTL: time.Hour},
		auth.NewMemoryUserRepository(),
		auth.NewMemorySessionStore(),
	)
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates user with hashed password", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t)
		user, err := svc.Register(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "bob@dylan.com", user.Email)
		assert.NotEqual(t, "toto1234!", user.PasswordHash)
	})

	t.Run("missing email", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t)
		_, err := svc.Register(context.Background(), "", "toto1234!")
		assert.ErrorIs(t, err, auth.ErrMissingEmail)
	})

	t.Run("missing password", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t)
		_, err := svc.Register(context.Background(), "bob@dylan.com", "")
		assert.ErrorIs(t, err, auth.ErrMissingPassword)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t)
		_, err := svc.Register(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), "bob@dylan.com", "other")
		assert.ErrorIs(t, err, auth.ErrEmailTaken)
	})
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials issue a token", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t)
		user, err := svc.Register(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)

		token, err := svc.Login(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		userID, err := svc.Authenticate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t)
		_, err := svc.Register(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)

		_, err = svc.Login(context.Background(), "bob@dylan.com", "nope")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t)
		_, err := svc.Login(context.Background(), "nobody@dylan.com", "toto1234!")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("separate logins get distinct tokens", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t)
		_, err := svc.Register(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)

		t1, err := svc.Login(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)
		t2, err := svc.Login(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)
		assert.NotEqual(t, t1, t2)
	})
}

func TestService_Logout(t *testing.T) {
	t.Parallel()

	t.Run("invalidates the token", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t)
		_, err := svc.Register(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)

		token, err := svc.Login(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(context.Background(), token))

		_, err = svc.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t)
		err := svc.Logout(context.Background(), "no-such-token")
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})
}

func TestService_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(t)
		_, err := svc.Authenticate(context.Background(), "")
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("expired session", func(t *testing.T) {
		t.Parallel()

		sessions := auth.NewMemorySessionStore()
		svc := auth.NewService(
			auth.Config{SessionTTL: time.Millisecond},
			auth.NewMemoryUserRepository(),
			sessions,
		)
		_, err := svc.Register(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)

		token, err := svc.Login(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		_, err = svc.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})
}

func TestMemorySessionStore(t *testing.T) {
	t.Parallel()

	store := auth.NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tok", "user-1", time.Hour))

	userID, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	require.NoError(t, store.Delete(ctx, "tok"))

	_, err = store.Get(ctx, "tok")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}
