package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scholarmind/application/ports"
	"scholarmind/infrastructure/identity"
	"scholarmind/infrastructure/persistence/memory"
	pkgerrors "scholarmind/pkg/errors"
	"scholarmind/pkg/observability"
)

func newTestSessionStore(t *testing.T, kv ports.KeyValueStore) *SessionStore {
	t.Helper()

	provider := identity.NewProvider(kv, zap.NewNop())
	data := NewDataStore(kv, observability.Noop{}, zap.NewNop())
	s := NewSessionStore(kv, provider, data, zap.NewNop())
	data.ObserveIdentity(provider)
	s.ObserveIdentity()
	t.Cleanup(func() {
		s.Close()
		data.Close()
	})
	return s
}

func TestSessionStore_InitialState(t *testing.T) {
	s := newTestSessionStore(t, memory.NewStore())

	assert.False(t, s.Loading())
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsPasscodeSet())
	assert.Nil(t, s.Identity())
}

func TestSessionStore_SignupAndLogin(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	s := newTestSessionStore(t, kv)

	require.NoError(t, s.Signup(ctx, "ada@example.com", "secret1", "Ada"))
	require.True(t, s.IsAuthenticated())

	ident := s.Identity()
	require.NotNil(t, ident)
	assert.Equal(t, "ada@example.com", ident.Email)
	assert.Equal(t, "Ada", ident.DisplayName)

	t.Run("duplicate signup is rejected", func(t *testing.T) {
		err := s.Signup(ctx, "ada@example.com", "secret1", "Ada")
		require.Error(t, err)
		assert.True(t, pkgerrors.IsAuthentication(err))
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		err := s.Login(ctx, "ada@example.com", "wrong-pass")
		require.Error(t, err)
		assert.True(t, pkgerrors.IsAuthentication(err))
	})

	t.Run("correct credentials sign in", func(t *testing.T) {
		require.NoError(t, s.Login(ctx, "ada@example.com", "secret1"))
		assert.True(t, s.IsAuthenticated())
		assert.False(t, s.Loading())
	})
}

func TestSessionStore_SetupPasscode(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	s := newTestSessionStore(t, kv)

	t.Run("rejects codes that are not four digits", func(t *testing.T) {
		for _, code := range []string{"", "123", "12345", "12a4", "biometric"} {
			err := s.SetupPasscode(ctx, code)
			require.Error(t, err, "code %q", code)
			assert.True(t, pkgerrors.IsValidation(err))
		}
		assert.False(t, s.IsPasscodeSet())
	})

	t.Run("stores a valid code", func(t *testing.T) {
		require.NoError(t, s.SetupPasscode(ctx, "0412"))
		assert.True(t, s.IsPasscodeSet())

		stored, ok, err := kv.Get(ctx, PasscodeKey)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "0412", stored)
	})
}

func TestSessionStore_VerifyPasscode(t *testing.T) {
	ctx := context.Background()
	s := newTestSessionStore(t, memory.NewStore())

	t.Run("nothing unlocks an unset passcode", func(t *testing.T) {
		assert.False(t, s.VerifyPasscode("1234"))
		assert.False(t, s.VerifyPasscode(""))
	})

	t.Run("biometric sentinel always unlocks", func(t *testing.T) {
		assert.True(t, s.VerifyPasscode("biometric"))
	})

	require.NoError(t, s.SetupPasscode(ctx, "1234"))

	t.Run("matching code unlocks", func(t *testing.T) {
		assert.True(t, s.VerifyPasscode("1234"))
	})

	t.Run("wrong code does not unlock", func(t *testing.T) {
		assert.False(t, s.VerifyPasscode("4321"))
		assert.False(t, s.VerifyPasscode(""))
	})
}

func TestSessionStore_VerifyBiometric(t *testing.T) {
	ctx := context.Background()
	s := newTestSessionStore(t, memory.NewStore())

	assert.False(t, s.VerifyBiometric())

	require.NoError(t, s.Signup(ctx, "ada@example.com", "secret1", ""))
	assert.True(t, s.VerifyBiometric())
}

func TestSessionStore_PasscodeLoadedOnSignIn(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	require.NoError(t, kv.Set(ctx, PasscodeKey, "7777"))

	s := newTestSessionStore(t, kv)
	assert.False(t, s.IsPasscodeSet())

	require.NoError(t, s.Signup(ctx, "ada@example.com", "secret1", ""))
	assert.True(t, s.IsPasscodeSet())
	assert.True(t, s.VerifyPasscode("7777"))
}

func TestSessionStore_Logout(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	s := newTestSessionStore(t, kv)

	t.Run("rejected while signed out", func(t *testing.T) {
		err := s.Logout(ctx)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsAuthentication(err))
	})

	require.NoError(t, s.Signup(ctx, "ada@example.com", "secret1", ""))
	ident := s.Identity()
	require.NotNil(t, ident)

	require.NoError(t, s.SetupPasscode(ctx, "1234"))
	require.NoError(t, kv.Set(ctx, GoalsKey(ident.ID), `[{"id":"g1"}]`))

	require.NoError(t, s.Logout(ctx))

	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsPasscodeSet())

	_, ok, err := kv.Get(ctx, PasscodeKey)
	require.NoError(t, err)
	assert.False(t, ok, "passcode must be erased")

	_, ok, err = kv.Get(ctx, GoalsKey(ident.ID))
	require.NoError(t, err)
	assert.False(t, ok, "identity namespace must be erased")
}

func TestSessionStore_LogoutWaitsForPendingWrites(t *testing.T) {
	ctx := context.Background()
	kv := newGatedStore()

	provider := identity.NewProvider(kv, zap.NewNop())
	data := NewDataStore(kv, observability.Noop{}, zap.NewNop())
	sessions := NewSessionStore(kv, provider, data, zap.NewNop())
	data.ObserveIdentity(provider)
	sessions.ObserveIdentity()
	t.Cleanup(func() {
		sessions.Close()
		data.Close()
	})

	require.NoError(t, sessions.Signup(ctx, "ada@example.com", "secret1", ""))
	ident := sessions.Identity()
	require.NotNil(t, ident)

	// Park the persist worker mid-write, then log out while the goal's
	// snapshot is still in flight.
	gate := kv.hold()
	data.AddGoal(GoalInput{Title: "Pending", Subject: "Math", Date: day(t, "2026-03-10")})

	go func() {
		time.Sleep(100 * time.Millisecond)
		close(gate)
	}()

	require.NoError(t, sessions.Logout(ctx))
	data.Flush()

	_, ok, err := kv.Get(ctx, GoalsKey(ident.ID))
	require.NoError(t, err)
	assert.False(t, ok, "erased data must stay erased")
}

func TestSessionStore_LogoutThenReloginStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()

	provider := identity.NewProvider(kv, zap.NewNop())
	data := NewDataStore(kv, observability.Noop{}, zap.NewNop())
	sessions := NewSessionStore(kv, provider, data, zap.NewNop())
	data.ObserveIdentity(provider)
	sessions.ObserveIdentity()
	t.Cleanup(func() {
		sessions.Close()
		data.Close()
	})

	require.NoError(t, sessions.Signup(ctx, "ada@example.com", "secret1", ""))
	data.AddGoal(GoalInput{Title: "Before logout", Subject: "Math", Date: day(t, "2026-03-10")})
	data.Flush()
	require.Len(t, data.Goals(), 1)

	require.NoError(t, sessions.Logout(ctx))
	assert.Empty(t, data.Goals())

	// Relogin finds no trace of the erased collections
	require.NoError(t, sessions.Login(ctx, "ada@example.com", "secret1"))
	assert.Empty(t, data.Goals())
	assert.Empty(t, data.Subjects())
	assert.Empty(t, data.Sessions())
}
