package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()

	t.Run("revoked session reads back revoked", func(t *testing.T) {
		store := session.NewMemoryRevocationStore(time.Minute)
		defer store.StopCleanup()

		require.NoError(t, store.Revoke(ctx, "sid-1", time.Now().Add(time.Hour)))

		revoked, err := store.IsRevoked(ctx, "sid-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = store.IsRevoked(ctx, "sid-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("entries lapse with the credential expiry", func(t *testing.T) {
		store := session.NewMemoryRevocationStore(time.Minute)
		defer store.StopCleanup()

		require.NoError(t, store.Revoke(ctx, "sid-1", time.Now().Add(-time.Second)))

		revoked, err := store.IsRevoked(ctx, "sid-1")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("longer expiry wins over shorter", func(t *testing.T) {
		store := session.NewMemoryRevocationStore(time.Minute)
		defer store.StopCleanup()

		later := time.Now().Add(time.Hour)
		require.NoError(t, store.Revoke(ctx, "sid-1", later))
		require.NoError(t, store.Revoke(ctx, "sid-1", time.Now().Add(time.Minute)))

		revoked, err := store.IsRevoked(ctx, "sid-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("empty session id is ignored", func(t *testing.T) {
		store := session.NewMemoryRevocationStore(time.Minute)
		defer store.StopCleanup()

		require.NoError(t, store.Revoke(ctx, "", time.Now().Add(time.Hour)))

		revoked, err := store.IsRevoked(ctx, "")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("cancelled context is honored", func(t *testing.T) {
		store := session.NewMemoryRevocationStore(time.Minute)
		defer store.StopCleanup()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		assert.Error(t, store.Revoke(cancelled, "sid-1", time.Now().Add(time.Hour)))
		_, err := store.IsRevoked(cancelled, "sid-1")
		assert.Error(t, err)
	})

	t.Run("stop cleanup is idempotent", func(t *testing.T) {
		store := session.NewMemoryRevocationStore(time.Millisecond * 10)

		assert.NoError(t, store.StopCleanup())
		assert.NoError(t, store.StopCleanup())
	})

	t.Run("concurrent revoke and lookup", func(t *testing.T) {
		store := session.NewMemoryRevocationStore(time.Minute)
		defer store.StopCleanup()

		until := time.Now().Add(time.Hour)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_ = store.Revoke(ctx, "sid-contended", until)
			}()
			go func() {
				defer wg.Done()
				_, _ = store.IsRevoked(ctx, "sid-contended")
			}()
		}
		wg.Wait()

		revoked, err := store.IsRevoked(ctx, "sid-contended")
		require.NoError(t, err)
		assert.True(t, revoked)
	})
}
