package accountstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreConformance runs the behaviour every backend must share. open
// must return a fresh, empty store.
func testStoreConformance(t *testing.T, open func(t *testing.T) Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get unset user", func(t *testing.T) {
		s := open(t)
		accountID, ok, err := s.Get(ctx, "user-never-selected")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, accountID)
	})

	t.Run("set then get", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Set(ctx, "user-1", "acct-a"))

		accountID, ok, err := s.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "acct-a", accountID)
	})

	t.Run("last writer wins", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Set(ctx, "user-1", "acct-a"))
		require.NoError(t, s.Set(ctx, "user-1", "acct-b"))

		accountID, _, err := s.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "acct-b", accountID)
	})

	t.Run("users are isolated", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Set(ctx, "user-1", "acct-a"))
		require.NoError(t, s.Set(ctx, "user-2", "acct-b"))

		a, _, err := s.Get(ctx, "user-1")
		require.NoError(t, err)
		b, _, err := s.Get(ctx, "user-2")
		require.NoError(t, err)
		assert.Equal(t, "acct-a", a)
		assert.Equal(t, "acct-b", b)

		_, ok, err := s.Get(ctx, "user-3")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty identifiers rejected", func(t *testing.T) {
		s := open(t)
		_, _, err := s.Get(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyUserID)
		assert.ErrorIs(t, s.Set(ctx, "", "acct-a"), ErrEmptyUserID)
		assert.ErrorIs(t, s.Set(ctx, "user-1", ""), ErrEmptyAccountID)
	})

	t.Run("ping", func(t *testing.T) {
		s := open(t)
		assert.NoError(t, s.Ping(ctx))
	})

	t.Run("concurrent users", func(t *testing.T) {
		s := open(t)
		const users = 20

		var wg sync.WaitGroup
		errs := make(chan error, users)
		for i := 0; i < users; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				user := fmt.Sprintf("user-%d", i)
				account := fmt.Sprintf("acct-%d", i)
				if err := s.Set(ctx, user, account); err != nil {
					errs <- err
					return
				}
				got, ok, err := s.Get(ctx, user)
				if err != nil {
					errs <- err
					return
				}
				if !ok || got != account {
					errs <- fmt.Errorf("%s: got %q, want %q", user, got, account)
				}
			}(i)
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			t.Error(err)
		}
	})

	t.Run("closed store is unavailable", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Close())

		_, _, err := s.Get(ctx, "user-1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnavailable), "got %v", err)
	})
}
