package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/adil-khursheed/mysterymessage/internal/model"
	"github.com/adil-khursheed/mysterymessage/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createAccount(t *testing.T, s *Store, username string) model.Account {
	t.Helper()
	a, err := s.CreateAccount(context.Background(), model.Account{
		Username:     username,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return a
}

func TestCreateAccount(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	a := createAccount(t, s, "  alice ")
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "alice", a.Username)
	assert.False(t, a.IsVerified)
	assert.NotZero(t, a.CreatedAt)

	// Usernames are unique regardless of case.
	_, err := s.CreateAccount(ctx, model.Account{Username: "ALICE"})
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = s.CreateAccount(ctx, model.Account{Username: "   "})
	assert.EqualError(t, err, "username_required")

	got, err := s.GetAccountByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = s.GetAccountByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMarkVerified(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	a, err := s.CreateAccount(ctx, model.Account{
		Username:         "bob",
		VerifyCode:       "123456",
		VerifyCodeExpiry: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, s.MarkVerified(ctx, a.ID))

	got, err := s.GetAccountByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Empty(t, got.VerifyCode)

	assert.ErrorIs(t, s.MarkVerified(ctx, "missing"), store.ErrNotFound)
}

func TestListMessages_OrderedNewestFirst(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	alice := createAccount(t, s, "alice")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	// Insert out of chronological order.
	stamps := []time.Time{base.Add(2 * time.Minute), base, base.Add(5 * time.Minute)}
	i := 0
	s.now = func() time.Time {
		t := stamps[i]
		i++
		return t
	}
	for _, c := range []string{"second", "first", "third"} {
		_, err := s.AddMessage(ctx, alice.ID, c)
		require.NoError(t, err)
	}

	msgs, err := s.ListMessages(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "third", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
	assert.Equal(t, "first", msgs[2].Content)
}

func TestListMessages_EmptyAndUnknown(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	alice := createAccount(t, s, "alice")

	msgs, err := s.ListMessages(ctx, alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)

	_, err = s.ListMessages(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.AddMessage(ctx, "ghost", "hello there")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteMessage_OwnershipScoped(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	alice := createAccount(t, s, "alice")
	bob := createAccount(t, s, "bob")

	m1, err := s.AddMessage(ctx, alice.ID, "hi")
	require.NoError(t, err)
	m2, err := s.AddMessage(ctx, alice.ID, "bye")
	require.NoError(t, err)

	// Another account cannot remove it, and learns nothing beyond not found.
	assert.ErrorIs(t, s.DeleteMessage(ctx, bob.ID, m1.ID), store.ErrNotFound)
	msgs, err := s.ListMessages(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	require.NoError(t, s.DeleteMessage(ctx, alice.ID, m1.ID))
	msgs, err = s.ListMessages(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, m2.ID, msgs[0].ID)

	assert.ErrorIs(t, s.DeleteMessage(ctx, alice.ID, m1.ID), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteMessage(ctx, alice.ID, "never-existed"), store.ErrNotFound)
}

func TestDeleteMessage_ConcurrentAtMostOnce(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	alice := createAccount(t, s, "alice")
	m, err := s.AddMessage(ctx, alice.ID, "racy")
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.DeleteMessage(ctx, alice.ID, m.ID)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, store.ErrNotFound)
	}
	assert.Equal(t, 1, succeeded)
}
