package adapter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
	repository "github.com/xiaoxin-go/webchat/internal/pkg/chat/persistence/repository/port"
)

func TestResolveOrCreateConcurrent(t *testing.T) {
	t.Parallel()

	repo := NewMemoryDirectoryRepository()
	ctx := context.Background()

	const callers = 32
	ids := make([]int64, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := repo.ResolveOrCreate(ctx, 1, 2, chat.KindDirect)
			require.NoError(t, err)
			ids[i] = c.ID
		}(i)
	}
	wg.Wait()

	// every caller must observe the same single record
	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}

	convs, err := repo.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, convs, 1)
}

func TestResolveOrCreateSeparatesViewers(t *testing.T) {
	t.Parallel()

	repo := NewMemoryDirectoryRepository()
	ctx := context.Background()

	mine, err := repo.ResolveOrCreate(ctx, 1, 2, chat.KindDirect)
	require.NoError(t, err)
	theirs, err := repo.ResolveOrCreate(ctx, 2, 1, chat.KindDirect)
	require.NoError(t, err)

	// one row per participant per pair
	require.NotEqual(t, mine.ID, theirs.ID)
	require.Equal(t, mine.Key(), theirs.Key())
}

func TestTouchAndListOrder(t *testing.T) {
	t.Parallel()

	repo := NewMemoryDirectoryRepository()
	ctx := context.Background()

	first, err := repo.ResolveOrCreate(ctx, 1, 2, chat.KindDirect)
	require.NoError(t, err)
	second, err := repo.ResolveOrCreate(ctx, 1, 9, chat.KindGroup)
	require.NoError(t, err)

	base := time.Now()
	require.NoError(t, repo.Touch(ctx, first.ID, "older", base, false))
	require.NoError(t, repo.Touch(ctx, second.ID, "newer", base.Add(time.Minute), true))

	convs, err := repo.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	require.Equal(t, second.ID, convs[0].ID)
	require.Equal(t, "newer", convs[0].LastMessage)
	require.Equal(t, 1, convs[0].Unread)
	require.Equal(t, first.ID, convs[1].ID)
	require.Equal(t, 0, convs[1].Unread)

	require.NoError(t, repo.ClearUnread(ctx, second.ID))
	c, err := repo.Get(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, 0, c.Unread)
}

func TestDeleteOwnerSideOnly(t *testing.T) {
	t.Parallel()

	repo := NewMemoryDirectoryRepository()
	ctx := context.Background()

	mine, err := repo.ResolveOrCreate(ctx, 1, 2, chat.KindDirect)
	require.NoError(t, err)
	theirs, err := repo.ResolveOrCreate(ctx, 2, 1, chat.KindDirect)
	require.NoError(t, err)

	// wrong owner cannot delete
	require.ErrorIs(t, repo.Delete(ctx, mine.ID, 2), repository.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, mine.ID, 1))
	_, err = repo.Get(ctx, mine.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	// counterpart record survives
	_, err = repo.Get(ctx, theirs.ID)
	require.NoError(t, err)

	require.ErrorIs(t, repo.Delete(ctx, mine.ID, 1), repository.ErrNotFound)
}
