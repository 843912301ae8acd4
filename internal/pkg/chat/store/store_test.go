package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiaoxin-go/webchat/internal/infrastructure/cache/adapter"
	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
)

func newStore(t *testing.T) (*Store, *adapter.MemoryCache) {
	t.Helper()
	cache := adapter.NewMemoryAdapter()
	return New(cache, zap.NewNop().Sugar(), time.Hour), cache
}

func mustMessage(t *testing.T, sender int64, kind chat.Kind, key, body string) chat.Message {
	t.Helper()
	m, err := chat.NewMessage(sender, kind, key, body)
	require.NoError(t, err)
	return m
}

func TestAppendRecentRoundTrip(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	ctx := context.Background()
	key := chat.DirectKey(1, 2)

	stored, err := s.Append(ctx, mustMessage(t, 1, chat.KindDirect, key, "hi"))
	require.NoError(t, err)
	require.False(t, stored.SentAt.IsZero())
	require.Positive(t, stored.Seq)

	msgs, err := s.Recent(ctx, chat.KindDirect, key, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "hi", msgs[0].Body)
	require.Equal(t, stored.Seq, msgs[0].Seq)
}

func TestLogSharedAcrossParticipantOrder(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	ctx := context.Background()

	// A sends to B, B sends to A: both address the same log.
	_, err := s.Append(ctx, mustMessage(t, 1, chat.KindDirect, chat.DirectKey(1, 2), "from A"))
	require.NoError(t, err)
	_, err = s.Append(ctx, mustMessage(t, 2, chat.KindDirect, chat.DirectKey(2, 1), "from B"))
	require.NoError(t, err)

	msgs, err := s.Recent(ctx, chat.KindDirect, chat.DirectKey(2, 1), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
}

func TestRecentNewestFirstWithSeqTieBreak(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	ctx := context.Background()
	key := chat.DirectKey(1, 2)

	// Fixed clock: all messages share one second, seq must order them.
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	for _, body := range []string{"one", "two", "three"} {
		_, err := s.Append(ctx, mustMessage(t, 1, chat.KindDirect, key, body))
		require.NoError(t, err)
	}

	msgs, err := s.Recent(ctx, chat.KindDirect, key, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, "three", msgs[0].Body)
	require.Equal(t, "two", msgs[1].Body)
	require.Equal(t, "one", msgs[2].Body)
}

func TestCorruptEntrySkipped(t *testing.T) {
	t.Parallel()

	s, cache := newStore(t)
	ctx := context.Background()
	key := chat.DirectKey(1, 2)

	_, err := s.Append(ctx, mustMessage(t, 1, chat.KindDirect, key, "first"))
	require.NoError(t, err)

	// Plant a corrupt entry in the middle of the log.
	require.NoError(t, cache.Set(ctx, "chat:direct:"+key+":99999999999:500", "{not json", 0))

	_, err = s.Append(ctx, mustMessage(t, 2, chat.KindDirect, key, "second"))
	require.NoError(t, err)

	msgs, err := s.Recent(ctx, chat.KindDirect, key, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "second", msgs[0].Body)
	require.Equal(t, "first", msgs[1].Body)
}

func TestBeforePagination(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	ctx := context.Background()
	key := chat.GroupKey(9)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bodies := []string{"a", "b", "c", "d"}
	var all []chat.Message
	for i, body := range bodies {
		tick := at.Add(time.Duration(i) * time.Second)
		s.now = func() time.Time { return tick }
		m, err := s.Append(ctx, mustMessage(t, 1, chat.KindGroup, key, body))
		require.NoError(t, err)
		all = append(all, m)
	}

	page, err := s.Recent(ctx, chat.KindGroup, key, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "d", page[0].Body)
	require.Equal(t, "c", page[1].Body)

	older, err := s.Before(ctx, chat.KindGroup, key, MessageCursor(page[1]), 10)
	require.NoError(t, err)
	require.Len(t, older, 2)
	require.Equal(t, "b", older[0].Body)
	require.Equal(t, "a", older[1].Body)

	// Cursor round-trip through its string form.
	cur, err := ParseCursor(MessageCursor(all[1]).String())
	require.NoError(t, err)
	require.Equal(t, MessageCursor(all[1]), cur)
}

func TestRetentionExpiresEntries(t *testing.T) {
	t.Parallel()

	cache := adapter.NewMemoryAdapter()
	s := New(cache, zap.NewNop().Sugar(), time.Hour)
	ctx := context.Background()
	key := chat.DirectKey(3, 4)

	now := time.Now()
	cache.SetNow(func() time.Time { return now })

	_, err := s.Append(ctx, mustMessage(t, 3, chat.KindDirect, key, "ephemeral"))
	require.NoError(t, err)

	cache.SetNow(func() time.Time { return now.Add(2 * time.Hour) })

	msgs, err := s.Recent(ctx, chat.KindDirect, key, 10)
	require.NoError(t, err)
	require.Empty(t, msgs)
}
