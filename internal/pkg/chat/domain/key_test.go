package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectKeyOrderIndependent(t *testing.T) {
	t.Parallel()

	require.Equal(t, DirectKey(1, 2), DirectKey(2, 1))
	require.Equal(t, "1_2", DirectKey(2, 1))
	require.Equal(t, "7_7", DirectKey(7, 7))
}

func TestConversationKey(t *testing.T) {
	t.Parallel()

	key, err := ConversationKey(KindDirect, 42, 7)
	require.NoError(t, err)
	require.Equal(t, "7_42", key)

	key, err = ConversationKey(KindGroup, 42, 9)
	require.NoError(t, err)
	require.Equal(t, "9", key)

	_, err = ConversationKey(Kind(3), 1, 2)
	require.ErrorIs(t, err, ErrInvalidKind)
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"1", "direct", "friend"} {
		kind, err := ParseKind(v)
		require.NoError(t, err)
		require.Equal(t, KindDirect, kind)
	}

	for _, v := range []string{"2", "group"} {
		kind, err := ParseKind(v)
		require.NoError(t, err)
		require.Equal(t, KindGroup, kind)
	}

	_, err := ParseKind("broadcast")
	require.ErrorIs(t, err, ErrInvalidKind)
}

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(1, KindDirect, "1_2", "  hi  ")
	require.NoError(t, err)
	require.Equal(t, "hi", msg.Body)
	require.True(t, msg.SentAt.IsZero())

	_, err = NewMessage(1, KindDirect, "1_2", "   ")
	require.ErrorIs(t, err, ErrEmptyBody)

	_, err = NewMessage(0, KindDirect, "1_2", "hi")
	require.ErrorIs(t, err, ErrBadSender)

	_, err = NewMessage(1, Kind(9), "1_2", "hi")
	require.ErrorIs(t, err, ErrInvalidKind)
}
