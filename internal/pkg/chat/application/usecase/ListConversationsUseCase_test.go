package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
	repoadapter "github.com/xiaoxin-go/webchat/internal/pkg/chat/persistence/repository/adapter"
	social "github.com/xiaoxin-go/webchat/internal/repository/port"
)

func TestListConversations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := repoadapter.NewMemoryDirectoryRepository()
	soc := newFakeSocial()
	uc := NewListConversationsUseCase(dir, soc, zap.NewNop().Sugar())

	soc.addUser(1, "alice")
	soc.addUser(2, "bob")
	soc.addUser(3, "carol")
	soc.befriend(1, 2)
	soc.befriend(1, 3)
	soc.groups[9] = social.Display{Name: "team", Logo: "team.png"}

	base := time.Now().Truncate(time.Second)
	withBob, err := dir.ResolveOrCreate(ctx, 1, 2, chat.KindDirect)
	require.NoError(t, err)
	require.NoError(t, dir.Touch(ctx, withBob.ID, "hey", base, true))

	withCarol, err := dir.ResolveOrCreate(ctx, 1, 3, chat.KindDirect)
	require.NoError(t, err)
	require.NoError(t, dir.Touch(ctx, withCarol.ID, "later", base.Add(time.Minute), true))

	inTeam, err := dir.ResolveOrCreate(ctx, 1, 9, chat.KindGroup)
	require.NoError(t, err)
	require.NoError(t, dir.Touch(ctx, inTeam.ID, "standup", base.Add(2*time.Minute), false))

	got, err := uc.Execute(ctx, ListConversationsInput{UserID: 1})
	require.NoError(t, err)
	require.Len(t, got, 3)

	// most recently updated first
	require.Equal(t, "team", got[0].Name)
	require.Equal(t, "standup", got[0].LastMessage)
	require.Equal(t, 0, got[0].Unread)
	require.Equal(t, "carol", got[1].Name)
	require.Equal(t, "bob", got[2].Name)
	require.Equal(t, 1, got[2].Unread)
}

func TestListHidesBrokenCounterparts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := repoadapter.NewMemoryDirectoryRepository()
	soc := newFakeSocial()
	uc := NewListConversationsUseCase(dir, soc, zap.NewNop().Sugar())

	soc.addUser(1, "alice")
	soc.addUser(2, "bob")
	soc.befriend(1, 2)

	_, err := dir.ResolveOrCreate(ctx, 1, 2, chat.KindDirect)
	require.NoError(t, err)
	// never befriended, so this row must not surface
	_, err = dir.ResolveOrCreate(ctx, 1, 3, chat.KindDirect)
	require.NoError(t, err)
	// group that has since been disbanded
	_, err = dir.ResolveOrCreate(ctx, 1, 9, chat.KindGroup)
	require.NoError(t, err)

	got, err := uc.Execute(ctx, ListConversationsInput{UserID: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "bob", got[0].Name)
}

func TestListRemarkOverridesNickname(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := repoadapter.NewMemoryDirectoryRepository()
	soc := newFakeSocial()
	uc := NewListConversationsUseCase(dir, soc, zap.NewNop().Sugar())

	soc.addUser(1, "alice")
	soc.addUser(2, "bob")
	soc.befriend(1, 2)
	soc.friends[[2]int64{1, 2}] = "bobby"

	_, err := dir.ResolveOrCreate(ctx, 1, 2, chat.KindDirect)
	require.NoError(t, err)

	got, err := uc.Execute(ctx, ListConversationsInput{UserID: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "bobby", got[0].Name)
	require.Equal(t, "bob.png", got[0].Logo)
}

func TestListValidation(t *testing.T) {
	t.Parallel()

	uc := NewListConversationsUseCase(repoadapter.NewMemoryDirectoryRepository(), newFakeSocial(), zap.NewNop().Sugar())
	_, err := uc.Execute(context.Background(), ListConversationsInput{})
	require.ErrorIs(t, err, ErrValidation)
}
