package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/pkg/testutil"
)

func Test_channelRepository_CreateAndMembership(t *testing.T) {
	ctx := context.Background()
	repo := NewChannelRepository(testutil.NewInMemoryStore())

	channel := entity.Channel{ChannelID: "ch1", ChannelType: entity.OneOnOne, CreatedAt: 1000}
	require.NoError(t, repo.Create(ctx, channel, []entity.Member{testutil.Member1, testutil.Member2}))

	got, err := repo.Get(ctx, "ch1")
	require.NoError(t, err)
	require.Equal(t, channel, *got)

	members, err := repo.GetMembers(ctx, "ch1", entity.Joined)
	require.NoError(t, err)
	require.ElementsMatch(t, []entity.Member{testutil.Member1, testutil.Member2}, members)

	channels, err := repo.ListByMember(ctx, testutil.Member1)
	require.NoError(t, err)
	require.Equal(t, []string{"ch1"}, channels)

	// Creation seeds every member's read cursor at the creation time.
	lastReadAt, err := repo.LastReadAt(ctx, "ch1", testutil.Member1)
	require.NoError(t, err)
	require.Equal(t, int64(1000), lastReadAt)
}

func Test_channelRepository_LeaveKeepsListing(t *testing.T) {
	ctx := context.Background()
	repo := NewChannelRepository(testutil.NewInMemoryStore())

	channel := entity.Channel{ChannelID: "ch1", ChannelType: entity.Group, CreatedAt: 1000}
	require.NoError(t, repo.Create(ctx, channel,
		[]entity.Member{testutil.Member1, testutil.Member2, testutil.Member3}))

	require.NoError(t, repo.SetMemberState(ctx, "ch1", testutil.Member3, entity.Left))

	state, err := repo.GetMemberState(ctx, "ch1", testutil.Member3)
	require.NoError(t, err)
	require.Equal(t, entity.Left, state)

	// Leaving marks the membership left but keeps the channel listed, so the
	// member can still reach the history sent while joined.
	channels, err := repo.ListByMember(ctx, testutil.Member3)
	require.NoError(t, err)
	require.Equal(t, []string{"ch1"}, channels)

	members, err := repo.GetMembers(ctx, "ch1", entity.Joined)
	require.NoError(t, err)
	require.ElementsMatch(t, []entity.Member{testutil.Member1, testutil.Member2}, members)
}

func Test_channelRepository_ReadCursors(t *testing.T) {
	ctx := context.Background()
	repo := NewChannelRepository(testutil.NewInMemoryStore())

	channel := entity.Channel{ChannelID: "ch1", ChannelType: entity.OneOnOne, CreatedAt: 1000}
	require.NoError(t, repo.Create(ctx, channel, []entity.Member{testutil.Member1, testutil.Member2}))

	require.NoError(t, repo.MarkAsRead(ctx, "ch1", testutil.Member1, 5000))

	cursors, err := repo.ReadCursors(ctx, "ch1")
	require.NoError(t, err)
	require.Equal(t, int64(5000), cursors[testutil.Member1.Key()])
	require.Equal(t, int64(1000), cursors[testutil.Member2.Key()])

	// A member that never had a cursor reads from zero.
	lastReadAt, err := repo.LastReadAt(ctx, "ch1", testutil.Member3)
	require.NoError(t, err)
	require.Equal(t, int64(0), lastReadAt)
}
