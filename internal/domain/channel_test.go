package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/internal/model"
	"github.com/pickstudio/chat-backend/internal/repository"
	"github.com/pickstudio/chat-backend/pkg/errorx"
	"github.com/pickstudio/chat-backend/pkg/testutil"
)

func Test_channelDomain_Create(t *testing.T) {
	ctx := testutil.MockContext()
	store := testutil.NewInMemoryStore()
	userRepo := repository.NewUserRepository(store)
	channelRepo := repository.NewChannelRepository(store)
	messageRepo := repository.NewMessageRepository()
	testutil.CreateFixtureUsers(ctx, userRepo)

	channelDomain := NewChannelDomain(channelRepo, userRepo, messageRepo)

	resp, err := channelDomain.Create(ctx, model.CreateChannelRequest{
		Members: []entity.Member{testutil.Member1, testutil.Member2},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ChannelID)
	require.Equal(t, string(entity.OneOnOne), resp.ChannelType)

	resp, err = channelDomain.Create(ctx, model.CreateChannelRequest{
		Members: []entity.Member{testutil.Member1, testutil.Member2, testutil.Member3},
	})
	require.NoError(t, err)
	require.Equal(t, string(entity.Group), resp.ChannelType)
}

func Test_channelDomain_CreateWithInvalidMembers(t *testing.T) {
	ctx := testutil.MockContext()
	store := testutil.NewInMemoryStore()
	userRepo := repository.NewUserRepository(store)
	channelRepo := repository.NewChannelRepository(store)
	messageRepo := repository.NewMessageRepository()
	testutil.CreateFixtureUsers(ctx, userRepo)

	channelDomain := NewChannelDomain(channelRepo, userRepo, messageRepo)

	for _, req := range []model.CreateChannelRequest{
		{Members: []entity.Member{}},
		{Members: []entity.Member{testutil.Member1, {Service: "pick", UserID: "ghost"}}},
		{Members: []entity.Member{testutil.Member1, testutil.Member1}},
		{Members: []entity.Member{{Service: "", UserID: "user1"}}},
	} {
		_, err := channelDomain.Create(ctx, req)
		require.Error(t, err)

		errx := errorx.Error{}
		require.True(t, errors.As(err, &errx))
		require.Equal(t, errorx.InvalidMembers, errx.Code)
	}
}

func Test_channelDomain_ListWithUnreadCount(t *testing.T) {
	ctx := testutil.MockContext()
	store := testutil.NewInMemoryStore()
	userRepo := repository.NewUserRepository(store)
	channelRepo := repository.NewChannelRepository(store)
	messageRepo := repository.NewMessageRepository()
	testutil.CreateFixtureUsers(ctx, userRepo)

	channelDomain := NewChannelDomain(channelRepo, userRepo, messageRepo)
	broadcaster := NewBroadcaster(store, userRepo, channelRepo, messageRepo, nil)

	channel := entity.Channel{ChannelID: "ch1", ChannelType: entity.OneOnOne, CreatedAt: 1000}
	require.NoError(t, channelRepo.Create(ctx, channel, []entity.Member{testutil.Member1, testutil.Member2}))

	for _, date := range []int64{2000, 3000, 4000} {
		_, err := broadcaster.Broadcast(ctx, "ch1", testutil.Member1,
			"PLAINTEXT", map[string]any{"message": "hello"}, date)
		require.NoError(t, err)
	}

	listing, err := channelDomain.List(ctx, model.ListChannelsRequest{
		Service: testutil.Member2.Service, UserID: testutil.Member2.UserID,
	})
	require.NoError(t, err)
	require.Len(t, listing.Channels, 1)
	require.Equal(t, int64(3), listing.Channels[0].UnreadCount)
	require.NotNil(t, listing.Channels[0].LastMessage)
	require.Equal(t, int64(4000), listing.Channels[0].LastMessage.CreatedAt)
	require.Len(t, listing.Channels[0].Members, 2)

	// The unread boundary is inclusive, so the sender's own last message is
	// the only one counted against it.
	listing, err = channelDomain.List(ctx, model.ListChannelsRequest{
		Service: testutil.Member1.Service, UserID: testutil.Member1.UserID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), listing.Channels[0].UnreadCount)
}

func Test_channelDomain_Leave(t *testing.T) {
	ctx := testutil.MockContext()
	store := testutil.NewInMemoryStore()
	userRepo := repository.NewUserRepository(store)
	channelRepo := repository.NewChannelRepository(store)
	messageRepo := repository.NewMessageRepository()
	testutil.CreateFixtureUsers(ctx, userRepo)

	channelDomain := NewChannelDomain(channelRepo, userRepo, messageRepo)

	resp, err := channelDomain.Create(ctx, model.CreateChannelRequest{
		Members: []entity.Member{testutil.Member1, testutil.Member2},
	})
	require.NoError(t, err)

	_, err = channelDomain.Leave(ctx, model.LeaveChannelRequest{
		ChannelID: resp.ChannelID,
		Service:   testutil.Member1.Service,
		UserID:    testutil.Member1.UserID,
	})
	require.NoError(t, err)

	// Leaving twice is refused.
	_, err = channelDomain.Leave(ctx, model.LeaveChannelRequest{
		ChannelID: resp.ChannelID,
		Service:   testutil.Member1.Service,
		UserID:    testutil.Member1.UserID,
	})
	require.Error(t, err)

	listing, err := channelDomain.List(ctx, model.ListChannelsRequest{
		Service: testutil.Member1.Service, UserID: testutil.Member1.UserID,
	})
	require.NoError(t, err)
	require.Empty(t, listing.Channels)
}
