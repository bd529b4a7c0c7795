package domain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/internal/model"
	"github.com/pickstudio/chat-backend/internal/repository"
	"github.com/pickstudio/chat-backend/pkg/errorx"
	"github.com/pickstudio/chat-backend/pkg/testutil"
)

type messageTestEnv struct {
	ctx           context.Context
	store         *testutil.InMemoryStore
	userRepo      repository.UserRepository
	channelRepo   repository.ChannelRepository
	messageRepo   repository.MessageRepository
	dispatcher    *testutil.MockPushDispatcher
	broadcaster   Broadcaster
	messageDomain MessageDomain
}

func newMessageTestEnv(t *testing.T) *messageTestEnv {
	env := &messageTestEnv{
		ctx:        testutil.MockContext(),
		store:      testutil.NewInMemoryStore(),
		dispatcher: testutil.NewMockPushDispatcher(),
	}

	env.userRepo = repository.NewUserRepository(env.store)
	env.channelRepo = repository.NewChannelRepository(env.store)
	env.messageRepo = repository.NewMessageRepository()
	env.broadcaster = NewBroadcaster(
		env.store, env.userRepo, env.channelRepo, env.messageRepo, env.dispatcher)
	env.messageDomain = NewMessageDomain(
		env.channelRepo, env.userRepo, env.messageRepo, env.broadcaster)

	testutil.CreateFixtureUsers(env.ctx, env.userRepo)

	channel := entity.Channel{ChannelID: "ch1", ChannelType: entity.OneOnOne, CreatedAt: 1000}
	require.NoError(t, env.channelRepo.Create(env.ctx, channel,
		[]entity.Member{testutil.Member1, testutil.Member2}))

	return env
}

func Test_messageDomain_SendAndDeliver(t *testing.T) {
	env := newMessageTestEnv(t)

	sub, err := env.store.Subscribe(env.ctx, "ch1")
	require.NoError(t, err)
	defer sub.Close()

	resp, err := env.messageDomain.Send(env.ctx, model.SendMessageRequest{
		ChannelID: "ch1",
		Service:   testutil.Member1.Service,
		UserID:    testutil.Member1.UserID,
		ViewType:  "PLAINTEXT",
		View:      map[string]any{"message": "hi"},
		Date:      1700000000000,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Message.MessageID)
	require.Equal(t, testutil.User1.Nickname, resp.Message.CreatedBy.Nickname)

	// Persisted exactly once.
	stored, err := env.messageRepo.ListByChannel(env.ctx, "ch1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, resp.Message.MessageID, stored[0].MessageID)

	// Published to the channel topic with the same envelope.
	select {
	case payload := <-sub.C():
		var envelope model.MessageEnvelope
		require.NoError(t, json.Unmarshal(payload, &envelope))
		require.Equal(t, resp.Message.MessageID, envelope.MessageID)
		require.Equal(t, "hi", envelope.View["message"])
		require.Equal(t, testutil.User1.Nickname, envelope.CreatedBy.Nickname)
	case <-time.After(time.Second):
		t.Fatal("no payload published")
	}

	// The sender's cursor moved to the message date.
	lastReadAt, err := env.channelRepo.LastReadAt(env.ctx, "ch1", testutil.Member1)
	require.NoError(t, err)
	require.Equal(t, int64(1700000000000), lastReadAt)

	// The receiver is behind, so it gets a push event.
	require.NoError(t, env.userRepo.AddToken(
		env.ctx, testutil.Member2.Service, testutil.Member2.UserID, entity.FCM, "token-b"))

	_, err = env.messageDomain.Send(env.ctx, model.SendMessageRequest{
		ChannelID: "ch1",
		Service:   testutil.Member1.Service,
		UserID:    testutil.Member1.UserID,
		ViewType:  "PLAINTEXT",
		View:      map[string]any{"message": "again"},
		Date:      1700000000001,
	})
	require.NoError(t, err)

	events := env.dispatcher.Events()
	require.Len(t, events, 1)
	require.Equal(t, testutil.Member2, events[0].Member)
	require.Equal(t, []string{"token-b"}, events[0].Tokens[string(entity.FCM)])
	require.Equal(t, "again", events[0].Preview)
}

func Test_messageDomain_SendFailFast(t *testing.T) {
	env := newMessageTestEnv(t)

	testcases := []struct {
		name string
		req  model.SendMessageRequest
		code errorx.Code
	}{
		{
			name: "unknown sender",
			req: model.SendMessageRequest{
				ChannelID: "ch1", Service: "pick", UserID: "ghost",
				ViewType: "PLAINTEXT", View: map[string]any{"message": "hi"},
			},
			code: errorx.NotFound,
		},
		{
			name: "unknown channel",
			req: model.SendMessageRequest{
				ChannelID: "nowhere",
				Service:   testutil.Member1.Service, UserID: testutil.Member1.UserID,
				ViewType: "PLAINTEXT", View: map[string]any{"message": "hi"},
			},
			code: errorx.NotFound,
		},
		{
			name: "not a member",
			req: model.SendMessageRequest{
				ChannelID: "ch1",
				Service:   testutil.Member3.Service, UserID: testutil.Member3.UserID,
				ViewType: "PLAINTEXT", View: map[string]any{"message": "hi"},
			},
			code: errorx.NotJoined,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.messageDomain.Send(env.ctx, tc.req)
			require.Error(t, err)

			errx := errorx.Error{}
			require.True(t, errors.As(err, &errx))
			require.Equal(t, tc.code, errx.Code)
		})
	}

	stored, err := env.messageRepo.ListByChannel(env.ctx, "ch1")
	require.NoError(t, err)
	require.Empty(t, stored)
}

func Test_broadcaster_RejectsMalformedViewBeforeAnyEffect(t *testing.T) {
	env := newMessageTestEnv(t)

	sub, err := env.store.Subscribe(env.ctx, "ch1")
	require.NoError(t, err)
	defer sub.Close()

	_, err = env.broadcaster.Broadcast(env.ctx, "ch1", testutil.Member1,
		"PLACE", map[string]any{"place_info": map[string]any{"name": "City Hall"}}, 0)
	require.Error(t, err)

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.MalformedView, errx.Code)

	stored, err := env.messageRepo.ListByChannel(env.ctx, "ch1")
	require.NoError(t, err)
	require.Empty(t, stored)

	select {
	case payload := <-sub.C():
		t.Fatalf("unexpected publish: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func Test_messageDomain_ListAfterMarkAsRead(t *testing.T) {
	env := newMessageTestEnv(t)

	for _, date := range []int64{2000, 3000, 4000} {
		_, err := env.broadcaster.Broadcast(env.ctx, "ch1", testutil.Member1,
			"PLAINTEXT", map[string]any{"message": "hello"}, date)
		require.NoError(t, err)
	}

	listing, err := env.messageDomain.List(env.ctx, model.ListMessagesRequest{
		ChannelID: "ch1",
		Service:   testutil.Member2.Service,
		UserID:    testutil.Member2.UserID,
	})
	require.NoError(t, err)
	require.Len(t, listing.Messages, 3)
	require.Equal(t, int64(2000), listing.Messages[0].CreatedAt)
	require.Equal(t, int64(1000), listing.LastReadTime)

	// Marking as read zeroes the unread count for the member.
	now := time.Now().UnixMilli()
	require.NoError(t, env.channelRepo.MarkAsRead(env.ctx, "ch1", testutil.Member2, now))

	unread, err := env.messageRepo.CountSince(env.ctx, "ch1", now)
	require.NoError(t, err)
	require.Equal(t, int64(0), unread)
}

func Test_messageDomain_LeftMemberKeepsHistory(t *testing.T) {
	env := newMessageTestEnv(t)

	_, err := env.messageDomain.Send(env.ctx, model.SendMessageRequest{
		ChannelID: "ch1",
		Service:   testutil.Member1.Service,
		UserID:    testutil.Member1.UserID,
		ViewType:  "PLAINTEXT",
		View:      map[string]any{"message": "hello"},
		Date:      2000,
	})
	require.NoError(t, err)

	require.NoError(t, env.channelRepo.SetMemberState(env.ctx, "ch1", testutil.Member2, entity.Left))

	// The member left but can still read the history sent while joined.
	listing, err := env.messageDomain.List(env.ctx, model.ListMessagesRequest{
		ChannelID: "ch1",
		Service:   testutil.Member2.Service,
		UserID:    testutil.Member2.UserID,
	})
	require.NoError(t, err)
	require.Len(t, listing.Messages, 1)

	channels, err := env.channelRepo.ListByMember(env.ctx, testutil.Member2)
	require.NoError(t, err)
	require.Equal(t, []string{"ch1"}, channels)

	// Sending still requires a joined membership.
	_, err = env.messageDomain.Send(env.ctx, model.SendMessageRequest{
		ChannelID: "ch1",
		Service:   testutil.Member2.Service,
		UserID:    testutil.Member2.UserID,
		ViewType:  "PLAINTEXT",
		View:      map[string]any{"message": "too late"},
		Date:      3000,
	})
	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.NotJoined, errx.Code)
}

func Test_messageDomain_ListRequiresMembership(t *testing.T) {
	env := newMessageTestEnv(t)

	_, err := env.messageDomain.List(env.ctx, model.ListMessagesRequest{
		ChannelID: "ch1",
		Service:   testutil.Member3.Service,
		UserID:    testutil.Member3.UserID,
	})
	require.Error(t, err)

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.NotJoined, errx.Code)
}
