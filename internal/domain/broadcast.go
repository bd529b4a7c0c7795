package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pickstudio/chat-backend/internal/client"
	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/internal/model"
	"github.com/pickstudio/chat-backend/internal/repository"
	"github.com/pickstudio/chat-backend/pkg/errorx"
	"github.com/pickstudio/chat-backend/pkg/pubsub"
	"github.com/pickstudio/chat-backend/pkg/xcontext"
)

// Broadcaster turns an accepted message into a delivered one: validate the
// view, stamp identity and time, persist to history, then publish on the
// channel topic. Persistence strictly precedes publication so a message a
// subscriber sees is already queryable.
type Broadcaster interface {
	Broadcast(
		ctx context.Context, channelID string, sender entity.Member,
		viewType string, view map[string]any, date int64,
	) (*model.MessageEnvelope, error)
}

type broadcaster struct {
	broker      pubsub.Broker
	userRepo    repository.UserRepository
	channelRepo repository.ChannelRepository
	messageRepo repository.MessageRepository
	dispatcher  client.PushDispatcher
}

func NewBroadcaster(
	broker pubsub.Broker,
	userRepo repository.UserRepository,
	channelRepo repository.ChannelRepository,
	messageRepo repository.MessageRepository,
	dispatcher client.PushDispatcher,
) Broadcaster {
	return &broadcaster{
		broker:      broker,
		userRepo:    userRepo,
		channelRepo: channelRepo,
		messageRepo: messageRepo,
		dispatcher:  dispatcher,
	}
}

func (b *broadcaster) Broadcast(
	ctx context.Context, channelID string, sender entity.Member,
	viewType string, view map[string]any, date int64,
) (*model.MessageEnvelope, error) {
	if _, err := model.ParseView(viewType, view); err != nil {
		return nil, err
	}

	createdAt := date
	if createdAt == 0 {
		createdAt = time.Now().UnixMilli()
	}

	createdBy := model.UserObject{
		Service:  sender.Service,
		UserID:   sender.UserID,
		Nickname: sender.UserID,
	}

	// A sender without a profile still gets delivered, stamped with its id as
	// nickname. REST callers check the profile before reaching here.
	user, err := b.userRepo.Get(ctx, sender.Service, sender.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to get sender %s: %v", sender.Key(), err)
		return nil, errorx.Unknown
	}

	if user != nil {
		createdBy.Nickname = user.Nickname
	}

	envelope := model.MessageEnvelope{
		MessageID: uuid.NewString(),
		ChannelID: channelID,
		ViewType:  viewType,
		View:      view,
		CreatedAt: createdAt,
		CreatedBy: createdBy,
	}

	message, err := envelope.ToEntity()
	if err != nil {
		return nil, err
	}

	if err := b.messageRepo.Create(ctx, message); err != nil {
		xcontext.Logger(ctx).Errorf("Unable to persist message %s: %v", envelope.MessageID, err)
		return nil, errorx.New(errorx.Unavailable, "Unable to persist the message")
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, errorx.New(errorx.Internal, "Unable to marshal message %s: %v", envelope.MessageID, err)
	}

	if err := b.broker.Publish(ctx, channelID, payload); err != nil {
		xcontext.Logger(ctx).Errorf("Unable to publish message %s: %v", envelope.MessageID, err)
		return nil, errorx.New(errorx.Unavailable, "Unable to publish the message")
	}

	// Sending is reading. The sender's cursor moves to its own message so the
	// message never counts against it.
	if err := b.channelRepo.MarkAsRead(ctx, channelID, sender, createdAt); err != nil {
		xcontext.Logger(ctx).Warnf("Unable to move read cursor of %s: %v", sender.Key(), err)
	}

	b.dispatchPush(ctx, envelope, sender)

	return &envelope, nil
}

// dispatchPush queues a notification for every joined member whose read cursor
// is behind the new message, except the sender. Push failures never fail the
// broadcast.
func (b *broadcaster) dispatchPush(ctx context.Context, envelope model.MessageEnvelope, sender entity.Member) {
	if b.dispatcher == nil {
		return
	}

	members, err := b.channelRepo.GetMembers(ctx, envelope.ChannelID, entity.Joined)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Unable to get members of %s: %v", envelope.ChannelID, err)
		return
	}

	cursors, err := b.channelRepo.ReadCursors(ctx, envelope.ChannelID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Unable to get read cursors of %s: %v", envelope.ChannelID, err)
		return
	}

	for _, m := range members {
		if m == sender {
			continue
		}

		if cursors[m.Key()] >= envelope.CreatedAt {
			continue
		}

		tokens := map[string][]string{}
		for _, tokenType := range []entity.TokenType{entity.FCM, entity.APNS} {
			list, err := b.userRepo.GetTokens(ctx, m.Service, m.UserID, tokenType)
			if err != nil {
				xcontext.Logger(ctx).Warnf("Unable to get %s tokens of %s: %v", tokenType, m.Key(), err)
				continue
			}

			if len(list) > 0 {
				tokens[string(tokenType)] = list
			}
		}

		if len(tokens) == 0 {
			continue
		}

		event := client.PushEvent{
			ChannelID: envelope.ChannelID,
			MessageID: envelope.MessageID,
			Member:    m,
			Tokens:    tokens,
			Preview:   previewOf(envelope),
			CreatedAt: envelope.CreatedAt,
		}

		if err := b.dispatcher.Dispatch(ctx, event); err != nil {
			xcontext.Logger(ctx).Warnf("Unable to dispatch push to %s: %v", m.Key(), err)
		}
	}
}

func previewOf(envelope model.MessageEnvelope) string {
	if envelope.ViewType == string(entity.PlainText) {
		if message, ok := envelope.View["message"].(string); ok {
			return message
		}
	}

	return envelope.ViewType
}
