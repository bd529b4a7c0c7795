package domain

import (
	"context"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/internal/model"
	"github.com/pickstudio/chat-backend/internal/repository"
	"github.com/pickstudio/chat-backend/pkg/errorx"
	"github.com/pickstudio/chat-backend/pkg/xcontext"
)

// recentReadLimit caps how many already-read messages a history listing
// carries in front of the unread ones.
const recentReadLimit = 300

type MessageDomain interface {
	List(ctx context.Context, req model.ListMessagesRequest) (*model.ListMessagesResponse, error)
	Send(ctx context.Context, req model.SendMessageRequest) (*model.SendMessageResponse, error)
}

type messageDomain struct {
	channelRepo repository.ChannelRepository
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	broadcaster Broadcaster
}

func NewMessageDomain(
	channelRepo repository.ChannelRepository,
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	broadcaster Broadcaster,
) MessageDomain {
	return &messageDomain{
		channelRepo: channelRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		broadcaster: broadcaster,
	}
}

// List returns the channel history in delivery order: every unread message,
// preceded by at most recentReadLimit already-read ones, along with the
// member's read cursor.
func (d *messageDomain) List(
	ctx context.Context, req model.ListMessagesRequest,
) (*model.ListMessagesResponse, error) {
	// Left members may still read the history sent while they were joined,
	// only sending requires a joined membership.
	member := entity.Member{Service: req.Service, UserID: req.UserID}
	if err := d.requireMember(ctx, req.ChannelID, member); err != nil {
		return nil, err
	}

	lastReadAt, err := d.channelRepo.LastReadAt(ctx, req.ChannelID, member)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to get read cursor of %s: %v", member.Key(), err)
		return nil, errorx.Unknown
	}

	messages, err := d.messageRepo.ListByChannel(ctx, req.ChannelID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to list messages of %s: %v", req.ChannelID, err)
		return nil, errorx.Unknown
	}

	boundary := len(messages)
	for i, m := range messages {
		if m.CreatedAt >= lastReadAt {
			boundary = i
			break
		}
	}

	from := boundary - recentReadLimit
	if from < 0 {
		from = 0
	}

	envelopes := []model.MessageEnvelope{}
	for _, m := range messages[from:] {
		envelope, err := model.EnvelopeFromEntity(m)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Unable to convert message %s: %v", m.MessageID, err)
			return nil, errorx.Unknown
		}

		envelopes = append(envelopes, envelope)
	}

	return &model.ListMessagesResponse{
		Messages:     envelopes,
		LastReadTime: lastReadAt,
	}, nil
}

// Send is the http way into a channel. Unlike the relay path it refuses
// senders without a profile.
func (d *messageDomain) Send(
	ctx context.Context, req model.SendMessageRequest,
) (*model.SendMessageResponse, error) {
	sender := entity.Member{Service: req.Service, UserID: req.UserID}
	existed, err := d.userRepo.Exist(ctx, req.Service, req.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to check sender %s: %v", sender.Key(), err)
		return nil, errorx.Unknown
	}

	if !existed {
		return nil, errorx.New(errorx.NotFound, "Not found sender %s", sender.Key())
	}

	if err := d.requireJoined(ctx, req.ChannelID, sender); err != nil {
		return nil, err
	}

	envelope, err := d.broadcaster.Broadcast(ctx, req.ChannelID, sender, req.ViewType, req.View, req.Date)
	if err != nil {
		return nil, err
	}

	return &model.SendMessageResponse{Message: *envelope}, nil
}

func (d *messageDomain) requireJoined(ctx context.Context, channelID string, member entity.Member) error {
	channel, err := d.channelRepo.Get(ctx, channelID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to get channel %s: %v", channelID, err)
		return errorx.Unknown
	}

	if channel == nil {
		return errorx.New(errorx.NotFound, "Not found channel %s", channelID)
	}

	state, err := d.channelRepo.GetMemberState(ctx, channelID, member)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to get member state of %s: %v", member.Key(), err)
		return errorx.Unknown
	}

	if state != entity.Joined {
		return errorx.New(errorx.NotJoined, "Member %s is not in channel %s", member.Key(), channelID)
	}

	return nil
}

func (d *messageDomain) requireMember(ctx context.Context, channelID string, member entity.Member) error {
	channel, err := d.channelRepo.Get(ctx, channelID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to get channel %s: %v", channelID, err)
		return errorx.Unknown
	}

	if channel == nil {
		return errorx.New(errorx.NotFound, "Not found channel %s", channelID)
	}

	state, err := d.channelRepo.GetMemberState(ctx, channelID, member)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to get member state of %s: %v", member.Key(), err)
		return errorx.Unknown
	}

	if state == "" {
		return errorx.New(errorx.NotJoined, "Member %s is not in channel %s", member.Key(), channelID)
	}

	return nil
}
