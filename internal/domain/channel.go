package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/internal/model"
	"github.com/pickstudio/chat-backend/internal/repository"
	"github.com/pickstudio/chat-backend/pkg/enum"
	"github.com/pickstudio/chat-backend/pkg/errorx"
	"github.com/pickstudio/chat-backend/pkg/xcontext"
)

type ChannelDomain interface {
	Create(ctx context.Context, req model.CreateChannelRequest) (*model.CreateChannelResponse, error)
	List(ctx context.Context, req model.ListChannelsRequest) (*model.ListChannelsResponse, error)
	Leave(ctx context.Context, req model.LeaveChannelRequest) (*model.EmptyResponse, error)
	MarkAsRead(ctx context.Context, req model.MarkAsReadRequest) (*model.EmptyResponse, error)
}

type channelDomain struct {
	channelRepo repository.ChannelRepository
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
}

func NewChannelDomain(
	channelRepo repository.ChannelRepository,
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
) ChannelDomain {
	return &channelDomain{
		channelRepo: channelRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
	}
}

// Create registers a channel after checking that every member has a profile.
// An unknown member fails the whole request so a channel never starts with a
// half-valid roster.
func (d *channelDomain) Create(
	ctx context.Context, req model.CreateChannelRequest,
) (*model.CreateChannelResponse, error) {
	if len(req.Members) == 0 {
		return nil, errorx.New(errorx.InvalidMembers, "Require at least one member")
	}

	seen := map[string]bool{}
	for _, m := range req.Members {
		if m.Service == "" || m.UserID == "" {
			return nil, errorx.New(errorx.InvalidMembers, "Require a service and an user id for every member")
		}

		if seen[m.Key()] {
			return nil, errorx.New(errorx.InvalidMembers, "Duplicated member %s", m.Key())
		}
		seen[m.Key()] = true

		existed, err := d.userRepo.Exist(ctx, m.Service, m.UserID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Unable to check member %s: %v", m.Key(), err)
			return nil, errorx.Unknown
		}

		if !existed {
			return nil, errorx.New(errorx.InvalidMembers, "Not found member %s", m.Key())
		}
	}

	channelType, err := deriveChannelType(req.ChannelType, len(req.Members))
	if err != nil {
		return nil, err
	}

	channel := entity.Channel{
		ChannelID:   uuid.NewString(),
		ChannelType: channelType,
		CreatedAt:   time.Now().UnixMilli(),
	}

	if err := d.channelRepo.Create(ctx, channel, req.Members); err != nil {
		xcontext.Logger(ctx).Errorf("Unable to create channel: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateChannelResponse{
		ChannelID:   channel.ChannelID,
		ChannelType: string(channel.ChannelType),
		Members:     req.Members,
		CreatedAt:   channel.CreatedAt,
	}, nil
}

func deriveChannelType(requested string, memberCount int) (entity.ChannelType, error) {
	if requested == "" {
		if memberCount > 2 {
			return entity.Group, nil
		}

		return entity.OneOnOne, nil
	}

	channelType, err := enum.ToEnum[entity.ChannelType](requested)
	if err != nil {
		return "", errorx.New(errorx.BadRequest, "Invalid channel type %q", requested)
	}

	return channelType, nil
}

// List builds the member's inbox: every joined channel with its roster, last
// message, and the count of messages at or after the member's read cursor.
func (d *channelDomain) List(
	ctx context.Context, req model.ListChannelsRequest,
) (*model.ListChannelsResponse, error) {
	member := entity.Member{Service: req.Service, UserID: req.UserID}
	channelIDs, err := d.channelRepo.ListByMember(ctx, member)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to list channels of %s: %v", member.Key(), err)
		return nil, errorx.Unknown
	}

	summaries := []model.ChannelSummary{}
	for _, channelID := range channelIDs {
		summary, err := d.summarize(ctx, channelID, member)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, *summary)
	}

	return &model.ListChannelsResponse{Channels: summaries}, nil
}

func (d *channelDomain) summarize(
	ctx context.Context, channelID string, member entity.Member,
) (*model.ChannelSummary, error) {
	channel, err := d.channelRepo.Get(ctx, channelID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to get channel %s: %v", channelID, err)
		return nil, errorx.Unknown
	}

	if channel == nil {
		return nil, errorx.New(errorx.NotFound, "Not found channel %s", channelID)
	}

	members, err := d.channelRepo.GetMembers(ctx, channelID, entity.Joined)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to get members of %s: %v", channelID, err)
		return nil, errorx.Unknown
	}

	roster := []model.UserObject{}
	for _, m := range members {
		user, err := d.userRepo.Get(ctx, m.Service, m.UserID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Unable to get user %s: %v", m.Key(), err)
			return nil, errorx.Unknown
		}

		obj := model.UserObject{Service: m.Service, UserID: m.UserID, Nickname: m.UserID}
		if user != nil {
			obj.Nickname = user.Nickname
		}

		roster = append(roster, obj)
	}

	lastReadAt, err := d.channelRepo.LastReadAt(ctx, channelID, member)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to get read cursor of %s in %s: %v", member.Key(), channelID, err)
		return nil, errorx.Unknown
	}

	unread, err := d.messageRepo.CountSince(ctx, channelID, lastReadAt)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to count unread of %s: %v", channelID, err)
		return nil, errorx.Unknown
	}

	summary := &model.ChannelSummary{
		ChannelID:   channelID,
		ChannelType: string(channel.ChannelType),
		Members:     roster,
		UnreadCount: unread,
	}

	last, err := d.messageRepo.LastByChannel(ctx, channelID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to get last message of %s: %v", channelID, err)
		return nil, errorx.Unknown
	}

	if last != nil {
		envelope, err := model.EnvelopeFromEntity(*last)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Unable to convert last message of %s: %v", channelID, err)
			return nil, errorx.Unknown
		}

		summary.LastMessage = &envelope
	}

	return summary, nil
}

func (d *channelDomain) Leave(
	ctx context.Context, req model.LeaveChannelRequest,
) (*model.EmptyResponse, error) {
	member := entity.Member{Service: req.Service, UserID: req.UserID}
	state, err := d.channelRepo.GetMemberState(ctx, req.ChannelID, member)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to get member state of %s in %s: %v", member.Key(), req.ChannelID, err)
		return nil, errorx.Unknown
	}

	if state != entity.Joined {
		return nil, errorx.New(errorx.NotJoined, "Member %s is not in channel %s", member.Key(), req.ChannelID)
	}

	if err := d.channelRepo.SetMemberState(ctx, req.ChannelID, member, entity.Left); err != nil {
		xcontext.Logger(ctx).Errorf("Unable to leave channel %s: %v", req.ChannelID, err)
		return nil, errorx.Unknown
	}

	return &model.EmptyResponse{}, nil
}

func (d *channelDomain) MarkAsRead(
	ctx context.Context, req model.MarkAsReadRequest,
) (*model.EmptyResponse, error) {
	member := entity.Member{Service: req.Service, UserID: req.UserID}
	date := req.Date
	if date == 0 {
		date = time.Now().UnixMilli()
	}

	if err := d.channelRepo.MarkAsRead(ctx, req.ChannelID, member, date); err != nil {
		xcontext.Logger(ctx).Errorf("Unable to mark channel %s as read: %v", req.ChannelID, err)
		return nil, errorx.Unknown
	}

	return &model.EmptyResponse{}, nil
}
