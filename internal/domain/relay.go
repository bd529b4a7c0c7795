package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/internal/model"
	"github.com/pickstudio/chat-backend/internal/repository"
	"github.com/pickstudio/chat-backend/pkg/errorx"
	"github.com/pickstudio/chat-backend/pkg/pubsub"
	"github.com/pickstudio/chat-backend/pkg/ws"
	"github.com/pickstudio/chat-backend/pkg/xcontext"
)

type RelayDomain interface {
	ServeChannel(ctx context.Context, req model.ServeChannelRequest) error
	Shutdown(ctx context.Context)
}

type relaySession struct {
	client *ws.Client
	member entity.Member
}

type relayDomain struct {
	broker      pubsub.Broker
	channelRepo repository.ChannelRepository
	broadcaster Broadcaster
	sessions    *xsync.MapOf[string, *relaySession]
}

func NewRelayDomain(
	broker pubsub.Broker,
	channelRepo repository.ChannelRepository,
	broadcaster Broadcaster,
) RelayDomain {
	return &relayDomain{
		broker:      broker,
		channelRepo: channelRepo,
		broadcaster: broadcaster,
		sessions:    xsync.NewMapOf[*relaySession](),
	}
}

// ServeChannel runs the lifetime of one websocket connection to a channel.
// Two producers feed the loop, the client's reader and the channel
// subscription, and whichever finishes first ends the connection. Teardown
// always runs exactly once: the subscription is closed and the member's read
// cursor moves to now.
func (d *relayDomain) ServeChannel(ctx context.Context, req model.ServeChannelRequest) error {
	member := entity.Member{Service: req.Service, UserID: req.UserID}
	client := xcontext.WSClient(ctx)

	channel, err := d.channelRepo.Get(ctx, req.ChannelID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to get channel %s: %v", req.ChannelID, err)
		return errorx.Unknown
	}

	if channel == nil {
		return errorx.New(errorx.NotFound, "Not found channel %s", req.ChannelID)
	}

	state, err := d.channelRepo.GetMemberState(ctx, req.ChannelID, member)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to get member state of %s: %v", member.Key(), err)
		return errorx.Unknown
	}

	if state != entity.Joined {
		return errorx.New(errorx.NotJoined, "Member %s is not in channel %s", member.Key(), req.ChannelID)
	}

	// Subscribe before anything else so no message published after this
	// connection is accepted can slip past it.
	sub, err := d.broker.Subscribe(ctx, req.ChannelID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to subscribe to %s: %v", req.ChannelID, err)
		return errorx.New(errorx.Unavailable, "Unable to subscribe to the channel")
	}

	sessionID := uuid.NewString()
	d.sessions.Store(sessionID, &relaySession{client: client, member: member})

	defer func() {
		d.sessions.Delete(sessionID)

		if err := sub.Close(); err != nil {
			xcontext.Logger(ctx).Warnf("Unable to close subscription of %s: %v", member.Key(), err)
		}

		if err := d.channelRepo.MarkAsRead(ctx, req.ChannelID, member, time.Now().UnixMilli()); err != nil {
			xcontext.Logger(ctx).Warnf("Unable to move read cursor of %s: %v", member.Key(), err)
		}
	}()

	// Everything visible so far is considered read once the member connects.
	if err := d.channelRepo.MarkAsRead(ctx, req.ChannelID, member, time.Now().UnixMilli()); err != nil {
		xcontext.Logger(ctx).Warnf("Unable to move read cursor of %s: %v", member.Key(), err)
	}

	echoToSender := xcontext.Configs(ctx).Relay.EchoToSender

	for {
		select {
		case raw, ok := <-client.R:
			if !ok {
				return nil
			}

			if err := d.handleInbound(ctx, req.ChannelID, member, raw); err != nil {
				return err
			}

		case payload, ok := <-sub.C():
			if !ok {
				return nil
			}

			if !echoToSender && isOwnMessage(payload, member) {
				continue
			}

			if err := client.Write(payload); err != nil {
				xcontext.Logger(ctx).Debugf("Unable to write to %s: %v", member.Key(), err)
				return nil
			}
		}
	}
}

// handleInbound broadcasts one client frame. A malformed frame only loses
// that frame, the connection stays up. A store or broker failure ends the
// connection so the client knows delivery is no longer guaranteed.
func (d *relayDomain) handleInbound(
	ctx context.Context, channelID string, member entity.Member, raw []byte,
) error {
	var inbound model.InboundMessage
	if err := json.Unmarshal(raw, &inbound); err != nil {
		xcontext.Logger(ctx).Debugf("Unable to unmarshal frame of %s: %v", member.Key(), err)
		return nil
	}

	sender := member
	if inbound.Service != "" && inbound.From != "" {
		sender = entity.Member{Service: inbound.Service, UserID: inbound.From}
	}

	_, err := d.broadcaster.Broadcast(ctx, channelID, sender, inbound.ViewType, inbound.View, inbound.Date)
	if err != nil {
		errx := errorx.Error{}
		if errors.As(err, &errx) {
			switch errx.Code {
			case errorx.UnknownViewType, errorx.MalformedView, errorx.BadRequest:
				xcontext.Logger(ctx).Debugf("Dropped frame of %s: %v", member.Key(), err)
				return nil
			}
		}

		return err
	}

	return nil
}

func isOwnMessage(payload []byte, member entity.Member) bool {
	var envelope model.MessageEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return false
	}

	return envelope.CreatedBy.Service == member.Service && envelope.CreatedBy.UserID == member.UserID
}

// Shutdown closes every live connection. Each serve loop then observes its
// reader channel closing and tears itself down.
func (d *relayDomain) Shutdown(ctx context.Context) {
	d.sessions.Range(func(id string, session *relaySession) bool {
		session.client.Close()
		return true
	})
}
