package client

import (
	"context"
	"encoding/json"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/pkg/pubsub"
	"github.com/pickstudio/chat-backend/pkg/xcontext"
)

// PushEvent is one pending notification for a channel member who has not
// caught up to the message that triggered it.
type PushEvent struct {
	ChannelID string              `json:"channel_id"`
	MessageID string              `json:"message_id"`
	Member    entity.Member       `json:"member"`
	Tokens    map[string][]string `json:"tokens"`
	Preview   string              `json:"preview"`
	CreatedAt int64               `json:"created_at"`
}

// PushDispatcher hands push events to the notification pipeline. Delivery to
// the device networks happens downstream.
type PushDispatcher interface {
	Dispatch(ctx context.Context, event PushEvent) error
}

type kafkaPushDispatcher struct {
	publisher pubsub.Publisher
	topic     string
}

func NewKafkaPushDispatcher(publisher pubsub.Publisher, topic string) *kafkaPushDispatcher {
	return &kafkaPushDispatcher{publisher: publisher, topic: topic}
}

func (d *kafkaPushDispatcher) Dispatch(ctx context.Context, event PushEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = d.publisher.Publish(ctx, d.topic, &pubsub.Pack{
		Key: []byte(event.Member.Key()),
		Msg: payload,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to dispatch push for %s: %v", event.Member.Key(), err)
		return err
	}

	return nil
}
