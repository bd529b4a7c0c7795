package model

import (
	"encoding/json"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/pkg/errorx"
)

// InboundMessage is the wire shape a relay client sends on its websocket.
type InboundMessage struct {
	Service  string         `json:"service"`
	From     string         `json:"from"`
	ViewType string         `json:"view_type"`
	View     map[string]any `json:"view"`
	Date     int64          `json:"date"`
}

// UserObject is the authorship stamp embedded in every delivered message.
type UserObject struct {
	Service  string `json:"service"`
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
}

// MessageEnvelope is the canonical delivered form of a message, both on the
// websocket fan-out and in history listings.
type MessageEnvelope struct {
	MessageID string         `json:"message_id"`
	ChannelID string         `json:"channel_id"`
	ViewType  string         `json:"view_type"`
	View      map[string]any `json:"view"`
	CreatedAt int64          `json:"created_at"`
	CreatedBy UserObject     `json:"created_by"`
}

// ToEntity flattens the envelope's nested documents into their stored JSON
// columns.
func (e MessageEnvelope) ToEntity() (entity.Message, error) {
	view, err := json.Marshal(e.View)
	if err != nil {
		return entity.Message{}, errorx.New(errorx.Internal, "Unable to marshal view: %v", err)
	}

	createdBy, err := json.Marshal(e.CreatedBy)
	if err != nil {
		return entity.Message{}, errorx.New(errorx.Internal, "Unable to marshal created_by: %v", err)
	}

	return entity.Message{
		MessageID: e.MessageID,
		ChannelID: e.ChannelID,
		CreatedAt: e.CreatedAt,
		ViewType:  entity.ViewType(e.ViewType),
		View:      string(view),
		CreatedBy: string(createdBy),
	}, nil
}

func EnvelopeFromEntity(m entity.Message) (MessageEnvelope, error) {
	e := MessageEnvelope{
		MessageID: m.MessageID,
		ChannelID: m.ChannelID,
		ViewType:  string(m.ViewType),
		CreatedAt: m.CreatedAt,
	}

	if err := json.Unmarshal([]byte(m.View), &e.View); err != nil {
		return MessageEnvelope{}, errorx.New(errorx.Internal, "Unable to unmarshal view of %s: %v", m.MessageID, err)
	}

	if m.CreatedBy != "" {
		if err := json.Unmarshal([]byte(m.CreatedBy), &e.CreatedBy); err != nil {
			return MessageEnvelope{}, errorx.New(errorx.Internal, "Unable to unmarshal created_by of %s: %v", m.MessageID, err)
		}
	}

	return e, nil
}
