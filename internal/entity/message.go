package entity

import (
	"github.com/pickstudio/chat-backend/pkg/enum"
)

type ViewType string

var (
	PlainText = enum.New(ViewType("PLAINTEXT"))
	Place     = enum.New(ViewType("PLACE"))
	Media     = enum.New(ViewType("MEDIA"))
)

// Message is the persisted form of a delivered message. View and CreatedBy are
// stored as JSON documents so every history driver keeps the same shape.
type Message struct {
	MessageID string   `gorm:"primaryKey" json:"message_id" db:"message_id" dynamodbav:"message_id"`
	ChannelID string   `gorm:"index:idx_messages_channel_created,priority:1" json:"channel_id" db:"channel_id" dynamodbav:"channel_id"`
	CreatedAt int64    `gorm:"index:idx_messages_channel_created,priority:2" json:"created_at" db:"created_at" dynamodbav:"created_at"`
	ViewType  ViewType `json:"view_type" db:"view_type" dynamodbav:"view_type"`
	View      string   `gorm:"type:text" json:"view" db:"view" dynamodbav:"view"`
	CreatedBy string   `gorm:"type:text" json:"created_by" db:"created_by" dynamodbav:"created_by"`
}

func (Message) TableName() string {
	return "messages"
}
