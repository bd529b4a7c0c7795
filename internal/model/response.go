package model

import "github.com/pickstudio/chat-backend/internal/entity"

type EmptyResponse struct{}

type UserResponse struct {
	Service  string `json:"service"`
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Source   string `json:"source"`
	Meta     string `json:"meta"`
}

func NewUserResponse(u entity.User) UserResponse {
	return UserResponse{
		Service:  u.Service,
		UserID:   u.UserID,
		Nickname: u.Nickname,
		Source:   u.Source,
		Meta:     u.Meta,
	}
}

type CreateChannelResponse struct {
	ChannelID   string          `json:"channel_id"`
	ChannelType string          `json:"channel_type"`
	Members     []entity.Member `json:"members"`
	CreatedAt   int64           `json:"created_at"`
}

// ChannelSummary is one row of a member's channel listing, carrying enough
// context to render an inbox without further round trips.
type ChannelSummary struct {
	ChannelID   string           `json:"channel_id"`
	ChannelType string           `json:"channel_type"`
	Members     []UserObject     `json:"members"`
	LastMessage *MessageEnvelope `json:"last_message,omitempty"`
	UnreadCount int64            `json:"unread_count"`
}

type ListChannelsResponse struct {
	Channels []ChannelSummary `json:"channels"`
}

type ListMessagesResponse struct {
	Messages     []MessageEnvelope `json:"messages"`
	LastReadTime int64             `json:"last_read_time"`
}

type SendMessageResponse struct {
	Message MessageEnvelope `json:"message"`
}
