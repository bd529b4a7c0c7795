package model

import "github.com/pickstudio/chat-backend/internal/entity"

type UpsertUserRequest struct {
	Service  string `uri:"service"`
	UserID   string `uri:"user_id"`
	Nickname string `json:"nickname"`
	Source   string `json:"source"`
	Meta     string `json:"meta"`
}

type GetUserRequest struct {
	Service string `uri:"service"`
	UserID  string `uri:"user_id"`
}

type DeleteUserRequest struct {
	Service string `uri:"service"`
	UserID  string `uri:"user_id"`
}

type RegisterTokenRequest struct {
	Service   string `uri:"service"`
	UserID    string `uri:"user_id"`
	TokenType string `json:"token_type"`
	Token     string `json:"token"`
}

type UnregisterTokenRequest struct {
	Service   string `uri:"service"`
	UserID    string `uri:"user_id"`
	TokenType string `json:"token_type"`
	Token     string `json:"token"`
}

type CreateChannelRequest struct {
	ChannelType string          `json:"channel_type"`
	Members     []entity.Member `json:"members"`
}

type ListChannelsRequest struct {
	Service string `uri:"service"`
	UserID  string `uri:"user_id"`
}

type LeaveChannelRequest struct {
	ChannelID string `uri:"channel_id"`
	Service   string `json:"service"`
	UserID    string `json:"user_id"`
}

type MarkAsReadRequest struct {
	ChannelID string `uri:"channel_id"`
	Service   string `json:"service"`
	UserID    string `json:"user_id"`
	Date      int64  `json:"date"`
}

type ListMessagesRequest struct {
	ChannelID string `uri:"channel_id"`
	Service   string `form:"service"`
	UserID    string `form:"user_id"`
}

type SendMessageRequest struct {
	ChannelID string         `uri:"channel_id"`
	Service   string         `json:"service"`
	UserID    string         `json:"user_id"`
	ViewType  string         `json:"view_type"`
	View      map[string]any `json:"view"`
	Date      int64          `json:"date"`
}

type ServeChannelRequest struct {
	ChannelID string `uri:"channel_id"`
	Service   string `uri:"service"`
	UserID    string `uri:"user_id"`
}
