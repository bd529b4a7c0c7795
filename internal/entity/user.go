package entity

import (
	"fmt"

	"github.com/pickstudio/chat-backend/pkg/enum"
)

type TokenType string

var (
	FCM  = enum.New(TokenType("FCM"))
	APNS = enum.New(TokenType("APNS"))
)

// User is the per-service profile record owned by the profile subsystem. The
// relay core only reads it to stamp message authorship; an absent record is a
// valid "not found", never a failure of the whole send.
type User struct {
	Service  string `redis:"service" json:"service"`
	UserID   string `redis:"user_id" json:"user_id"`
	Nickname string `redis:"nickname" json:"nickname"`
	Source   string `redis:"source" json:"-"`
	Meta     string `redis:"meta" json:"-"`
}

func UserKey(service, userID string) string {
	return fmt.Sprintf("users#%s#%s", service, userID)
}

func UserChannelsKey(service, userID string) string {
	return fmt.Sprintf("users#%s#%s#channels", service, userID)
}

func UserTokensKey(service, userID string, tokenType TokenType) string {
	return fmt.Sprintf("users#%s#%s#%s", service, userID, tokenType)
}
