package entity

import (
	"fmt"
	"strings"

	"github.com/pickstudio/chat-backend/pkg/enum"
	"github.com/pickstudio/chat-backend/pkg/errorx"
)

type ChannelType string

var (
	OneOnOne = enum.New(ChannelType("ONE_ON_ONE"))
	Group    = enum.New(ChannelType("GROUP"))
)

type MemberState string

var (
	Joined = enum.New(MemberState("joined"))
	Left   = enum.New(MemberState("left"))
)

// Member identifies one participant of a channel. Service scopes user ids so
// tenants never collide inside shared redis keys.
type Member struct {
	Service string `json:"service" mapstructure:"service"`
	UserID  string `json:"user_id" mapstructure:"user_id"`
}

// Key is the member's identity inside channel hashes, of the form
// "{service}#{user_id}".
func (m Member) Key() string {
	return fmt.Sprintf("%s#%s", m.Service, m.UserID)
}

func ParseMemberKey(key string) (Member, error) {
	parts := strings.SplitN(key, "#", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Member{}, errorx.New(errorx.Internal, "Invalid member key %q", key)
	}

	return Member{Service: parts[0], UserID: parts[1]}, nil
}

type Channel struct {
	ChannelID   string      `redis:"channel_id" json:"channel_id"`
	ChannelType ChannelType `redis:"channel_type" json:"channel_type"`
	CreatedAt   int64       `redis:"created_at" json:"created_at"`
}

func ChannelKey(channelID string) string {
	return fmt.Sprintf("channels#%s", channelID)
}

func ChannelMembersKey(channelID string) string {
	return fmt.Sprintf("channels#%s#members", channelID)
}

func ChannelStatusKey(channelID string) string {
	return fmt.Sprintf("channels#%s#status", channelID)
}

// ReadField is the per-member field inside the channel status hash holding the
// read cursor, of the form "{service}#{user_id}#read".
func ReadField(m Member) string {
	return fmt.Sprintf("%s#read", m.Key())
}
