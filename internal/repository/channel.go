package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/pkg/xredis"
)

type ChannelRepository interface {
	Create(ctx context.Context, channel entity.Channel, members []entity.Member) error
	Get(ctx context.Context, channelID string) (*entity.Channel, error)
	GetMembers(ctx context.Context, channelID string, state entity.MemberState) ([]entity.Member, error)
	GetMemberState(ctx context.Context, channelID string, member entity.Member) (entity.MemberState, error)
	SetMemberState(ctx context.Context, channelID string, member entity.Member, state entity.MemberState) error
	ListByMember(ctx context.Context, member entity.Member) ([]string, error)
	MarkAsRead(ctx context.Context, channelID string, member entity.Member, date int64) error
	LastReadAt(ctx context.Context, channelID string, member entity.Member) (int64, error)
	ReadCursors(ctx context.Context, channelID string) (map[string]int64, error)
}

type channelRepository struct {
	store xredis.Client
}

func NewChannelRepository(store xredis.Client) *channelRepository {
	return &channelRepository{store: store}
}

func (r *channelRepository) Create(ctx context.Context, channel entity.Channel, members []entity.Member) error {
	if err := r.store.HSetObj(ctx, entity.ChannelKey(channel.ChannelID), channel); err != nil {
		return err
	}

	for _, m := range members {
		if err := r.store.HSet(ctx,
			entity.ChannelMembersKey(channel.ChannelID), m.Key(), string(entity.Joined)); err != nil {
			return err
		}

		if err := r.store.HSet(ctx,
			entity.ChannelStatusKey(channel.ChannelID), entity.ReadField(m),
			strconv.FormatInt(channel.CreatedAt, 10)); err != nil {
			return err
		}

		if err := r.store.SAdd(ctx,
			entity.UserChannelsKey(m.Service, m.UserID), channel.ChannelID); err != nil {
			return err
		}
	}

	return nil
}

func (r *channelRepository) Get(ctx context.Context, channelID string) (*entity.Channel, error) {
	var channel entity.Channel
	found, err := r.store.HGetObj(ctx, entity.ChannelKey(channelID), &channel)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	return &channel, nil
}

func (r *channelRepository) GetMembers(
	ctx context.Context, channelID string, state entity.MemberState,
) ([]entity.Member, error) {
	states, err := r.store.HGetAll(ctx, entity.ChannelMembersKey(channelID))
	if err != nil {
		return nil, err
	}

	members := []entity.Member{}
	for key, s := range states {
		if s != string(state) {
			continue
		}

		m, err := entity.ParseMemberKey(key)
		if err != nil {
			return nil, err
		}

		members = append(members, m)
	}

	return members, nil
}

// GetMemberState returns an empty state when the member was never part of the
// channel.
func (r *channelRepository) GetMemberState(
	ctx context.Context, channelID string, member entity.Member,
) (entity.MemberState, error) {
	state, err := r.store.HGet(ctx, entity.ChannelMembersKey(channelID), member.Key())
	if err != nil {
		if isNil(err) {
			return "", nil
		}

		return "", err
	}

	return entity.MemberState(state), nil
}

func (r *channelRepository) SetMemberState(
	ctx context.Context, channelID string, member entity.Member, state entity.MemberState,
) error {
	if err := r.store.HSet(ctx, entity.ChannelMembersKey(channelID), member.Key(), string(state)); err != nil {
		return err
	}

	// The channel stays in the member's channel set even after leaving, so
	// a left member keeps visibility into the history sent while joined.
	return r.store.SAdd(ctx, entity.UserChannelsKey(member.Service, member.UserID), channelID)
}

func (r *channelRepository) ListByMember(ctx context.Context, member entity.Member) ([]string, error) {
	return r.store.SMembers(ctx, entity.UserChannelsKey(member.Service, member.UserID))
}

func (r *channelRepository) MarkAsRead(
	ctx context.Context, channelID string, member entity.Member, date int64,
) error {
	return r.store.HSet(ctx,
		entity.ChannelStatusKey(channelID), entity.ReadField(member), strconv.FormatInt(date, 10))
}

// LastReadAt returns 0 when the member has no cursor yet, which makes every
// message in the channel unread.
func (r *channelRepository) LastReadAt(
	ctx context.Context, channelID string, member entity.Member,
) (int64, error) {
	raw, err := r.store.HGet(ctx, entity.ChannelStatusKey(channelID), entity.ReadField(member))
	if err != nil {
		if isNil(err) {
			return 0, nil
		}

		return 0, err
	}

	return strconv.ParseInt(raw, 10, 64)
}

// ReadCursors returns every member's cursor keyed by "{service}#{user_id}".
func (r *channelRepository) ReadCursors(ctx context.Context, channelID string) (map[string]int64, error) {
	fields, err := r.store.HGetAll(ctx, entity.ChannelStatusKey(channelID))
	if err != nil {
		return nil, err
	}

	cursors := map[string]int64{}
	for field, raw := range fields {
		key, ok := strings.CutSuffix(field, "#read")
		if !ok {
			continue
		}

		date, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}

		cursors[key] = date
	}

	return cursors, nil
}
