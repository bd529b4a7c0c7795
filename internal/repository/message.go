package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/pkg/xcontext"
)

// MessageRepository is the message history store. Listings are ordered by
// created_at ascending, ties broken by message_id, and CountSince counts
// messages with created_at at or after the given cursor.
type MessageRepository interface {
	Create(ctx context.Context, message entity.Message) error
	ListByChannel(ctx context.Context, channelID string) ([]entity.Message, error)
	LastByChannel(ctx context.Context, channelID string) (*entity.Message, error)
	CountSince(ctx context.Context, channelID string, since int64) (int64, error)
}

type messageRepository struct{}

func NewMessageRepository() *messageRepository {
	return &messageRepository{}
}

func (r *messageRepository) Create(ctx context.Context, message entity.Message) error {
	return xcontext.DB(ctx).Create(&message).Error
}

func (r *messageRepository) ListByChannel(ctx context.Context, channelID string) ([]entity.Message, error) {
	var messages []entity.Message
	err := xcontext.DB(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at ASC, message_id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *messageRepository) LastByChannel(ctx context.Context, channelID string) (*entity.Message, error) {
	var message entity.Message
	err := xcontext.DB(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at DESC, message_id DESC").
		Take(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &message, nil
}

func (r *messageRepository) CountSince(ctx context.Context, channelID string, since int64) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.Message{}).
		Where("channel_id = ? AND created_at >= ?", channelID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
