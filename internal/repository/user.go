package repository

import (
	"context"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/pkg/xredis"
)

type UserRepository interface {
	Upsert(ctx context.Context, user entity.User) error
	Get(ctx context.Context, service, userID string) (*entity.User, error)
	Delete(ctx context.Context, service, userID string) error
	Exist(ctx context.Context, service, userID string) (bool, error)
	AddToken(ctx context.Context, service, userID string, tokenType entity.TokenType, token string) error
	RemoveToken(ctx context.Context, service, userID string, tokenType entity.TokenType, token string) error
	GetTokens(ctx context.Context, service, userID string, tokenType entity.TokenType) ([]string, error)
}

type userRepository struct {
	store xredis.Client
}

func NewUserRepository(store xredis.Client) *userRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Upsert(ctx context.Context, user entity.User) error {
	return r.store.HSetObj(ctx, entity.UserKey(user.Service, user.UserID), user)
}

// Get returns nil without error when no profile exists. Callers that can live
// without a profile treat nil as an anonymous sender.
func (r *userRepository) Get(ctx context.Context, service, userID string) (*entity.User, error) {
	var user entity.User
	found, err := r.store.HGetObj(ctx, entity.UserKey(service, userID), &user)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, service, userID string) error {
	return r.store.Del(ctx,
		entity.UserKey(service, userID),
		entity.UserTokensKey(service, userID, entity.FCM),
		entity.UserTokensKey(service, userID, entity.APNS),
	)
}

func (r *userRepository) Exist(ctx context.Context, service, userID string) (bool, error) {
	return r.store.Exist(ctx, entity.UserKey(service, userID))
}

func (r *userRepository) AddToken(
	ctx context.Context, service, userID string, tokenType entity.TokenType, token string,
) error {
	return r.store.SAdd(ctx, entity.UserTokensKey(service, userID, tokenType), token)
}

func (r *userRepository) RemoveToken(
	ctx context.Context, service, userID string, tokenType entity.TokenType, token string,
) error {
	return r.store.SRem(ctx, entity.UserTokensKey(service, userID, tokenType), token)
}

func (r *userRepository) GetTokens(
	ctx context.Context, service, userID string, tokenType entity.TokenType,
) ([]string, error) {
	return r.store.SMembers(ctx, entity.UserTokensKey(service, userID, tokenType))
}
