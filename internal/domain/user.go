package domain

import (
	"context"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/internal/model"
	"github.com/pickstudio/chat-backend/internal/repository"
	"github.com/pickstudio/chat-backend/pkg/enum"
	"github.com/pickstudio/chat-backend/pkg/errorx"
	"github.com/pickstudio/chat-backend/pkg/xcontext"
)

type UserDomain interface {
	Upsert(ctx context.Context, req model.UpsertUserRequest) (*model.UserResponse, error)
	Get(ctx context.Context, req model.GetUserRequest) (*model.UserResponse, error)
	Delete(ctx context.Context, req model.DeleteUserRequest) (*model.EmptyResponse, error)
	RegisterToken(ctx context.Context, req model.RegisterTokenRequest) (*model.EmptyResponse, error)
	UnregisterToken(ctx context.Context, req model.UnregisterTokenRequest) (*model.EmptyResponse, error)
}

type userDomain struct {
	userRepo repository.UserRepository
}

func NewUserDomain(userRepo repository.UserRepository) UserDomain {
	return &userDomain{userRepo: userRepo}
}

func (d *userDomain) Upsert(ctx context.Context, req model.UpsertUserRequest) (*model.UserResponse, error) {
	if req.Service == "" || req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a service and an user id")
	}

	user := entity.User{
		Service:  req.Service,
		UserID:   req.UserID,
		Nickname: req.Nickname,
		Source:   req.Source,
		Meta:     req.Meta,
	}

	if err := d.userRepo.Upsert(ctx, user); err != nil {
		xcontext.Logger(ctx).Errorf("Unable to upsert user %s#%s: %v", req.Service, req.UserID, err)
		return nil, errorx.Unknown
	}

	resp := model.NewUserResponse(user)
	return &resp, nil
}

func (d *userDomain) Get(ctx context.Context, req model.GetUserRequest) (*model.UserResponse, error) {
	user, err := d.userRepo.Get(ctx, req.Service, req.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Unable to get user %s#%s: %v", req.Service, req.UserID, err)
		return nil, errorx.Unknown
	}

	if user == nil {
		return nil, errorx.New(errorx.NotFound, "Not found user %s#%s", req.Service, req.UserID)
	}

	resp := model.NewUserResponse(*user)
	return &resp, nil
}

func (d *userDomain) Delete(ctx context.Context, req model.DeleteUserRequest) (*model.EmptyResponse, error) {
	if err := d.userRepo.Delete(ctx, req.Service, req.UserID); err != nil {
		xcontext.Logger(ctx).Errorf("Unable to delete user %s#%s: %v", req.Service, req.UserID, err)
		return nil, errorx.Unknown
	}

	return &model.EmptyResponse{}, nil
}

func (d *userDomain) RegisterToken(
	ctx context.Context, req model.RegisterTokenRequest,
) (*model.EmptyResponse, error) {
	tokenType, err := enum.ToEnum[entity.TokenType](req.TokenType)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid token type %q", req.TokenType)
	}

	if req.Token == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a token")
	}

	if err := d.userRepo.AddToken(ctx, req.Service, req.UserID, tokenType, req.Token); err != nil {
		xcontext.Logger(ctx).Errorf("Unable to register token for %s#%s: %v", req.Service, req.UserID, err)
		return nil, errorx.Unknown
	}

	return &model.EmptyResponse{}, nil
}

func (d *userDomain) UnregisterToken(
	ctx context.Context, req model.UnregisterTokenRequest,
) (*model.EmptyResponse, error) {
	tokenType, err := enum.ToEnum[entity.TokenType](req.TokenType)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid token type %q", req.TokenType)
	}

	if err := d.userRepo.RemoveToken(ctx, req.Service, req.UserID, tokenType, req.Token); err != nil {
		xcontext.Logger(ctx).Errorf("Unable to unregister token for %s#%s: %v", req.Service, req.UserID, err)
		return nil, errorx.Unknown
	}

	return &model.EmptyResponse{}, nil
}
