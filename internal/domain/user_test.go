package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pickstudio/chat-backend/internal/entity"
	"github.com/pickstudio/chat-backend/internal/model"
	"github.com/pickstudio/chat-backend/internal/repository"
	"github.com/pickstudio/chat-backend/pkg/errorx"
	"github.com/pickstudio/chat-backend/pkg/testutil"
)

func Test_userDomain_UpsertAndGet(t *testing.T) {
	ctx := testutil.MockContext()
	store := testutil.NewInMemoryStore()
	userRepo := repository.NewUserRepository(store)
	userDomain := NewUserDomain(userRepo)

	resp, err := userDomain.Upsert(ctx, model.UpsertUserRequest{
		Service:  "pick",
		UserID:   "user1",
		Nickname: "rabbit",
	})
	require.NoError(t, err)
	require.Equal(t, "rabbit", resp.Nickname)

	// Upsert overwrites.
	_, err = userDomain.Upsert(ctx, model.UpsertUserRequest{
		Service:  "pick",
		UserID:   "user1",
		Nickname: "hare",
	})
	require.NoError(t, err)

	got, err := userDomain.Get(ctx, model.GetUserRequest{Service: "pick", UserID: "user1"})
	require.NoError(t, err)
	require.Equal(t, "hare", got.Nickname)

	_, err = userDomain.Get(ctx, model.GetUserRequest{Service: "pick", UserID: "ghost"})
	require.Error(t, err)

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.NotFound, errx.Code)
}

func Test_userDomain_Tokens(t *testing.T) {
	ctx := testutil.MockContext()
	store := testutil.NewInMemoryStore()
	userRepo := repository.NewUserRepository(store)
	userDomain := NewUserDomain(userRepo)

	_, err := userDomain.RegisterToken(ctx, model.RegisterTokenRequest{
		Service: "pick", UserID: "user1", TokenType: "FCM", Token: "token-a",
	})
	require.NoError(t, err)

	_, err = userDomain.RegisterToken(ctx, model.RegisterTokenRequest{
		Service: "pick", UserID: "user1", TokenType: "SMOKE", Token: "token-b",
	})
	require.Error(t, err)

	tokens, err := userRepo.GetTokens(ctx, "pick", "user1", entity.FCM)
	require.NoError(t, err)
	require.Equal(t, []string{"token-a"}, tokens)

	_, err = userDomain.UnregisterToken(ctx, model.UnregisterTokenRequest{
		Service: "pick", UserID: "user1", TokenType: "FCM", Token: "token-a",
	})
	require.NoError(t, err)

	tokens, err = userRepo.GetTokens(ctx, "pick", "user1", entity.FCM)
	require.NoError(t, err)
	require.Empty(t, tokens)
}

func Test_userDomain_DeleteRemovesTokens(t *testing.T) {
	ctx := testutil.MockContext()
	store := testutil.NewInMemoryStore()
	userRepo := repository.NewUserRepository(store)
	userDomain := NewUserDomain(userRepo)

	_, err := userDomain.Upsert(ctx, model.UpsertUserRequest{
		Service: "pick", UserID: "user1", Nickname: "rabbit",
	})
	require.NoError(t, err)

	_, err = userDomain.RegisterToken(ctx, model.RegisterTokenRequest{
		Service: "pick", UserID: "user1", TokenType: "APNS", Token: "token-a",
	})
	require.NoError(t, err)

	_, err = userDomain.Delete(ctx, model.DeleteUserRequest{Service: "pick", UserID: "user1"})
	require.NoError(t, err)

	existed, err := userRepo.Exist(ctx, "pick", "user1")
	require.NoError(t, err)
	require.False(t, existed)

	tokens, err := userRepo.GetTokens(ctx, "pick", "user1", entity.APNS)
	require.NoError(t, err)
	require.Empty(t, tokens)
}
