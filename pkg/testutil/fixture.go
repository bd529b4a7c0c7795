package testutil

import (
	"context"

	"github.com/pickstudio/chat-backend/internal/entity"
)

var (
	User1 = entity.User{Service: "pick", UserID: "user1", Nickname: "rabbit"}
	User2 = entity.User{Service: "pick", UserID: "user2", Nickname: "turtle"}
	User3 = entity.User{Service: "dang", UserID: "user3", Nickname: "fox"}

	Member1 = entity.Member{Service: User1.Service, UserID: User1.UserID}
	Member2 = entity.Member{Service: User2.Service, UserID: User2.UserID}
	Member3 = entity.Member{Service: User3.Service, UserID: User3.UserID}
)

type userUpserter interface {
	Upsert(ctx context.Context, user entity.User) error
}

// CreateFixtureUsers registers the sample users into the store.
func CreateFixtureUsers(ctx context.Context, userRepo userUpserter) {
	for _, u := range []entity.User{User1, User2, User3} {
		if err := userRepo.Upsert(ctx, u); err != nil {
			panic(err)
		}
	}
}
