package xcontext

import (
	"context"

	"github.com/pickstudio/chat-backend/config"
	"github.com/pickstudio/chat-backend/pkg/logger"
	"github.com/pickstudio/chat-backend/pkg/ws"
	"gorm.io/gorm"
)

type (
	configsKey  struct{}
	loggerKey   struct{}
	dbKey       struct{}
	wsClientKey struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		return config.Configs{}
	}

	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		return logger.NewLogger(logger.INFO)
	}

	return l
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

func DB(ctx context.Context) *gorm.DB {
	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return nil
	}

	return db
}

func WithWSClient(ctx context.Context, client *ws.Client) context.Context {
	return context.WithValue(ctx, wsClientKey{}, client)
}

func WSClient(ctx context.Context) *ws.Client {
	client, ok := ctx.Value(wsClientKey{}).(*ws.Client)
	if !ok {
		return nil
	}

	return client
}
