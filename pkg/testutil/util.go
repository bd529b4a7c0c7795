package testutil

import (
	"context"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pickstudio/chat-backend/config"
	"github.com/pickstudio/chat-backend/migration"
	"github.com/pickstudio/chat-backend/pkg/logger"
	"github.com/pickstudio/chat-backend/pkg/xcontext"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Env:      "test",
		LogLevel: "ERROR",
		History: config.HistoryConfigs{
			Driver: "mysql",
		},
		Relay: config.RelayConfigs{
			EchoToSender: true,
			Compression:  false,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}
