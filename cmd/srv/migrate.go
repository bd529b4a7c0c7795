package main

import (
	"github.com/urfave/cli/v2"

	"github.com/pickstudio/chat-backend/migration"
	"github.com/pickstudio/chat-backend/pkg/xcontext"
)

func (s *srv) startMigrate(cliCtx *cli.Context) error {
	s.loadConfig(cliCtx)
	s.loadHistoryStore()

	cfg := xcontext.Configs(s.ctx)
	switch cfg.History.Driver {
	case "mysql":
		if err := migration.Migrate(s.ctx); err != nil {
			return err
		}

	case "scylla":
		if err := migration.MigrateScylla(s.scyllaSession); err != nil {
			return err
		}

	case "dynamo":
		// The dynamo table and its index are provisioned out of band.
		xcontext.Logger(s.ctx).Infof("Nothing to migrate for the dynamo driver")
	}

	xcontext.Logger(s.ctx).Infof("Migration completed")
	return nil
}
