package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "chat-backend"
	app.Usage = ""
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path of the toml configuration file",
			Value: "config.toml",
		},
	}
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start the api service",
			Category:    "Api",
			Description: `Serves user, channel, and message management over http.`,
		},
		{
			Action:      server.startRelay,
			Name:        "relay",
			Usage:       "Start the relay service",
			Category:    "Websocket",
			Description: `Serves real-time channel connections over websocket.`,
		},
		{
			Action:      server.startMigrate,
			Name:        "migrate",
			Usage:       "Apply database migrations",
			Category:    "Database",
			Description: `Applies the message history schema for the configured driver.`,
		},
	}

	s.app = app
}
