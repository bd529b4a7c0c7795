package main

import (
	"context"
	"net/http"

	"github.com/rs/cors"
	"github.com/urfave/cli/v2"

	"github.com/pickstudio/chat-backend/internal/model"
	"github.com/pickstudio/chat-backend/pkg/router"
	"github.com/pickstudio/chat-backend/pkg/xcontext"
)

func (s *srv) startRelay(cliCtx *cli.Context) error {
	s.loadConfig(cliCtx)
	s.loadStateStore()
	s.loadHistoryStore()
	s.loadRepos()
	s.loadPushDispatcher()
	s.loadDomains()

	r := router.New(s.ctx)

	router.GET(r, "/health", func(ctx context.Context, req struct{}) (*model.EmptyResponse, error) {
		return &model.EmptyResponse{}, nil
	})

	router.Websocket(r, "/channels/:channel_id/:service/:user_id", s.relayDomain.ServeChannel)

	cfg := xcontext.Configs(s.ctx)
	s.server = &http.Server{
		Addr:    cfg.RelayServer.Address(),
		Handler: cors.AllowAll().Handler(r.Handler()),
	}

	xcontext.Logger(s.ctx).Infof("Starting relay server on %s", cfg.RelayServer.Address())
	s.runUntilSignalled(func() {
		s.relayDomain.Shutdown(s.ctx)
	})

	return nil
}
