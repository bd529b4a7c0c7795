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

func (s *srv) startApi(cliCtx *cli.Context) error {
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

	router.PUT(r, "/users/:service/:user_id", s.userDomain.Upsert)
	router.GET(r, "/users/:service/:user_id", s.userDomain.Get)
	router.DELETE(r, "/users/:service/:user_id", s.userDomain.Delete)
	router.POST(r, "/users/:service/:user_id/tokens", s.userDomain.RegisterToken)
	router.DELETE(r, "/users/:service/:user_id/tokens", s.userDomain.UnregisterToken)
	router.GET(r, "/users/:service/:user_id/channels", s.channelDomain.List)

	router.POST(r, "/channels", s.channelDomain.Create)
	router.POST(r, "/channels/:channel_id/leave", s.channelDomain.Leave)
	router.POST(r, "/channels/:channel_id/read", s.channelDomain.MarkAsRead)
	router.GET(r, "/channels/:channel_id/messages", s.messageDomain.List)
	router.POST(r, "/channels/:channel_id/messages", s.messageDomain.Send)

	cfg := xcontext.Configs(s.ctx)
	s.server = &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: cors.AllowAll().Handler(r.Handler()),
	}

	xcontext.Logger(s.ctx).Infof("Starting api server on %s", cfg.ApiServer.Address())
	s.runUntilSignalled(nil)

	return nil
}
