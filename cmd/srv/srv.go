package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/scylladb/gocqlx/v2"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/pickstudio/chat-backend/config"
	"github.com/pickstudio/chat-backend/internal/client"
	"github.com/pickstudio/chat-backend/internal/domain"
	"github.com/pickstudio/chat-backend/internal/repository"
	"github.com/pickstudio/chat-backend/pkg/cqlutil"
	"github.com/pickstudio/chat-backend/pkg/kafka"
	"github.com/pickstudio/chat-backend/pkg/logger"
	"github.com/pickstudio/chat-backend/pkg/xcontext"
	"github.com/pickstudio/chat-backend/pkg/xredis"
)

type srv struct {
	app *cli.App
	ctx context.Context

	store         xredis.Client
	db            *gorm.DB
	scyllaSession gocqlx.Session

	userRepo    repository.UserRepository
	channelRepo repository.ChannelRepository
	messageRepo repository.MessageRepository

	dispatcher  client.PushDispatcher
	broadcaster domain.Broadcaster

	userDomain    domain.UserDomain
	channelDomain domain.ChannelDomain
	messageDomain domain.MessageDomain
	relayDomain   domain.RelayDomain

	server *http.Server
}

func (s *srv) loadConfig(cliCtx *cli.Context) {
	cfg, err := config.Load(cliCtx.String("config"))
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithConfigs(context.Background(), cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))
}

func (s *srv) loadStateStore() {
	var err error
	s.store, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	xcontext.Logger(s.ctx).Infof("Connected to redis at %s", xcontext.Configs(s.ctx).Redis.Addr)
}

func (s *srv) loadHistoryStore() {
	cfg := xcontext.Configs(s.ctx)
	switch cfg.History.Driver {
	case "mysql":
		var err error
		s.db, err = gorm.Open(mysql.Open(cfg.Database.ConnectionString()), &gorm.Config{})
		if err != nil {
			panic(err)
		}

		s.ctx = xcontext.WithDB(s.ctx, s.db)
		s.messageRepo = repository.NewMessageRepository()

	case "scylla":
		cluster := cqlutil.CreateCluster(cfg.ScyllaDB.KeySpace, cfg.ScyllaDB.Addr)
		var err error
		s.scyllaSession, err = gocqlx.WrapSession(cluster.CreateSession())
		if err != nil {
			panic(err)
		}

		s.messageRepo = repository.NewScyllaMessageRepository(s.scyllaSession)

	case "dynamo":
		awsSession, err := session.NewSession(&aws.Config{
			Region:   aws.String(cfg.Dynamo.Region),
			Endpoint: aws.String(cfg.Dynamo.Endpoint),
		})
		if err != nil {
			panic(err)
		}

		s.messageRepo = repository.NewDynamoMessageRepository(
			dynamodb.New(awsSession), cfg.Dynamo.TableName)

	default:
		panic("unsupported history driver " + cfg.History.Driver)
	}

	xcontext.Logger(s.ctx).Infof("Loaded %s history store", cfg.History.Driver)
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository(s.store)
	s.channelRepo = repository.NewChannelRepository(s.store)
}

func (s *srv) loadPushDispatcher() {
	cfg := xcontext.Configs(s.ctx)
	if cfg.Kafka.Addr == "" {
		xcontext.Logger(s.ctx).Warnf("No kafka address configured, push dispatch is disabled")
		return
	}

	publisher, err := kafka.NewPublisher("chat-backend", []string{cfg.Kafka.Addr})
	if err != nil {
		panic(err)
	}

	s.dispatcher = client.NewKafkaPushDispatcher(publisher, cfg.Kafka.PushTopic)
}

// runUntilSignalled serves until an interrupt arrives, then drains the http
// server and runs the extra teardown.
func (s *srv) runUntilSignalled(teardown func()) {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			xcontext.Logger(s.ctx).Errorf("Server stopped unexpectedly: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	xcontext.Logger(s.ctx).Infof("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		xcontext.Logger(s.ctx).Errorf("Unable to shutdown the server: %v", err)
	}

	if teardown != nil {
		teardown()
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			xcontext.Logger(s.ctx).Errorf("Unable to close the state store: %v", err)
		}
	}
}

func (s *srv) loadDomains() {
	s.broadcaster = domain.NewBroadcaster(s.store, s.userRepo, s.channelRepo, s.messageRepo, s.dispatcher)
	s.userDomain = domain.NewUserDomain(s.userRepo)
	s.channelDomain = domain.NewChannelDomain(s.channelRepo, s.userRepo, s.messageRepo)
	s.messageDomain = domain.NewMessageDomain(s.channelRepo, s.userRepo, s.messageRepo, s.broadcaster)
	s.relayDomain = domain.NewRelayDomain(s.store, s.channelRepo, s.broadcaster)
}
