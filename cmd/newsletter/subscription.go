package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantonganh/newsletter"
	"github.com/quantonganh/newsletter/bolt"
	"github.com/quantonganh/newsletter/http"
	"github.com/quantonganh/newsletter/postgres"
	"github.com/quantonganh/newsletter/rabbitmq"
	"github.com/quantonganh/newsletter/sqlite"
	"github.com/quantonganh/newsletter/subscription"
	"github.com/quantonganh/newsletter/token"
)

func newSubscriptionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "subscription",
		Short: "Run the subscription API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(opts, ":8081", func(config *newsletter.Config, logger zerolog.Logger) app {
				return newSubscriptionApp(config, logger)
			})
		},
	}
}

type subscriptionApp struct {
	config     *newsletter.Config
	logger     zerolog.Logger
	db         newsletter.Database
	store      newsletter.SubscriptionStore
	queue      *rabbitmq.QueueService
	httpServer *http.Server
}

func newSubscriptionApp(config *newsletter.Config, logger zerolog.Logger) *subscriptionApp {
	logger = logger.With().Str("service", "subscription").Logger()

	db, store := newStore(config, logger)

	return &subscriptionApp{
		config:     config,
		logger:     logger,
		db:         db,
		store:      store,
		httpServer: http.NewServer(logger),
	}
}

// newStore picks the record store named by db.type
func newStore(config *newsletter.Config, logger zerolog.Logger) (newsletter.Database, newsletter.SubscriptionStore) {
	switch config.DB.Type {
	case "sqlite":
		db := sqlite.NewDB(config.DB.Path)
		return db, sqlite.NewSubscriptionStore(db)
	case "bolt":
		db := bolt.NewDB(config.DB.Path)
		return db, bolt.NewSubscriptionStore(db)
	default:
		db := postgres.NewDB(postgres.Config{
			URL:             config.DB.URL,
			MaxConns:        config.DB.MaxConns,
			ConnectAttempts: config.DB.ConnectAttempts,
			ConnectTimeout:  config.DB.ConnectTimeout,
		}, logger)
		return db, postgres.NewSubscriptionStore(db)
	}
}

func (a *subscriptionApp) Run(ctx context.Context) error {
	if err := a.db.Open(); err != nil {
		return fmt.Errorf("open %s database: %w", a.config.DB.Type, err)
	}

	credentials, err := token.Load(a.config.Auth.TokensPath)
	if err != nil {
		return err
	}
	a.logger.Info().Int("credentials", credentials.Len()).Msg("access tokens loaded")

	a.queue, err = rabbitmq.NewQueueService(a.config.AMQP.URL)
	if err != nil {
		return err
	}
	if err := a.queue.Declare(ctx, rabbitmq.Topology{
		Exchange:   a.config.AMQP.Exchange,
		RoutingKey: a.config.AMQP.RoutingKey,
		Queue:      a.config.AMQP.Queue,
	}); err != nil {
		return err
	}

	service := subscription.NewService(a.store, a.queue, subscription.Config{
		Exchange:   a.config.AMQP.Exchange,
		RoutingKey: a.config.AMQP.RoutingKey,
	}, a.logger)

	a.httpServer.Addr = a.config.HTTP.Addr
	a.httpServer.RegisterSubscriptionRoutes(service, credentials)

	return a.httpServer.Open()
}

func (a *subscriptionApp) Close() error {
	if a.httpServer != nil {
		if err := a.httpServer.Close(); err != nil {
			return err
		}
	}

	if a.queue != nil {
		if err := a.queue.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close amqp connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return err
		}
	}

	return nil
}
