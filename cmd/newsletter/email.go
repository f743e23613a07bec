package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantonganh/newsletter"
	"github.com/quantonganh/newsletter/email"
	"github.com/quantonganh/newsletter/gmail"
	"github.com/quantonganh/newsletter/http"
	"github.com/quantonganh/newsletter/rabbitmq"
)

func newEmailCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "email",
		Short: "Consume subscription events and send welcome emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(opts, ":8082", func(config *newsletter.Config, logger zerolog.Logger) app {
				return newEmailApp(config, logger)
			})
		},
	}
}

type emailApp struct {
	config     *newsletter.Config
	logger     zerolog.Logger
	queue      *rabbitmq.QueueService
	httpServer *http.Server

	cancel func()
	wg     sync.WaitGroup
}

func newEmailApp(config *newsletter.Config, logger zerolog.Logger) *emailApp {
	logger = logger.With().Str("service", "email").Logger()

	return &emailApp{
		config:     config,
		logger:     logger,
		httpServer: http.NewServer(logger),
	}
}

func newMailer(config *newsletter.Config, logger zerolog.Logger) newsletter.Mailer {
	if config.Mailer.Type == "smtp" {
		return gmail.NewMailer(gmail.Config{
			Host:        config.SMTP.Host,
			Port:        config.SMTP.Port,
			Username:    config.SMTP.Username,
			Password:    config.SMTP.Password,
			From:        config.Mailer.From,
			ProductName: config.Mailer.Product.Name,
			ProductLink: config.Mailer.Product.Link,
		})
	}
	return email.NewLogMailer(logger)
}

func (a *emailApp) Run(ctx context.Context) error {
	var err error
	a.queue, err = rabbitmq.NewQueueService(a.config.AMQP.URL)
	if err != nil {
		return err
	}

	inbound := rabbitmq.Topology{
		Exchange:   a.config.AMQP.Exchange,
		RoutingKey: a.config.AMQP.RoutingKey,
		Queue:      a.config.AMQP.Queue,
	}
	deadLetter := rabbitmq.Topology{
		Exchange:   a.config.AMQP.DeadLetter.Exchange,
		RoutingKey: a.config.AMQP.DeadLetter.RoutingKey,
		Queue:      a.config.AMQP.DeadLetter.Queue,
	}
	for _, t := range []rabbitmq.Topology{inbound, deadLetter} {
		if err := a.queue.Declare(ctx, t); err != nil {
			return err
		}
	}

	handler := email.NewHandler(newMailer(a.config, a.logger), a.queue, email.Destination{
		Exchange:   deadLetter.Exchange,
		RoutingKey: deadLetter.RoutingKey,
	}, a.config.Mailer.Subject, a.logger)

	consumeCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := email.Consume(consumeCtx, a.queue, inbound.Queue, handler); err != nil {
			a.logger.Error().Err(err).Msg("consumer stopped")
		}
	}()

	a.httpServer.Addr = a.config.HTTP.Addr

	return a.httpServer.Open()
}

func (a *emailApp) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	if a.httpServer != nil {
		if err := a.httpServer.Close(); err != nil {
			return err
		}
	}

	if a.queue != nil {
		return a.queue.Close()
	}

	return nil
}
