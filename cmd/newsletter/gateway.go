package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantonganh/newsletter"
	"github.com/quantonganh/newsletter/gateway"
	"github.com/quantonganh/newsletter/http"
)

func newGatewayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "gateway",
		Short: "Run the public API in front of the subscription API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(opts, ":8080", func(config *newsletter.Config, logger zerolog.Logger) app {
				return newGatewayApp(config, logger)
			})
		},
	}
}

type gatewayApp struct {
	config     *newsletter.Config
	logger     zerolog.Logger
	httpServer *http.Server
}

func newGatewayApp(config *newsletter.Config, logger zerolog.Logger) *gatewayApp {
	logger = logger.With().Str("service", "gateway").Logger()

	return &gatewayApp{
		config:     config,
		logger:     logger,
		httpServer: http.NewServer(logger),
	}
}

func (a *gatewayApp) Run(_ context.Context) error {
	client := gateway.NewClient(gateway.Config{
		Host:     a.config.Upstream.Host,
		Port:     a.config.Upstream.Port,
		Root:     a.config.Upstream.Root,
		Username: a.config.Upstream.Username,
		Token:    a.config.Upstream.Token,
		Timeout:  a.config.Upstream.Timeout,
	}, a.logger)
	a.logger.Info().Str("upstream", client.ResourceURL(0)).Msg("forwarding to subscription API")

	a.httpServer.Addr = a.config.HTTP.Addr
	a.httpServer.RegisterGatewayRoutes(client)

	return a.httpServer.Open()
}

func (a *gatewayApp) Close() error {
	if a.httpServer != nil {
		return a.httpServer.Close()
	}
	return nil
}
