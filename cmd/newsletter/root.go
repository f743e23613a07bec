package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantonganh/newsletter"
)

type options struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "newsletter",
		Short: "Newsletter subscription services",
		Long: `newsletter runs one of the services of the subscription platform:

  subscription  the subscription API backed by a database, announcing new subscribers
  gateway       the public API forwarding to the subscription API
  email         the consumer sending welcome emails to new subscribers`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ./config.yaml or ./config/config.yaml)")

	cmd.AddCommand(
		newSubscriptionCmd(opts),
		newGatewayCmd(opts),
		newEmailCmd(opts),
		newTokenCmd(),
	)

	return cmd
}

// app is a service started by Run and stopped by Close
type app interface {
	Run(ctx context.Context) error
	Close() error
}

// runApp loads the config and runs the app built by newApp until SIGINT or SIGTERM
func runApp(opts *options, defaultAddr string, newApp func(*newsletter.Config, zerolog.Logger) app) error {
	config, err := loadConfig(opts.configPath, defaultAddr)
	if err != nil {
		return err
	}

	logger, err := newLogger(config)
	if err != nil {
		return err
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn: config.Sentry.DSN,
	}); err != nil {
		return fmt.Errorf("sentry.Init: %w", err)
	}
	defer sentry.Flush(2 * time.Second)

	a := newApp(config, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
	}()

	if err := a.Run(ctx); err != nil {
		_ = a.Close()
		return err
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	return a.Close()
}

func newLogger(config *newsletter.Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if config.Log.Level != "" {
		l, err := zerolog.ParseLevel(config.Log.Level)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", config.Log.Level, err)
		}
		level = l
	}

	var logger zerolog.Logger
	if config.Log.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(level).With().Timestamp().Logger(), nil
}
