package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"github.com/quantonganh/newsletter"
	"github.com/quantonganh/newsletter/pkg/metrics"
)

// ErrMalformedMessage is returned for events that cannot produce an email
var ErrMalformedMessage = errors.New("malformed message")

// Destination is where rejected messages are published
type Destination struct {
	Exchange   string
	RoutingKey string
}

// Handler sends an email for every subscription event and dead-letters the rest
type Handler struct {
	mailer     newsletter.Mailer
	queue      newsletter.QueueService
	deadLetter Destination
	subject    string
	logger     zerolog.Logger
}

// NewHandler returns new handler
func NewHandler(mailer newsletter.Mailer, queue newsletter.QueueService, deadLetter Destination, subject string, logger zerolog.Logger) *Handler {
	return &Handler{
		mailer:     mailer,
		queue:      queue,
		deadLetter: deadLetter,
		subject:    subject,
		logger:     logger.With().Str("component", "email").Logger(),
	}
}

// Handle processes one message. It never fails: anything that cannot be sent is dead-lettered unchanged.
func (h *Handler) Handle(ctx context.Context, body []byte) {
	if err := h.process(ctx, body); err != nil {
		h.logger.Warn().Err(err).Msg("message rejected")
		h.reject(ctx, body)
		return
	}

	metrics.EmailMessages.WithLabelValues("sent").Inc()
}

func (h *Handler) process(ctx context.Context, body []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	s, err := decode(body)
	if err != nil {
		return err
	}

	if err := h.mailer.Send(ctx, NewMessage(s, h.subject)); err != nil {
		return fmt.Errorf("send to %s: %w", s.Email, err)
	}

	return nil
}

// decode returns the subscription carried by body if it may receive an email
func decode(body []byte) (*newsletter.Subscription, error) {
	var s *newsletter.Subscription
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: empty subscription", ErrMalformedMessage)
	}
	if !s.Consent {
		return nil, fmt.Errorf("%w: no consent for %s", ErrMalformedMessage, s.Email)
	}
	return s, nil
}

func (h *Handler) reject(ctx context.Context, body []byte) {
	metrics.EmailMessages.WithLabelValues("dead_lettered").Inc()

	if err := h.queue.Publish(ctx, h.deadLetter.Exchange, h.deadLetter.RoutingKey, body); err != nil {
		h.logger.Error().Err(err).
			Str("exchange", h.deadLetter.Exchange).
			Str("routing_key", h.deadLetter.RoutingKey).
			Msg("failed to dead-letter message")
		sentry.CaptureException(err)
	}
}

// Consume handles the messages of queue one at a time until ctx is done or the queue is closed
func Consume(ctx context.Context, queue newsletter.QueueService, name string, h *Handler) error {
	messages, err := queue.Consume(ctx, name)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case body, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("queue %s closed", name)
			}
			h.Handle(ctx, body)
		}
	}
}
