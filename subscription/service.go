// Package subscription implements the subscription workflows on top of a record store and an event channel.
package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"github.com/quantonganh/newsletter"
	"github.com/quantonganh/newsletter/pkg/metrics"
)

const (
	infoNotificationFailed = "Subscription was successfully persisted, but email could not be sent"
)

// Config tells the service where to publish notifications
type Config struct {
	Exchange   string
	RoutingKey string
}

// Service implements newsletter.SubscriptionService
type Service struct {
	store  newsletter.SubscriptionStore
	queue  newsletter.QueueService
	config Config
	logger zerolog.Logger
}

var _ newsletter.SubscriptionService = (*Service)(nil)

// NewService returns new subscription service
func NewService(store newsletter.SubscriptionStore, queue newsletter.QueueService, config Config, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		queue:  queue,
		config: config,
		logger: logger.With().Str("component", "subscription").Logger(),
	}
}

// Create stores the subscription unless one with the same email exists.
// Subscribers who gave their consent are announced on the event channel.
func (s *Service) Create(ctx context.Context, candidate *newsletter.Subscription) (newsletter.Envelope, error) {
	existing, err := s.store.FindByEmail(ctx, candidate.Email)
	if err != nil {
		return newsletter.Envelope{}, err
	}
	if existing != nil {
		return alreadyExists(existing), nil
	}

	created := *candidate
	created.ID = 0
	if insertErr := s.store.Insert(ctx, &created); insertErr != nil {
		if newsletter.ErrorCode(insertErr) != newsletter.ErrConflict {
			return newsletter.Envelope{}, insertErr
		}

		// lost a race against a concurrent insert of the same email
		existing, err := s.store.FindByEmail(ctx, candidate.Email)
		if err != nil {
			return newsletter.Envelope{}, err
		}
		if existing == nil {
			return newsletter.Envelope{}, insertErr
		}
		return alreadyExists(existing), nil
	}

	id := strconv.FormatInt(created.ID, 10)
	env := newsletter.Envelope{
		Code:          http.StatusCreated,
		Subscriptions: []newsletter.Subscription{created},
		Payload:       map[string]string{newsletter.HeaderIDCreated: id},
		Message:       fmt.Sprintf("Created entry with email: %s and id: %s", created.Email, id),
	}

	if created.Consent {
		if err := s.notify(ctx, &created); err != nil {
			s.logger.Error().Err(err).Int64("id", created.ID).Msg("failed to publish subscription")
			sentry.CaptureException(err)
			metrics.NotificationsPublished.WithLabelValues("failed").Inc()

			env.Payload[newsletter.PayloadInfo] = infoNotificationFailed
			env.Payload[newsletter.PayloadErrorMessage] = err.Error()
		} else {
			metrics.NotificationsPublished.WithLabelValues("published").Inc()
		}
	}

	return env, nil
}

func (s *Service) notify(ctx context.Context, sub *newsletter.Subscription) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode subscription: %w", err)
	}
	return s.queue.Publish(ctx, s.config.Exchange, s.config.RoutingKey, body)
}

// FindByID finds a subscription by its id
func (s *Service) FindByID(ctx context.Context, id int64) (newsletter.Envelope, error) {
	if id <= 0 {
		return idNotFound(id), nil
	}

	sub, err := s.store.FindByID(ctx, id)
	if err != nil {
		return newsletter.Envelope{}, err
	}
	if sub == nil {
		return idNotFound(id), nil
	}

	return found(sub, fmt.Sprintf("Entity of id: %d was found (id: %d).", id, sub.ID)), nil
}

// FindByEmail finds a subscription by email
func (s *Service) FindByEmail(ctx context.Context, email string) (newsletter.Envelope, error) {
	if strings.TrimSpace(email) == "" {
		return emailNotFound(email), nil
	}

	sub, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return newsletter.Envelope{}, err
	}
	if sub == nil {
		return emailNotFound(email), nil
	}

	return found(sub, fmt.Sprintf("Entity of email: %s was found (id: %d).", email, sub.ID)), nil
}

// FindAll returns every subscription ordered by id
func (s *Service) FindAll(ctx context.Context) (newsletter.Envelope, error) {
	subs, err := s.store.FindAll(ctx)
	if err != nil {
		return newsletter.Envelope{}, err
	}

	code := http.StatusOK
	if len(subs) == 0 {
		code = http.StatusNotFound
		subs = []newsletter.Subscription{}
	}

	amount := strconv.Itoa(len(subs))
	return newsletter.Envelope{
		Code:          code,
		Subscriptions: subs,
		Payload:       map[string]string{newsletter.HeaderFoundAmount: amount},
		Message:       "Amount of elements found: " + amount,
	}, nil
}

// DeleteByID deletes a subscription by its id
func (s *Service) DeleteByID(ctx context.Context, id int64) (newsletter.Envelope, error) {
	if id <= 0 {
		return idNotFound(id), nil
	}

	sub, err := s.store.FindByID(ctx, id)
	if err != nil {
		return newsletter.Envelope{}, err
	}
	if sub == nil {
		return idNotFound(id), nil
	}

	return s.delete(ctx, sub, fmt.Sprintf("Entity of id: %d was deleted (id: %d).", id, sub.ID))
}

// DeleteByEmail deletes a subscription by email
func (s *Service) DeleteByEmail(ctx context.Context, email string) (newsletter.Envelope, error) {
	if strings.TrimSpace(email) == "" {
		return emailNotFound(email), nil
	}

	sub, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return newsletter.Envelope{}, err
	}
	if sub == nil {
		return emailNotFound(email), nil
	}

	return s.delete(ctx, sub, fmt.Sprintf("Entity of email: %s was deleted (id: %d).", email, sub.ID))
}

func (s *Service) delete(ctx context.Context, sub *newsletter.Subscription, message string) (newsletter.Envelope, error) {
	if err := s.store.Delete(ctx, sub.ID); err != nil {
		return newsletter.Envelope{}, err
	}

	s.logger.Info().Int64("id", sub.ID).Msg("subscription deleted")

	return newsletter.Envelope{
		Code:          http.StatusOK,
		Subscriptions: []newsletter.Subscription{*sub},
		Message:       message,
	}, nil
}

func found(sub *newsletter.Subscription, message string) newsletter.Envelope {
	return newsletter.Envelope{
		Code:          http.StatusOK,
		Subscriptions: []newsletter.Subscription{*sub},
		Payload:       map[string]string{newsletter.HeaderIDFound: strconv.FormatInt(sub.ID, 10)},
		Message:       message,
	}
}

func alreadyExists(sub *newsletter.Subscription) newsletter.Envelope {
	return newsletter.Envelope{
		Code:          http.StatusFound,
		Subscriptions: []newsletter.Subscription{*sub},
		Payload:       map[string]string{newsletter.HeaderIDFound: strconv.FormatInt(sub.ID, 10)},
		Message:       fmt.Sprintf("Entry of email: %s already exists.", sub.Email),
	}
}

func idNotFound(id int64) newsletter.Envelope {
	return newsletter.Envelope{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("Entity of id: %d was not found.", id),
	}
}

func emailNotFound(email string) newsletter.Envelope {
	return newsletter.Envelope{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("Entity of email: %s was not found.", email),
	}
}
