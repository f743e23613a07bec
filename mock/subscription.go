// Package mock provides testify mocks of the newsletter interfaces.
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/quantonganh/newsletter"
)

// SubscriptionStore is a mock of newsletter.SubscriptionStore
type SubscriptionStore struct {
	mock.Mock
}

func (m *SubscriptionStore) FindByID(ctx context.Context, id int64) (*newsletter.Subscription, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*newsletter.Subscription)
	return s, args.Error(1)
}

func (m *SubscriptionStore) FindByEmail(ctx context.Context, email string) (*newsletter.Subscription, error) {
	args := m.Called(ctx, email)
	s, _ := args.Get(0).(*newsletter.Subscription)
	return s, args.Error(1)
}

func (m *SubscriptionStore) FindAll(ctx context.Context) ([]newsletter.Subscription, error) {
	args := m.Called(ctx)
	subs, _ := args.Get(0).([]newsletter.Subscription)
	return subs, args.Error(1)
}

func (m *SubscriptionStore) Insert(ctx context.Context, s *newsletter.Subscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *SubscriptionStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// SubscriptionService is a mock of newsletter.SubscriptionService
type SubscriptionService struct {
	mock.Mock
}

func (m *SubscriptionService) Create(ctx context.Context, s *newsletter.Subscription) (newsletter.Envelope, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(newsletter.Envelope), args.Error(1)
}

func (m *SubscriptionService) FindByID(ctx context.Context, id int64) (newsletter.Envelope, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(newsletter.Envelope), args.Error(1)
}

func (m *SubscriptionService) FindByEmail(ctx context.Context, email string) (newsletter.Envelope, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(newsletter.Envelope), args.Error(1)
}

func (m *SubscriptionService) FindAll(ctx context.Context) (newsletter.Envelope, error) {
	args := m.Called(ctx)
	return args.Get(0).(newsletter.Envelope), args.Error(1)
}

func (m *SubscriptionService) DeleteByID(ctx context.Context, id int64) (newsletter.Envelope, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(newsletter.Envelope), args.Error(1)
}

func (m *SubscriptionService) DeleteByEmail(ctx context.Context, email string) (newsletter.Envelope, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(newsletter.Envelope), args.Error(1)
}
