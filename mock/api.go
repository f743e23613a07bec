package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/quantonganh/newsletter"
)

// SubscriptionAPI is a mock of newsletter.SubscriptionAPI
type SubscriptionAPI struct {
	mock.Mock
}

func (m *SubscriptionAPI) List(ctx context.Context) (*newsletter.APIResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(*newsletter.APIResponse)
	return resp, args.Error(1)
}

func (m *SubscriptionAPI) Get(ctx context.Context, id int64) (*newsletter.APIResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*newsletter.APIResponse)
	return resp, args.Error(1)
}

func (m *SubscriptionAPI) Create(ctx context.Context, s *newsletter.Subscription) (*newsletter.APIResponse, error) {
	args := m.Called(ctx, s)
	resp, _ := args.Get(0).(*newsletter.APIResponse)
	return resp, args.Error(1)
}

func (m *SubscriptionAPI) Delete(ctx context.Context, id int64) (*newsletter.APIResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*newsletter.APIResponse)
	return resp, args.Error(1)
}

func (m *SubscriptionAPI) ResourceURL(id int64) string {
	args := m.Called(id)
	return args.String(0)
}
