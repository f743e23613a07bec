package mock

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// QueueService is a mock of newsletter.QueueService
type QueueService struct {
	mock.Mock
}

func (m *QueueService) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	args := m.Called(ctx, exchange, routingKey, body)
	return args.Error(0)
}

func (m *QueueService) Consume(ctx context.Context, queue string) (<-chan []byte, error) {
	args := m.Called(ctx, queue)
	ch, _ := args.Get(0).(<-chan []byte)
	return ch, args.Error(1)
}
