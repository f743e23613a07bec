package newsletter

import "context"

// QueueService is the event channel between the subscription service and the email service
type QueueService interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
	Consume(ctx context.Context, queue string) (<-chan []byte, error)
}
