// Package rabbitmq implements the event channel on top of RabbitMQ.
package rabbitmq

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	uuid "github.com/satori/go.uuid"

	"github.com/quantonganh/newsletter"
)

const contentType = "application/json"

// Topology describes where messages are routed
type Topology struct {
	Exchange   string
	RoutingKey string
	Queue      string
}

// QueueService implements newsletter.QueueService
type QueueService struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	mu   sync.Mutex
}

var _ newsletter.QueueService = (*QueueService)(nil)

// NewQueueService connects to the broker
func NewQueueService(url string) (*QueueService, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "amqp.Dial")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "conn.Channel")
	}

	return &QueueService{
		conn: conn,
		ch:   ch,
	}, nil
}

// Declare creates a durable direct exchange and a durable queue bound to it.
// The default exchange is never declared; it already routes by queue name.
func (s *QueueService) Declare(_ context.Context, t Topology) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Exchange != "" {
		if err := s.ch.ExchangeDeclare(
			t.Exchange,
			amqp.ExchangeDirect,
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			return errors.Wrapf(err, "failed to declare exchange %s", t.Exchange)
		}
	}

	if t.Queue == "" {
		return nil
	}

	if _, err := s.declareQueue(t.Queue); err != nil {
		return err
	}

	if t.Exchange != "" {
		if err := s.ch.QueueBind(t.Queue, t.RoutingKey, t.Exchange, false, nil); err != nil {
			return errors.Wrapf(err, "failed to bind queue %s to %s", t.Queue, t.Exchange)
		}
	}

	return nil
}

func (s *QueueService) declareQueue(name string) (amqp.Queue, error) {
	q, err := s.ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return amqp.Queue{}, errors.Wrapf(err, "failed to declare queue %s", name)
	}
	return q, nil
}

// Publish sends a persistent JSON message
func (s *QueueService) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ch.PublishWithContext(ctx,
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  contentType,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewV4().String(),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return errors.Wrapf(err, "failed to publish to %s/%s", exchange, routingKey)
	}

	return nil
}

// Consume streams message bodies of the queue until ctx is done or the broker closes the channel
func (s *QueueService) Consume(ctx context.Context, queue string) (<-chan []byte, error) {
	s.mu.Lock()
	q, err := s.declareQueue(queue)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	deliveries, err := s.ch.Consume(
		q.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	s.mu.Unlock()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to consume %s", q.Name)
	}

	messages := make(chan []byte)

	go func() {
		defer close(messages)

		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				select {
				case messages <- d.Body:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return messages, nil
}

// Close closes the channel and the connection
func (s *QueueService) Close() error {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
