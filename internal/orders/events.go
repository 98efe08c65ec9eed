package orders

import (
	"context"
	"errors"

	"github.com/platemate/platemate/internal/domain"
	"github.com/platemate/platemate/internal/messaging"
)

// OrderEvents publishes order lifecycle events. A nil implementation
// disables publishing; the API works without a broker.
type OrderEvents interface {
	PublishCreated(ctx context.Context, event domain.OrderCreatedEvent) error
	PublishCancelled(ctx context.Context, event domain.OrderCancelledEvent) error
}

const (
	TopicOrderCreated   = "order.created"
	TopicOrderCancelled = "order.cancelled"
)

// KafkaOrderEvents routes each event type to its own topic, keyed by order
// id so events for one order stay in partition order.
type KafkaOrderEvents struct {
	created   *messaging.Producer
	cancelled *messaging.Producer
}

func NewKafkaOrderEvents(brokers []string) *KafkaOrderEvents {
	return &KafkaOrderEvents{
		created:   messaging.NewProducer(brokers, TopicOrderCreated),
		cancelled: messaging.NewProducer(brokers, TopicOrderCancelled),
	}
}

func (p *KafkaOrderEvents) PublishCreated(ctx context.Context, event domain.OrderCreatedEvent) error {
	return p.created.Publish(ctx, event.OrderID.String(), event)
}

func (p *KafkaOrderEvents) PublishCancelled(ctx context.Context, event domain.OrderCancelledEvent) error {
	return p.cancelled.Publish(ctx, event.OrderID.String(), event)
}

func (p *KafkaOrderEvents) Close() error {
	return errors.Join(p.created.Close(), p.cancelled.Close())
}
