package events

import (
	"context"

	"github.com/MNhat168/sport-zone-sub002/pkg/kafka"
	"github.com/MNhat168/sport-zone-sub002/pkg/logger"
)

// Publisher emits lifecycle events after the owning transaction commits.
// Publishing is a side channel: failures are logged and never propagated into
// the primary operation.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any)
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, source string, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, source: source, log: log}
}

func (p *kafkaPublisher) Publish(ctx context.Context, topic, key string, payload any) {
	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventType(topic).
		WithSource(p.source).
		Build()

	if err := p.producer.Publish(ctx, topic, msg); err != nil {
		p.log.Error("Failed to publish event",
			"topic", topic,
			"key", key,
			"error", err,
		)
		return
	}
	p.log.Debug("Event published", "topic", topic, "key", key)
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops everything, for tests and
// for running without a broker.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, string, any) {}
