package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/os44ua/comida-rapida/internal/orders"
)

// Sink adapts the async producer to the engine's event boundary. Partition
// key is the order id so all events of one order keep their relative order.
type Sink struct {
	Producer *Producer
}

func (s *Sink) Publish(ctx context.Context, env orders.Envelope) {
	s.Producer.Publish(orders.PartitionKey(env.CorrelationID), MustMarshal(env),
		kafka.Header{Key: "x-event-type", Value: []byte(env.EventType)},
		kafka.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
