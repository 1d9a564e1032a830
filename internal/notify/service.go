// Package notify consumes the order event feed and sends pickup
// notifications. The log boundary stands in for the SMS gateway.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/os44ua/comida-rapida/internal/kafka"
	"github.com/os44ua/comida-rapida/internal/orders"
	"github.com/os44ua/comida-rapida/internal/redisx"
)

type Service struct {
	Redis       *redis.Client
	Log         *slog.Logger
	ServiceName string
}

// HandleOrderEvent is the consumer handler for the order feed.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup via Redis: event ulang tidak mengirim SMS dua kali
	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		s.Log.Info("pickup notification sent",
			"order_id", p.OrderID, "phone", p.Phone, "customer", p.CustomerName,
			"food", p.FoodName, "quantity", p.Quantity)
	case orders.EventOrderUpdated:
		p, err := kafkax.UnwrapPayload[orders.OrderUpdatedPayload](env.Payload)
		if err != nil {
			return err
		}
		s.Log.Info("order amended", "order_id", p.OrderID, "quantity", p.Quantity, "total", p.TotalAmount)
	case orders.EventOrderDeleted:
		p, err := kafkax.UnwrapPayload[orders.OrderDeletedPayload](env.Payload)
		if err != nil {
			return err
		}
		s.Log.Info("order cancelled", "order_id", p.OrderID)
	default:
		// unknown event types are skipped, not failed
		s.Log.Debug("ignoring event", "event_type", env.EventType)
	}
	return nil
}
