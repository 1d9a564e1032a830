package orders

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderPlaced  = "OrderPlaced"
	EventOrderUpdated = "OrderUpdated"
	EventOrderDeleted = "OrderDeleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// EventSink receives lifecycle events after the durable write is acknowledged.
// Publishing must never block or fail the operation it annotates.
type EventSink interface {
	Publish(ctx context.Context, env Envelope)
}

type OrderPlacedPayload struct {
	OrderID      string  `json:"order_id"`
	FoodID       int     `json:"food_id"`
	FoodName     string  `json:"food_name"`
	Quantity     int     `json:"quantity"`
	TotalAmount  float64 `json:"total_amount"`
	CustomerName string  `json:"customer_name"`
	Phone        string  `json:"phone"`
}

type OrderUpdatedPayload struct {
	OrderID     string  `json:"order_id"`
	Quantity    int     `json:"quantity"`
	TotalAmount float64 `json:"total_amount"`
}

type OrderDeletedPayload struct {
	OrderID string `json:"order_id"`
}

func newEnvelope(eventType, producer, orderID string, payload any) Envelope {
	b, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: orderID,
		Payload:       b,
	}
}
