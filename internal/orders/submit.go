package orders

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/os44ua/comida-rapida/internal/cart"
	"github.com/os44ua/comida-rapida/internal/menu"
)

// Flow wires the submission path: durable append to the remote store, then
// local stock/cart bookkeeping. One Flow per service; Begin hands out one
// Submission per order attempt.
type Flow struct {
	Store   Store
	Catalog *menu.Catalog
	Cart    *cart.Ledger
	Events  EventSink // optional
	Log     *slog.Logger
	Service string
}

func (f *Flow) logger() *slog.Logger {
	if f.Log != nil {
		return f.Log
	}
	return slog.Default()
}

// Begin starts a submission for the given menu item, quantity 1.
func (f *Flow) Begin(foodID int) (*Submission, error) {
	food, ok := f.Catalog.FindByID(foodID)
	if !ok {
		return nil, menu.ErrNotFound
	}
	return &Submission{
		flow:  f,
		food:  food,
		qty:   1,
		total: food.Price,
		state: StateIdle,
	}, nil
}

// RemoveFromCart is the exact inverse of a confirmed submission's local step:
// it drops the reservation and restores the reserved quantity to the catalog.
func (f *Flow) RemoveFromCart(id int) (cart.Entry, bool) {
	e, ok := f.Cart.Remove(id)
	if !ok {
		return cart.Entry{}, false
	}
	f.Catalog.Increment(id, e.Quantity)
	f.logger().Info("cart entry removed", "food_id", id, "restored_qty", e.Quantity)
	return e, true
}

// Submission drives one order through IDLE -> SUBMITTING -> {CONFIRMED|FAILED}.
// FAILED -> SUBMITTING is the retry path; CONFIRMED is terminal.
type Submission struct {
	flow *Flow

	mu    sync.Mutex
	state State
	food  menu.Item
	qty   int
	total float64
}

func (s *Submission) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Submission) Quantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.qty
}

func (s *Submission) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// SetQuantity recomputes the total locally, no network round-trip. Only legal
// while idle or after a failure.
func (s *Submission) SetQuantity(qty int) error {
	if qty < 1 {
		return &ValidationError{Field: "quantity"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle && s.state != StateFailed {
		return ErrQuantityLocked
	}
	s.qty = qty
	s.total = s.food.Price * float64(qty)
	return nil
}

// Submit validates, appends the order durably, and only after the write is
// acknowledged decrements catalog stock and upserts the cart reservation.
// Validation order: name, phone, stock; first failure wins, no side effects.
// On a write failure nothing local is mutated and a retry is allowed.
func (s *Submission) Submit(ctx context.Context, customerName, phone string) (Order, error) {
	log := s.flow.logger()

	s.mu.Lock()
	switch s.state {
	case StateSubmitting:
		s.mu.Unlock()
		return Order{}, ErrSubmitInFlight
	case StateConfirmed:
		s.mu.Unlock()
		return Order{}, ErrSubmitDone
	}

	if strings.TrimSpace(customerName) == "" {
		s.mu.Unlock()
		return Order{}, &ValidationError{Field: "name"}
	}
	if strings.TrimSpace(phone) == "" {
		s.mu.Unlock()
		return Order{}, &ValidationError{Field: "phone"}
	}

	// cek stok terhadap remaining saat ini, bukan snapshot lama
	current, ok := s.flow.Catalog.FindByID(s.food.ID)
	if !ok {
		s.mu.Unlock()
		return Order{}, menu.ErrNotFound
	}
	if s.qty > current.Quantity {
		s.mu.Unlock()
		return Order{}, menu.ErrInsufficientStock
	}

	s.state = StateSubmitting
	o := Order{
		FoodID:       s.food.ID,
		FoodName:     s.food.Name,
		Quantity:     s.qty,
		TotalAmount:  s.total,
		CustomerName: customerName,
		Phone:        phone,
		Timestamp:    time.Now().UTC(),
	}
	s.mu.Unlock()

	log.Info("submitting order", "food_id", o.FoodID, "quantity", o.Quantity, "customer", o.CustomerName)

	id, err := s.flow.Store.Append(ctx, o)
	if err != nil {
		s.mu.Lock()
		s.state = StateFailed
		s.mu.Unlock()
		log.Error("order append failed", "food_id", o.FoodID, "err", err)
		return Order{}, &RemoteError{Op: "append", Err: err}
	}
	o.ID = id

	s.mu.Lock()
	s.state = StateConfirmed
	s.mu.Unlock()

	// Local bookkeeping after the ack. Sequential, not atomic with the write:
	// a decrement failure here is logged, never rolled back (accepted gap).
	if err := s.flow.Catalog.Decrement(o.FoodID, o.Quantity); err != nil {
		log.Warn("stock decrement failed after durable write", "order_id", id, "err", err)
	}
	s.flow.Cart.Upsert(s.food, o.Quantity)

	if s.flow.Events != nil {
		s.flow.Events.Publish(ctx, newEnvelope(EventOrderPlaced, s.flow.Service, id, OrderPlacedPayload{
			OrderID:      id,
			FoodID:       o.FoodID,
			FoodName:     o.FoodName,
			Quantity:     o.Quantity,
			TotalAmount:  o.TotalAmount,
			CustomerName: o.CustomerName,
			Phone:        o.Phone,
		}))
	}

	log.Info("order confirmed", "order_id", id, "total", o.TotalAmount)
	return o, nil
}
