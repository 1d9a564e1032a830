package orders

import (
	"context"
	"log/slog"
	"sync"
)

// SyncView materializes the remote order collection for the operator surface.
// Every snapshot delivery fully replaces the view (idempotent, duplicate
// deliveries are harmless) and is kept sorted newest first. A transient read
// error leaves the last-known-good snapshot in place.
type SyncView struct {
	Store   Store
	Events  EventSink // optional
	Log     *slog.Logger
	Service string

	mu      sync.Mutex
	orders  []Order
	lastErr error
	unsub   func()
	closed  bool
}

func (v *SyncView) logger() *slog.Logger {
	if v.Log != nil {
		return v.Log
	}
	return slog.Default()
}

// Subscribe opens the live subscription. The first delivery is the initial
// load; an empty collection is an empty view, not an error.
func (v *SyncView) Subscribe(ctx context.Context) error {
	v.mu.Lock()
	if v.unsub != nil {
		v.mu.Unlock()
		return nil // already live
	}
	v.closed = false
	v.mu.Unlock()

	unsub, err := v.Store.Subscribe(ctx, v.apply, v.fail)
	if err != nil {
		return &RemoteError{Op: "read", Err: err}
	}

	v.mu.Lock()
	v.unsub = unsub
	v.mu.Unlock()
	return nil
}

// Unsubscribe detaches the listener; no delivery mutates the view afterwards.
func (v *SyncView) Unsubscribe() {
	v.mu.Lock()
	unsub := v.unsub
	v.unsub = nil
	v.closed = true
	v.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (v *SyncView) apply(snapshot []Order) {
	sorted := make([]Order, len(snapshot))
	copy(sorted, snapshot)
	SortNewestFirst(sorted)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.orders = sorted
	v.lastErr = nil
	v.logger().Debug("order snapshot applied", "count", len(sorted))
}

func (v *SyncView) fail(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	// stale-but-available: keep the previous snapshot on transient errors
	v.lastErr = &RemoteError{Op: "read", Err: err}
	v.logger().Error("order subscription delivery failed", "err", err)
}

// Orders returns the current materialized view, newest first.
func (v *SyncView) Orders() []Order {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Order, len(v.orders))
	copy(out, v.orders)
	return out
}

// Err reports the retryable error of the last failed delivery, nil when the
// view is current.
func (v *SyncView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

// Edit issues a partial-field update of quantity and total, preserving the
// implied unit price. The view is not optimistically mutated; it changes only
// when the subscription delivers the post-write snapshot.
func (v *SyncView) Edit(ctx context.Context, orderID string, newQuantity int) error {
	if newQuantity < 1 {
		return &ValidationError{Field: "quantity"}
	}

	current, ok := v.find(orderID)
	if !ok {
		return ErrOrderNotFound
	}

	newTotal := current.UnitPrice() * float64(newQuantity)
	patch := OrderPatch{Quantity: &newQuantity, TotalAmount: &newTotal}
	if err := v.Store.Update(ctx, orderID, patch); err != nil {
		v.logger().Error("order update failed", "order_id", orderID, "err", err)
		return &RemoteError{Op: "update", Err: err}
	}

	if v.Events != nil {
		v.Events.Publish(ctx, newEnvelope(EventOrderUpdated, v.Service, orderID, OrderUpdatedPayload{
			OrderID:     orderID,
			Quantity:    newQuantity,
			TotalAmount: newTotal,
		}))
	}
	v.logger().Info("order updated", "order_id", orderID, "quantity", newQuantity, "total", newTotal)
	return nil
}

// Delete removes the record. The caller must pass an explicit confirmation;
// without it the record stays untouched.
func (v *SyncView) Delete(ctx context.Context, orderID string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if _, ok := v.find(orderID); !ok {
		return ErrOrderNotFound
	}
	if err := v.Store.Remove(ctx, orderID); err != nil {
		v.logger().Error("order delete failed", "order_id", orderID, "err", err)
		return &RemoteError{Op: "remove", Err: err}
	}

	if v.Events != nil {
		v.Events.Publish(ctx, newEnvelope(EventOrderDeleted, v.Service, orderID, OrderDeletedPayload{OrderID: orderID}))
	}
	v.logger().Info("order deleted", "order_id", orderID)
	return nil
}

func (v *SyncView) find(orderID string) (Order, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, o := range v.orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return Order{}, false
}
