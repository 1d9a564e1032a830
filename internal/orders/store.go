package orders

import "context"

// OrderPatch is a partial-field update: nil fields are left untouched.
type OrderPatch struct {
	Quantity    *int
	TotalAmount *float64
}

// Store is the remote order collection boundary. The engine depends only on
// these four primitives plus acknowledgement/failure signaling, not on any
// specific transport.
//
// Subscribe opens a continuous subscription: onSnapshot receives the full
// collection (initial load and after every change, unsorted); onError receives
// transient read failures without clearing the previous snapshot. Callbacks
// are invoked sequentially. The returned func detaches the listener; no
// callback fires after it returns.
type Store interface {
	Append(ctx context.Context, o Order) (string, error)
	Update(ctx context.Context, id string, patch OrderPatch) error
	Remove(ctx context.Context, id string) error
	Subscribe(ctx context.Context, onSnapshot func([]Order), onError func(error)) (func(), error)
}
