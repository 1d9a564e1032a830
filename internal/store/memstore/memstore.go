// Package memstore is an in-process order store with the same contract as the
// durable backend: generated keys, full-snapshot subscriptions, partial
// updates. Backs unit tests and the dependency-free dev mode.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/os44ua/comida-rapida/internal/orders"
)

type subscriber struct {
	onSnapshot func([]orders.Order)
	onError    func(error)
}

type Store struct {
	mu     sync.Mutex
	byID   map[string]orders.Order
	lmu    sync.Mutex
	subs   map[int]subscriber
	nextID int
}

func New() *Store {
	return &Store{
		byID: make(map[string]orders.Order),
		subs: make(map[int]subscriber),
	}
}

func (s *Store) Append(ctx context.Context, o orders.Order) (string, error) {
	id := uuid.NewString()
	o.ID = id
	s.mu.Lock()
	s.byID[id] = o
	s.mu.Unlock()
	s.notify()
	return id, nil
}

func (s *Store) Update(ctx context.Context, id string, patch orders.OrderPatch) error {
	s.mu.Lock()
	o, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return orders.ErrOrderNotFound
	}
	if patch.Quantity != nil {
		o.Quantity = *patch.Quantity
	}
	if patch.TotalAmount != nil {
		o.TotalAmount = *patch.TotalAmount
	}
	s.byID[id] = o
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return orders.ErrOrderNotFound
	}
	delete(s.byID, id)
	s.mu.Unlock()
	s.notify()
	return nil
}

// Subscribe registers the callbacks and delivers the initial snapshot before
// returning. The returned func detaches the subscriber; once it returns no
// further callback fires.
func (s *Store) Subscribe(ctx context.Context, onSnapshot func([]orders.Order), onError func(error)) (func(), error) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = subscriber{onSnapshot: onSnapshot, onError: onError}
	s.lmu.Unlock()

	onSnapshot(s.Snapshot())

	return func() {
		s.lmu.Lock()
		delete(s.subs, id)
		s.lmu.Unlock()
	}, nil
}

// Snapshot returns the whole collection, unsorted.
func (s *Store) Snapshot() []orders.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]orders.Order, 0, len(s.byID))
	for _, o := range s.byID {
		out = append(out, o)
	}
	return out
}

func (s *Store) notify() {
	snap := s.Snapshot()
	s.lmu.Lock()
	defer s.lmu.Unlock()
	for _, sub := range s.subs {
		sub.onSnapshot(snap)
	}
}
