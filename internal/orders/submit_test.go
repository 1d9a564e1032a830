package orders_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/os44ua/comida-rapida/internal/cart"
	"github.com/os44ua/comida-rapida/internal/menu"
	"github.com/os44ua/comida-rapida/internal/orders"
	"github.com/os44ua/comida-rapida/internal/store/memstore"
)

type sinkSpy struct {
	mu   sync.Mutex
	envs []orders.Envelope
}

func (s *sinkSpy) Publish(ctx context.Context, env orders.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envs = append(s.envs, env)
}

func (s *sinkSpy) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.envs))
	for i, e := range s.envs {
		out[i] = e.EventType
	}
	return out
}

// failingStore rejects appends until fixed, to exercise the retry path.
type failingStore struct {
	*memstore.Store
	mu   sync.Mutex
	fail bool
}

func (f *failingStore) Append(ctx context.Context, o orders.Order) (string, error) {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return "", errors.New("connection reset")
	}
	return f.Store.Append(ctx, o)
}

// blockingStore parks Append until released, to observe the SUBMITTING state.
type blockingStore struct {
	*memstore.Store
	enter   chan struct{}
	release chan struct{}
}

func (b *blockingStore) Append(ctx context.Context, o orders.Order) (string, error) {
	close(b.enter)
	<-b.release
	return b.Store.Append(ctx, o)
}

func newFlow(store orders.Store, events orders.EventSink) (*orders.Flow, *menu.Catalog, *cart.Ledger) {
	catalog := menu.NewCatalog(menu.Seed())
	ledger := cart.NewLedger()
	return &orders.Flow{
		Store:   store,
		Catalog: catalog,
		Cart:    ledger,
		Events:  events,
		Service: "test",
	}, catalog, ledger
}

func TestSubmit_HappyPath(t *testing.T) {
	store := memstore.New()
	sink := &sinkSpy{}
	flow, catalog, ledger := newFlow(store, sink)

	sub, err := flow.Begin(3) // Patatas Fritas, 8.00, stock 50
	require.NoError(t, err)
	assert.Equal(t, orders.StateIdle, sub.State())
	assert.Equal(t, 8.0, sub.Total())

	require.NoError(t, sub.SetQuantity(5))
	assert.Equal(t, 40.0, sub.Total())

	o, err := sub.Submit(context.Background(), "Ana", "600111222")
	require.NoError(t, err)
	assert.Equal(t, orders.StateConfirmed, sub.State())
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, 3, o.FoodID)
	assert.Equal(t, "Patatas Fritas", o.FoodName)
	assert.Equal(t, 5, o.Quantity)
	assert.Equal(t, 40.0, o.TotalAmount)
	assert.False(t, o.Timestamp.IsZero())

	it, _ := catalog.FindByID(3)
	assert.Equal(t, 45, it.Quantity, "stock decremented by exactly qty")

	entries := ledger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].Item.ID)
	assert.Equal(t, 5, entries[0].Quantity)

	require.Len(t, store.Snapshot(), 1)
	assert.Equal(t, []string{orders.EventOrderPlaced}, sink.types())
}

func TestSubmit_ValidationFirstFailureWins(t *testing.T) {
	store := memstore.New()
	flow, catalog, ledger := newFlow(store, nil)

	sub, err := flow.Begin(3)
	require.NoError(t, err)

	var ve *orders.ValidationError
	_, err = sub.Submit(context.Background(), "   ", "600111222")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)

	_, err = sub.Submit(context.Background(), "Ana", "  ")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "phone", ve.Field)

	// no partial side effects
	it, _ := catalog.FindByID(3)
	assert.Equal(t, 50, it.Quantity)
	assert.Empty(t, ledger.Entries())
	assert.Empty(t, store.Snapshot())
	assert.Equal(t, orders.StateIdle, sub.State(), "validation failure does not consume the submission")
}

func TestSubmit_InsufficientStock(t *testing.T) {
	store := memstore.New()
	flow, catalog, ledger := newFlow(store, nil)

	sub, err := flow.Begin(3)
	require.NoError(t, err)
	require.NoError(t, sub.SetQuantity(999))

	_, err = sub.Submit(context.Background(), "Ana", "600111222")
	assert.ErrorIs(t, err, menu.ErrInsufficientStock)

	it, _ := catalog.FindByID(3)
	assert.Equal(t, 50, it.Quantity)
	assert.Empty(t, ledger.Entries())
	assert.Empty(t, store.Snapshot(), "insufficient stock must not reach the remote store")
}

func TestSubmit_RemoteFailureThenRetry(t *testing.T) {
	store := &failingStore{Store: memstore.New(), fail: true}
	flow, catalog, ledger := newFlow(store, nil)

	sub, err := flow.Begin(1)
	require.NoError(t, err)
	require.NoError(t, sub.SetQuantity(2))

	var re *orders.RemoteError
	_, err = sub.Submit(context.Background(), "Ana", "600111222")
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "append", re.Op)
	assert.Equal(t, orders.StateFailed, sub.State())

	// nothing local mutated on failure
	it, _ := catalog.FindByID(1)
	assert.Equal(t, 40, it.Quantity)
	assert.Empty(t, ledger.Entries())

	// quantity may still be adjusted after a failure
	require.NoError(t, sub.SetQuantity(3))

	store.mu.Lock()
	store.fail = false
	store.mu.Unlock()

	o, err := sub.Submit(context.Background(), "Ana", "600111222")
	require.NoError(t, err)
	assert.Equal(t, orders.StateConfirmed, sub.State())
	assert.Equal(t, 3, o.Quantity)

	it, _ = catalog.FindByID(1)
	assert.Equal(t, 37, it.Quantity)
}

func TestSubmit_ConfirmedIsTerminal(t *testing.T) {
	flow, _, _ := newFlow(memstore.New(), nil)

	sub, err := flow.Begin(4)
	require.NoError(t, err)
	_, err = sub.Submit(context.Background(), "Ana", "600111222")
	require.NoError(t, err)

	_, err = sub.Submit(context.Background(), "Ana", "600111222")
	assert.ErrorIs(t, err, orders.ErrSubmitDone)

	assert.ErrorIs(t, sub.SetQuantity(2), orders.ErrQuantityLocked)
}

func TestSubmit_NonReentrantWhileInFlight(t *testing.T) {
	store := &blockingStore{
		Store:   memstore.New(),
		enter:   make(chan struct{}),
		release: make(chan struct{}),
	}
	flow, _, _ := newFlow(store, nil)

	sub, err := flow.Begin(2)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := sub.Submit(context.Background(), "Ana", "600111222")
		assert.NoError(t, err)
	}()

	<-store.enter
	assert.Equal(t, orders.StateSubmitting, sub.State())

	_, err = sub.Submit(context.Background(), "Ana", "600111222")
	assert.ErrorIs(t, err, orders.ErrSubmitInFlight)
	assert.ErrorIs(t, sub.SetQuantity(2), orders.ErrQuantityLocked)

	close(store.release)
	<-done
	assert.Equal(t, orders.StateConfirmed, sub.State())
}

func TestSubmit_MergeOnRepeat(t *testing.T) {
	store := memstore.New()
	flow, catalog, ledger := newFlow(store, nil)

	for _, qty := range []int{2, 3} {
		sub, err := flow.Begin(3)
		require.NoError(t, err)
		require.NoError(t, sub.SetQuantity(qty))
		_, err = sub.Submit(context.Background(), "Ana", "600111222")
		require.NoError(t, err)
	}

	entries := ledger.Entries()
	require.Len(t, entries, 1, "repeat submissions merge into one cart entry")
	assert.Equal(t, 5, entries[0].Quantity)

	it, _ := catalog.FindByID(3)
	assert.Equal(t, 45, it.Quantity)

	// two appends never collide, even with near-identical data
	assert.Len(t, store.Snapshot(), 2)
}

func TestRemoveFromCart_ExactInverse(t *testing.T) {
	flow, catalog, ledger := newFlow(memstore.New(), nil)

	sub, err := flow.Begin(3)
	require.NoError(t, err)
	require.NoError(t, sub.SetQuantity(5))
	_, err = sub.Submit(context.Background(), "Ana", "600111222")
	require.NoError(t, err)

	e, ok := flow.RemoveFromCart(3)
	require.True(t, ok)
	assert.Equal(t, 5, e.Quantity)

	it, _ := catalog.FindByID(3)
	assert.Equal(t, 50, it.Quantity, "removal restores the pre-submission stock")
	assert.Empty(t, ledger.Entries())
	assert.Equal(t, 0, ledger.TotalReserved())

	_, ok = flow.RemoveFromCart(3)
	assert.False(t, ok)
}

func TestBegin_UnknownItem(t *testing.T) {
	flow, _, _ := newFlow(memstore.New(), nil)
	_, err := flow.Begin(42)
	assert.ErrorIs(t, err, menu.ErrNotFound)
}

func TestSetQuantity_Invalid(t *testing.T) {
	flow, _, _ := newFlow(memstore.New(), nil)
	sub, err := flow.Begin(1)
	require.NoError(t, err)

	var ve *orders.ValidationError
	require.ErrorAs(t, sub.SetQuantity(0), &ve)
	assert.Equal(t, "quantity", ve.Field)
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to orders.State
		ok       bool
	}{
		{orders.StateIdle, orders.StateSubmitting, true},
		{orders.StateSubmitting, orders.StateConfirmed, true},
		{orders.StateSubmitting, orders.StateFailed, true},
		{orders.StateFailed, orders.StateSubmitting, true},
		{orders.StateConfirmed, orders.StateSubmitting, false},
		{orders.StateIdle, orders.StateConfirmed, false},
		{orders.StateFailed, orders.StateConfirmed, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, orders.CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}
