package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/os44ua/comida-rapida/internal/orders"
	"github.com/os44ua/comida-rapida/internal/store/memstore"
)

func TestAppend_GeneratesDistinctKeys(t *testing.T) {
	s := memstore.New()
	o := orders.Order{FoodID: 1, FoodName: "Helado", Quantity: 2, TotalAmount: 12, Timestamp: time.Now()}

	id1, err := s.Append(context.Background(), o)
	require.NoError(t, err)
	id2, err := s.Append(context.Background(), o)
	require.NoError(t, err)

	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2, "identical payloads never collide")
	assert.Len(t, s.Snapshot(), 2)
}

func TestUpdate_PatchesOnlySetFields(t *testing.T) {
	s := memstore.New()
	id, err := s.Append(context.Background(), orders.Order{
		FoodName: "Helado", Quantity: 2, TotalAmount: 12, CustomerName: "Ana",
	})
	require.NoError(t, err)

	qty := 4
	require.NoError(t, s.Update(context.Background(), id, orders.OrderPatch{Quantity: &qty}))

	got := s.Snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Quantity)
	assert.Equal(t, 12.0, got[0].TotalAmount, "unset patch field left untouched")
	assert.Equal(t, "Ana", got[0].CustomerName)

	assert.ErrorIs(t, s.Update(context.Background(), "missing", orders.OrderPatch{Quantity: &qty}), orders.ErrOrderNotFound)
}

func TestRemove(t *testing.T) {
	s := memstore.New()
	id, err := s.Append(context.Background(), orders.Order{FoodName: "Helado"})
	require.NoError(t, err)

	require.NoError(t, s.Remove(context.Background(), id))
	assert.Empty(t, s.Snapshot())
	assert.ErrorIs(t, s.Remove(context.Background(), id), orders.ErrOrderNotFound)
}

func TestSubscribe_DeliversInitialAndEveryChange(t *testing.T) {
	s := memstore.New()
	var deliveries [][]orders.Order
	unsub, err := s.Subscribe(context.Background(), func(snap []orders.Order) {
		deliveries = append(deliveries, snap)
	}, nil)
	require.NoError(t, err)

	require.Len(t, deliveries, 1, "initial load delivered on subscribe")
	assert.Empty(t, deliveries[0])

	id, _ := s.Append(context.Background(), orders.Order{FoodName: "Helado"})
	qty := 3
	_ = s.Update(context.Background(), id, orders.OrderPatch{Quantity: &qty})
	_ = s.Remove(context.Background(), id)

	require.Len(t, deliveries, 4)
	assert.Len(t, deliveries[1], 1)
	assert.Equal(t, 3, deliveries[2][0].Quantity)
	assert.Empty(t, deliveries[3])

	unsub()
	_, _ = s.Append(context.Background(), orders.Order{FoodName: "Helado"})
	assert.Len(t, deliveries, 4, "no delivery after unsubscribe")
}

func TestSubscribe_MultipleSubscribers(t *testing.T) {
	s := memstore.New()
	var a, b int
	unsubA, err := s.Subscribe(context.Background(), func([]orders.Order) { a++ }, nil)
	require.NoError(t, err)
	unsubB, err := s.Subscribe(context.Background(), func([]orders.Order) { b++ }, nil)
	require.NoError(t, err)

	_, _ = s.Append(context.Background(), orders.Order{FoodName: "Helado"})
	assert.Equal(t, 2, a)
	assert.Equal(t, 2, b)

	unsubA()
	_, _ = s.Append(context.Background(), orders.Order{FoodName: "Helado"})
	assert.Equal(t, 2, a)
	assert.Equal(t, 3, b)
	unsubB()
}
