package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_FindByID(t *testing.T) {
	c := NewCatalog(Seed())

	it, ok := c.FindByID(3)
	require.True(t, ok)
	assert.Equal(t, "Patatas Fritas", it.Name)
	assert.Equal(t, 8.0, it.Price)
	assert.Equal(t, 50, it.Quantity)

	_, ok = c.FindByID(99)
	assert.False(t, ok)
}

func TestCatalog_Decrement(t *testing.T) {
	c := NewCatalog(Seed())

	require.NoError(t, c.Decrement(3, 5))
	it, _ := c.FindByID(3)
	assert.Equal(t, 45, it.Quantity)

	// down to zero is fine, below is not
	require.NoError(t, c.Decrement(3, 45))
	it, _ = c.FindByID(3)
	assert.Equal(t, 0, it.Quantity)

	err := c.Decrement(3, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	it, _ = c.FindByID(3)
	assert.Equal(t, 0, it.Quantity, "failed decrement must not mutate stock")
}

func TestCatalog_DecrementUnknownItem(t *testing.T) {
	c := NewCatalog(Seed())
	assert.ErrorIs(t, c.Decrement(99, 1), ErrNotFound)
}

func TestCatalog_IncrementRestores(t *testing.T) {
	c := NewCatalog(Seed())

	require.NoError(t, c.Decrement(4, 10))
	c.Increment(4, 10)
	it, _ := c.FindByID(4)
	assert.Equal(t, 30, it.Quantity)

	// unknown item is a no-op
	c.Increment(99, 10)
}

func TestCatalog_ItemsIsSnapshot(t *testing.T) {
	c := NewCatalog(Seed())

	items := c.Items()
	items[0].Quantity = 0

	it, _ := c.FindByID(items[0].ID)
	assert.Equal(t, 40, it.Quantity, "mutating the snapshot must not touch the catalog")
}
