package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/os44ua/comida-rapida/internal/menu"
)

func item(id int, name string) menu.Item {
	return menu.Item{ID: id, Name: name, Price: 10}
}

func TestLedger_UpsertMergesOnRepeat(t *testing.T) {
	l := NewLedger()

	l.Upsert(item(1, "a"), 2)
	l.Upsert(item(2, "b"), 1)
	l.Upsert(item(1, "a"), 3)

	entries := l.Entries()
	require.Len(t, entries, 2, "one entry per item id")
	assert.Equal(t, 5, entries[0].Quantity)
	assert.Equal(t, 1, entries[1].Quantity)
	assert.Equal(t, 6, l.TotalReserved())
}

func TestLedger_Remove(t *testing.T) {
	l := NewLedger()
	l.Upsert(item(1, "a"), 2)
	l.Upsert(item(2, "b"), 4)

	e, ok := l.Remove(2)
	require.True(t, ok)
	assert.Equal(t, 4, e.Quantity, "removed entry carries the quantity to restore")
	assert.Equal(t, 2, l.TotalReserved())

	_, ok = l.Remove(2)
	assert.False(t, ok, "removing an absent entry is a no-op")
}

func TestLedger_EmptyTotals(t *testing.T) {
	l := NewLedger()
	assert.Equal(t, 0, l.TotalReserved())
	assert.Empty(t, l.Entries())
}
