package cart

import (
	"sync"

	"github.com/os44ua/comida-rapida/internal/menu"
)

// Entry is a pending reservation: quantity held against catalog stock for an
// item, not yet released. One entry per item id.
type Entry struct {
	Item     menu.Item `json:"item"`
	Quantity int       `json:"quantity"`
}

type Ledger struct {
	mu      sync.Mutex
	entries []Entry
}

func NewLedger() *Ledger { return &Ledger{} }

// Upsert adds qty for the item, merging into an existing entry if present.
func (l *Ledger) Upsert(item menu.Item, qty int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].Item.ID == item.ID {
			l.entries[i].Quantity += qty
			return
		}
	}
	l.entries = append(l.entries, Entry{Item: item, Quantity: qty})
}

// Remove drops the entry for id and returns it. The caller is responsible for
// restoring the removed quantity to the catalog.
func (l *Ledger) Remove(id int) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		if e.Item.ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return e, true
		}
	}
	return Entry{}, false
}

// TotalReserved sums reserved quantities across all entries (cart badge).
func (l *Ledger) TotalReserved() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, e := range l.entries {
		total += e.Quantity
	}
	return total
}

func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
