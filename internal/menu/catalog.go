package menu

import (
	"errors"
	"sync"
)

var (
	ErrNotFound          = errors.New("menu item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Item struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Desc     string  `json:"desc"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"` // remaining stock
	Image    string  `json:"image"`
}

// Catalog holds the sellable items and their remaining stock. Stock is only
// mutated through Decrement/Increment; readers get copies.
type Catalog struct {
	mu    sync.Mutex
	items []Item
}

func NewCatalog(items []Item) *Catalog {
	c := &Catalog{items: make([]Item, len(items))}
	copy(c.items, items)
	return c
}

// Seed returns the startup menu.
func Seed() []Item {
	return []Item{
		{ID: 1, Name: "Hamburguesa de Pollo", Quantity: 40, Desc: "Hamburguesa de pollo frito - lechuga, tomate, queso y mayonesa", Price: 24, Image: "cb.jpeg"},
		{ID: 2, Name: "Hamburguesa Vegetariana", Quantity: 30, Desc: "Hamburguesa verde - lechuga, tomate, queso vegano y mayonesa", Price: 22, Image: "vb.jpg"},
		{ID: 3, Name: "Patatas Fritas", Quantity: 50, Desc: "Patatas crujientes con sal y especias", Price: 8, Image: "chips.jpeg"},
		{ID: 4, Name: "Helado", Quantity: 30, Desc: "Helado casero de vainilla con toppings", Price: 6, Image: "ic.jpeg"},
	}
}

// Items returns a snapshot of the menu in display order.
func (c *Catalog) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) FindByID(id int) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Decrement reserves qty units of stock. Remaining stock never goes negative.
func (c *Catalog) Decrement(id, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		if qty > c.items[i].Quantity {
			return ErrInsufficientStock
		}
		c.items[i].Quantity -= qty
		return nil
	}
	return ErrNotFound
}

// Increment restores qty units of stock on cart removal. There is no upper
// bound check: restores always match a prior decrement.
func (c *Catalog) Increment(id, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Quantity += qty
			return
		}
	}
}
