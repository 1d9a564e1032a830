package orders

import (
	"sort"
	"time"
)

// Order is the durable record shape shared with every subscriber. The store
// assigns ID on append; FoodID/FoodName are a snapshot of the menu item at
// submission time, never a live reference.
type Order struct {
	ID           string    `json:"id,omitempty"`
	FoodID       int       `json:"foodId"`
	FoodName     string    `json:"foodName"`
	Quantity     int       `json:"quantity"`
	TotalAmount  float64   `json:"totalAmount"`
	CustomerName string    `json:"customerName"`
	Phone        string    `json:"phone"`
	Timestamp    time.Time `json:"timestamp"`
}

// UnitPrice is the implied per-unit price at the time of the last edit.
func (o Order) UnitPrice() float64 {
	if o.Quantity == 0 {
		return 0
	}
	return o.TotalAmount / float64(o.Quantity)
}

// SortNewestFirst orders a snapshot descending by timestamp, in place.
func SortNewestFirst(os []Order) {
	sort.SliceStable(os, func(i, j int) bool {
		return os[i].Timestamp.After(os[j].Timestamp)
	})
}
