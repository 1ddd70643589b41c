package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a diner's order header with its lines.
type Order struct {
	ID          int64       `json:"id"`
	DinerID     int64       `json:"dinerId,omitempty"`
	FranchiseID int64       `json:"franchiseId"`
	StoreID     int64       `json:"storeId"`
	Date        time.Time   `json:"date"`
	Items       []OrderItem `json:"items"`
}

// Total sums the line prices.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Price)
	}
	return total
}

// OrderItem is one line of an order. Description and Price are copied from
// the catalog when the order is placed.
type OrderItem struct {
	ID          int64           `json:"id,omitempty"`
	MenuID      int64           `json:"menuId" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// NewOrder is the order placement payload.
type NewOrder struct {
	FranchiseID int64       `json:"franchiseId" validate:"required"`
	StoreID     int64       `json:"storeId" validate:"required"`
	Items       []OrderItem `json:"items" validate:"required,min=1,dive"`
}

// OrderPage is one page of a diner's order history.
type OrderPage struct {
	DinerID int64   `json:"dinerId"`
	Orders  []Order `json:"orders"`
	Page    int     `json:"page"`
}
