package model

import "github.com/shopspring/decimal"

// MenuItem is an orderable catalog entry. Image is either a plain file name
// or an object storage key under "menu/".
type MenuItem struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
}
