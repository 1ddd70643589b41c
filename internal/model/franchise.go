package model

import "github.com/shopspring/decimal"

// FranchiseProjection selects which fields of a franchise a listing returns.
type FranchiseProjection int

const (
	// ProjectionPublic returns each franchise with its store ids and names only.
	ProjectionPublic FranchiseProjection = iota
	// ProjectionFull adds admin identities and per-store revenue.
	ProjectionFull
)

// Franchise groups stores under one brand owner.
type Franchise struct {
	ID     int64            `json:"id"`
	Name   string           `json:"name"`
	Admins []FranchiseAdmin `json:"admins,omitempty"`
	Stores []Store          `json:"stores"`
}

// FranchiseAdmin is the public identity of a user holding a franchisee grant.
type FranchiseAdmin struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HasAdmin reports whether userID administers f.
func (f *Franchise) HasAdmin(userID int64) bool {
	for _, a := range f.Admins {
		if a.ID == userID {
			return true
		}
	}
	return false
}

// Store is a physical location of a franchise.
// TotalRevenue is only set by the full projection.
type Store struct {
	ID           int64            `json:"id"`
	FranchiseID  int64            `json:"franchiseId,omitempty"`
	Name         string           `json:"name"`
	TotalRevenue *decimal.Decimal `json:"totalRevenue,omitempty"`
}

// AdminRef names a franchise admin by email on creation.
type AdminRef struct {
	Email string `json:"email" validate:"required,email"`
}

// NewFranchise is the creation payload.
type NewFranchise struct {
	Name   string     `json:"name" validate:"required"`
	Admins []AdminRef `json:"admins" validate:"dive"`
}

// NewStore is the store creation payload.
type NewStore struct {
	Name string `json:"name" validate:"required"`
}
