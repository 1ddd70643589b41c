// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) inside this directory.
package repository

import (
	"context"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
)

// SessionRepository tracks which session credentials are live.
// Validity is purely presence-based; credentials are never parsed here.
type SessionRepository interface {
	// Issue binds credential to userID. A user may hold many sessions.
	Issue(ctx context.Context, userID int64, credential string) error

	// IsValid reports whether credential has been issued and not revoked.
	IsValid(ctx context.Context, credential string) (bool, error)

	// Revoke forgets credential. Unknown credentials are a no-op.
	Revoke(ctx context.Context, credential string) error
}

// UserRepository manages users and their role grants.
type UserRepository interface {
	// AddUser hashes the password, stores the user and each role grant.
	// Franchisee grants name their franchise in Object; unknown names fail
	// with errs.ErrNotFound.
	AddUser(ctx context.Context, u model.NewUser) (*model.User, error)

	// GetUser returns the user owning email when password verifies.
	// Any mismatch yields errs.ErrUnknownUser.
	GetUser(ctx context.Context, email, password string) (*model.User, error)

	// UpdateUser changes only the supplied fields and returns the refreshed user.
	UpdateUser(ctx context.Context, userID int64, upd model.UserUpdate) (*model.User, error)
}

// FranchiseRepository manages franchises, their stores and franchisee grants.
type FranchiseRepository interface {
	CreateFranchise(ctx context.Context, f model.NewFranchise) (*model.Franchise, error)

	// DeleteFranchise removes the franchise, its stores and its franchisee
	// grants atomically.
	DeleteFranchise(ctx context.Context, franchiseID int64) error

	ListFranchises(ctx context.Context, proj model.FranchiseProjection) ([]model.Franchise, error)
	ListUserFranchises(ctx context.Context, userID int64) ([]model.Franchise, error)
	GetFranchise(ctx context.Context, franchiseID int64) (*model.Franchise, error)

	CreateStore(ctx context.Context, franchiseID int64, s model.NewStore) (*model.Store, error)
	// DeleteStore only deletes a store belonging to franchiseID.
	DeleteStore(ctx context.Context, franchiseID, storeID int64) error
}

// MenuRepository serves the append-only catalog.
type MenuRepository interface {
	GetMenu(ctx context.Context) ([]model.MenuItem, error)
	AddMenuItem(ctx context.Context, item model.MenuItem) (*model.MenuItem, error)
}

// OrderRepository stores diner orders.
type OrderRepository interface {
	// GetOrders returns the 1-based page of dinerID's orders.
	GetOrders(ctx context.Context, dinerID int64, page int) (*model.OrderPage, error)

	// AddDinerOrder stores the order, snapshotting each line's description
	// and price from the catalog.
	AddDinerOrder(ctx context.Context, dinerID int64, o model.NewOrder) (*model.Order, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// NewPageQuery converts a 1-based page number into a limit/offset pair.
// Pages below 1 are treated as the first page.
func NewPageQuery(page, perPage int) PageQuery {
	if page < 1 {
		page = 1
	}
	return PageQuery{Limit: perPage, Offset: (page - 1) * perPage}
}
