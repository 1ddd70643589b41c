package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
)

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Issue(ctx context.Context, userID int64, credential string) error {
	args := m.Called(ctx, userID, credential)
	return args.Error(0)
}

func (m *MockSessionRepository) IsValid(ctx context.Context, credential string) (bool, error) {
	args := m.Called(ctx, credential)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepository) Revoke(ctx context.Context, credential string) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) AddUser(ctx context.Context, u model.NewUser) (*model.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUser(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, userID int64, upd model.UserUpdate) (*model.User, error) {
	args := m.Called(ctx, userID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockFranchiseRepository struct {
	mock.Mock
}

func (m *MockFranchiseRepository) CreateFranchise(ctx context.Context, f model.NewFranchise) (*model.Franchise, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Franchise), args.Error(1)
}

func (m *MockFranchiseRepository) DeleteFranchise(ctx context.Context, franchiseID int64) error {
	args := m.Called(ctx, franchiseID)
	return args.Error(0)
}

func (m *MockFranchiseRepository) ListFranchises(ctx context.Context, proj model.FranchiseProjection) ([]model.Franchise, error) {
	args := m.Called(ctx, proj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Franchise), args.Error(1)
}

func (m *MockFranchiseRepository) ListUserFranchises(ctx context.Context, userID int64) ([]model.Franchise, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Franchise), args.Error(1)
}

func (m *MockFranchiseRepository) GetFranchise(ctx context.Context, franchiseID int64) (*model.Franchise, error) {
	args := m.Called(ctx, franchiseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Franchise), args.Error(1)
}

func (m *MockFranchiseRepository) CreateStore(ctx context.Context, franchiseID int64, s model.NewStore) (*model.Store, error) {
	args := m.Called(ctx, franchiseID, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Store), args.Error(1)
}

func (m *MockFranchiseRepository) DeleteStore(ctx context.Context, franchiseID, storeID int64) error {
	args := m.Called(ctx, franchiseID, storeID)
	return args.Error(0)
}

type MockMenuRepository struct {
	mock.Mock
}

func (m *MockMenuRepository) GetMenu(ctx context.Context) ([]model.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) AddMenuItem(ctx context.Context, item model.MenuItem) (*model.MenuItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetOrders(ctx context.Context, dinerID int64, page int) (*model.OrderPage, error) {
	args := m.Called(ctx, dinerID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

func (m *MockOrderRepository) AddDinerOrder(ctx context.Context, dinerID int64, o model.NewOrder) (*model.Order, error) {
	args := m.Called(ctx, dinerID, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}
