package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, p *model.Principal) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, credential string) (*model.Principal, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Principal), args.Error(1)
}

func (m *MockAuthService) UpdateUser(ctx context.Context, p *model.Principal, userID int64, upd model.UserUpdate) (*model.User, error) {
	args := m.Called(ctx, p, userID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockFranchiseService struct {
	mock.Mock
}

func (m *MockFranchiseService) List(ctx context.Context, p *model.Principal) ([]model.Franchise, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Franchise), args.Error(1)
}

func (m *MockFranchiseService) ListForUser(ctx context.Context, p *model.Principal, userID int64) ([]model.Franchise, error) {
	args := m.Called(ctx, p, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Franchise), args.Error(1)
}

func (m *MockFranchiseService) Create(ctx context.Context, p *model.Principal, f model.NewFranchise) (*model.Franchise, error) {
	args := m.Called(ctx, p, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Franchise), args.Error(1)
}

func (m *MockFranchiseService) Delete(ctx context.Context, p *model.Principal, franchiseID int64) error {
	args := m.Called(ctx, p, franchiseID)
	return args.Error(0)
}

func (m *MockFranchiseService) CreateStore(ctx context.Context, p *model.Principal, franchiseID int64, s model.NewStore) (*model.Store, error) {
	args := m.Called(ctx, p, franchiseID, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Store), args.Error(1)
}

func (m *MockFranchiseService) DeleteStore(ctx context.Context, p *model.Principal, franchiseID, storeID int64) error {
	args := m.Called(ctx, p, franchiseID, storeID)
	return args.Error(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) GetMenu(ctx context.Context) ([]model.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockOrderService) AddMenuItem(ctx context.Context, p *model.Principal, item model.MenuItem) ([]model.MenuItem, error) {
	args := m.Called(ctx, p, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockOrderService) AddMenuItemWithImage(ctx context.Context, p *model.Principal, item model.MenuItem, r io.Reader, filename, contentType string, size int64) ([]model.MenuItem, error) {
	args := m.Called(ctx, p, item, r, filename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockOrderService) GetOrders(ctx context.Context, p *model.Principal, page int) (*model.OrderPage, error) {
	args := m.Called(ctx, p, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

func (m *MockOrderService) CreateOrder(ctx context.Context, p *model.Principal, o model.NewOrder) (*service.OrderReceipt, error) {
	args := m.Called(ctx, p, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderReceipt), args.Error(1)
}
