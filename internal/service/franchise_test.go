package service

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/errs"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/repository"
	repoMocks "github.com/Ki11erRabbit/jwt-pizza-service/internal/repository/mocks"
)

// memFranchises is an in-memory FranchiseRepository for scenario tests.
type memFranchises struct {
	users      map[string]model.FranchiseAdmin
	franchises []model.Franchise
	nextID     int64
}

var _ repository.FranchiseRepository = (*memFranchises)(nil)

func (m *memFranchises) CreateFranchise(_ context.Context, f model.NewFranchise) (*model.Franchise, error) {
	out := model.Franchise{Name: f.Name, Admins: []model.FranchiseAdmin{}, Stores: []model.Store{}}
	for _, a := range f.Admins {
		u, ok := m.users[a.Email]
		if !ok {
			return nil, errs.NewNotFoundError(fmt.Sprintf("unknown user for franchise admin %s provided", a.Email))
		}
		out.Admins = append(out.Admins, u)
	}
	m.nextID++
	out.ID = m.nextID
	m.franchises = append(m.franchises, out)
	return &out, nil
}

func (m *memFranchises) DeleteFranchise(_ context.Context, id int64) error {
	m.franchises = slices.DeleteFunc(m.franchises, func(f model.Franchise) bool { return f.ID == id })
	return nil
}

func (m *memFranchises) ListFranchises(_ context.Context, proj model.FranchiseProjection) ([]model.Franchise, error) {
	out := slices.Clone(m.franchises)
	if proj == model.ProjectionPublic {
		for i := range out {
			out[i].Admins = nil
		}
	}
	return out, nil
}

func (m *memFranchises) ListUserFranchises(_ context.Context, userID int64) ([]model.Franchise, error) {
	out := []model.Franchise{}
	for _, f := range m.franchises {
		if f.HasAdmin(userID) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFranchises) GetFranchise(_ context.Context, id int64) (*model.Franchise, error) {
	for i := range m.franchises {
		if m.franchises[i].ID == id {
			f := m.franchises[i]
			return &f, nil
		}
	}
	return nil, errs.NewNotFoundError(fmt.Sprintf("unknown franchise %d", id))
}

func (m *memFranchises) CreateStore(_ context.Context, franchiseID int64, s model.NewStore) (*model.Store, error) {
	for i := range m.franchises {
		if m.franchises[i].ID == franchiseID {
			m.nextID++
			st := model.Store{ID: m.nextID, FranchiseID: franchiseID, Name: s.Name}
			m.franchises[i].Stores = append(m.franchises[i].Stores, st)
			return &st, nil
		}
	}
	return nil, errs.NewNotFoundError(fmt.Sprintf("unknown franchise %d", franchiseID))
}

func (m *memFranchises) DeleteStore(_ context.Context, franchiseID, storeID int64) error {
	for i := range m.franchises {
		if m.franchises[i].ID == franchiseID {
			m.franchises[i].Stores = slices.DeleteFunc(m.franchises[i].Stores, func(s model.Store) bool { return s.ID == storeID })
		}
	}
	return nil
}

var (
	adminPrincipal = &model.Principal{User: model.User{ID: 1, Name: "常用名字", Roles: []model.RoleGrant{{Role: model.RoleAdmin}}}}
	dinerPrincipal = &model.Principal{User: model.User{ID: 2, Name: "pizza diner", Roles: []model.RoleGrant{{Role: model.RoleDiner}}}}
)

func TestFranchiseService_PocketScenario(t *testing.T) {
	ctx := context.Background()
	repo := &memFranchises{users: map[string]model.FranchiseAdmin{
		"f@x.com": {ID: 4, Name: "pocket owner", Email: "f@x.com"},
	}}
	svc := NewFranchiseService(repo, zerolog.Nop())

	f, err := svc.Create(ctx, adminPrincipal, model.NewFranchise{Name: "Pocket", Admins: []model.AdminRef{{Email: "f@x.com"}}})
	require.NoError(t, err)
	require.NotZero(t, f.ID)

	owner := &model.Principal{User: model.User{ID: 4, Roles: []model.RoleGrant{{Role: model.RoleFranchisee, ObjectID: f.ID}}}}
	s, err := svc.CreateStore(ctx, owner, f.ID, model.NewStore{Name: "Downtown"})
	require.NoError(t, err)
	assert.Equal(t, "Downtown", s.Name)

	require.NoError(t, svc.Delete(ctx, adminPrincipal, f.ID))

	list, err := svc.List(ctx, adminPrincipal)
	require.NoError(t, err)
	for _, got := range list {
		assert.NotEqual(t, "Pocket", got.Name)
		for _, st := range got.Stores {
			assert.NotEqual(t, "Downtown", st.Name)
		}
	}
}

func TestFranchiseService_List_ProjectionByRole(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		p    *model.Principal
		want model.FranchiseProjection
	}{
		{"admin", adminPrincipal, model.ProjectionFull},
		{"diner", dinerPrincipal, model.ProjectionPublic},
		{"anonymous", nil, model.ProjectionPublic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &repoMocks.MockFranchiseRepository{}
			repo.On("ListFranchises", ctx, tt.want).Return([]model.Franchise{}, nil)

			_, err := NewFranchiseService(repo, zerolog.Nop()).List(ctx, tt.p)

			assert.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestFranchiseService_ListForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("other users get an empty list without a lookup", func(t *testing.T) {
		repo := &repoMocks.MockFranchiseRepository{}

		got, err := NewFranchiseService(repo, zerolog.Nop()).ListForUser(ctx, dinerPrincipal, 4)

		require.NoError(t, err)
		assert.Empty(t, got)
		repo.AssertNotCalled(t, "ListUserFranchises")
	})

	t.Run("self", func(t *testing.T) {
		repo := &repoMocks.MockFranchiseRepository{}
		repo.On("ListUserFranchises", ctx, int64(2)).Return([]model.Franchise{{ID: 1}}, nil)

		got, err := NewFranchiseService(repo, zerolog.Nop()).ListForUser(ctx, dinerPrincipal, 2)

		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("admin", func(t *testing.T) {
		repo := &repoMocks.MockFranchiseRepository{}
		repo.On("ListUserFranchises", ctx, int64(4)).Return([]model.Franchise{}, nil)

		_, err := NewFranchiseService(repo, zerolog.Nop()).ListForUser(ctx, adminPrincipal, 4)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestFranchiseService_AdminOnly(t *testing.T) {
	ctx := context.Background()
	repo := &repoMocks.MockFranchiseRepository{}
	svc := NewFranchiseService(repo, zerolog.Nop())

	_, err := svc.Create(ctx, dinerPrincipal, model.NewFranchise{Name: "x"})
	assert.ErrorIs(t, err, errs.ErrForbidden)
	assert.Equal(t, "unable to create a franchise", err.Error())

	err = svc.Delete(ctx, dinerPrincipal, 1)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	err = svc.Delete(ctx, nil, 1)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	repo.AssertNotCalled(t, "CreateFranchise")
	repo.AssertNotCalled(t, "DeleteFranchise")
}

func TestFranchiseService_DeleteFailureIsPassedThrough(t *testing.T) {
	ctx := context.Background()
	repo := &repoMocks.MockFranchiseRepository{}
	repo.On("DeleteFranchise", ctx, int64(1)).Return(errs.NewInternalError("unable to delete franchise", nil))

	err := NewFranchiseService(repo, zerolog.Nop()).Delete(ctx, adminPrincipal, 1)

	assert.ErrorIs(t, err, errs.ErrInternal)
	assert.Equal(t, "unable to delete franchise", err.Error())
}

func TestFranchiseService_StoreAuthorization(t *testing.T) {
	ctx := context.Background()
	pocket := &model.Franchise{ID: 1, Name: "Pocket", Admins: []model.FranchiseAdmin{{ID: 4}}}
	owner := &model.Principal{User: model.User{ID: 4}}

	tests := []struct {
		name    string
		p       *model.Principal
		lookup  error
		allowed bool
		wantErr error
	}{
		{name: "admin", p: adminPrincipal, allowed: true},
		{name: "franchise admin", p: owner, allowed: true},
		{name: "unrelated diner", p: dinerPrincipal, wantErr: errs.ErrForbidden},
		{name: "unknown franchise", p: adminPrincipal, lookup: errs.NewNotFoundError("unknown franchise 1"), wantErr: errs.ErrForbidden},
		{name: "anonymous", p: nil, wantErr: errs.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &repoMocks.MockFranchiseRepository{}
			if tt.p != nil {
				if tt.lookup != nil {
					repo.On("GetFranchise", ctx, int64(1)).Return(nil, tt.lookup)
				} else {
					repo.On("GetFranchise", ctx, int64(1)).Return(pocket, nil)
				}
			}
			if tt.allowed {
				repo.On("CreateStore", ctx, int64(1), model.NewStore{Name: "Downtown"}).Return(&model.Store{ID: 3, Name: "Downtown"}, nil)
				repo.On("DeleteStore", ctx, int64(1), int64(3)).Return(nil)
			}
			svc := NewFranchiseService(repo, zerolog.Nop())

			_, createErr := svc.CreateStore(ctx, tt.p, 1, model.NewStore{Name: "Downtown"})
			deleteErr := svc.DeleteStore(ctx, tt.p, 1, 3)

			if tt.wantErr != nil {
				assert.ErrorIs(t, createErr, tt.wantErr)
				assert.ErrorIs(t, deleteErr, tt.wantErr)
			} else {
				assert.NoError(t, createErr)
				assert.NoError(t, deleteErr)
			}
			repo.AssertExpectations(t)
		})
	}
}
