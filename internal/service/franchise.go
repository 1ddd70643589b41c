package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/errs"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/repository"
)

// FranchiseService decides who may see and change franchises and stores.
type FranchiseService interface {
	// List returns every franchise. Admins get the full projection.
	List(ctx context.Context, p *model.Principal) ([]model.Franchise, error)
	// ListForUser is empty unless p is userID or an admin.
	ListForUser(ctx context.Context, p *model.Principal, userID int64) ([]model.Franchise, error)
	Create(ctx context.Context, p *model.Principal, f model.NewFranchise) (*model.Franchise, error)
	Delete(ctx context.Context, p *model.Principal, franchiseID int64) error
	CreateStore(ctx context.Context, p *model.Principal, franchiseID int64, s model.NewStore) (*model.Store, error)
	DeleteStore(ctx context.Context, p *model.Principal, franchiseID, storeID int64) error
}

type franchiseService struct {
	repo repository.FranchiseRepository
	log  zerolog.Logger
}

func NewFranchiseService(repo repository.FranchiseRepository, log zerolog.Logger) FranchiseService {
	return &franchiseService{repo: repo, log: log}
}

// projectionFor picks what p may see of a franchise.
func projectionFor(p *model.Principal) model.FranchiseProjection {
	if p.IsAdmin() {
		return model.ProjectionFull
	}
	return model.ProjectionPublic
}

func (s *franchiseService) List(ctx context.Context, p *model.Principal) ([]model.Franchise, error) {
	return s.repo.ListFranchises(ctx, projectionFor(p))
}

func (s *franchiseService) ListForUser(ctx context.Context, p *model.Principal, userID int64) ([]model.Franchise, error) {
	if p == nil {
		return nil, errs.ErrUnauthorized
	}
	if !p.IsSelf(userID) && !p.IsAdmin() {
		return []model.Franchise{}, nil
	}
	return s.repo.ListUserFranchises(ctx, userID)
}

func (s *franchiseService) Create(ctx context.Context, p *model.Principal, f model.NewFranchise) (*model.Franchise, error) {
	if err := requireAdmin(p, "unable to create a franchise"); err != nil {
		return nil, err
	}
	out, err := s.repo.CreateFranchise(ctx, f)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("franchise_id", out.ID).Str("name", out.Name).Msg("franchise created")
	return out, nil
}

func (s *franchiseService) Delete(ctx context.Context, p *model.Principal, franchiseID int64) error {
	if err := requireAdmin(p, "unable to delete a franchise"); err != nil {
		return err
	}
	if err := s.repo.DeleteFranchise(ctx, franchiseID); err != nil {
		return err
	}
	s.log.Info().Int64("franchise_id", franchiseID).Msg("franchise deleted")
	return nil
}

func (s *franchiseService) CreateStore(ctx context.Context, p *model.Principal, franchiseID int64, st model.NewStore) (*model.Store, error) {
	if err := s.authorizeStores(ctx, p, franchiseID, "unable to create a store"); err != nil {
		return nil, err
	}
	return s.repo.CreateStore(ctx, franchiseID, st)
}

func (s *franchiseService) DeleteStore(ctx context.Context, p *model.Principal, franchiseID, storeID int64) error {
	if err := s.authorizeStores(ctx, p, franchiseID, "unable to delete a store"); err != nil {
		return err
	}
	return s.repo.DeleteStore(ctx, franchiseID, storeID)
}

// authorizeStores admits admins and the franchise's own admins. An unknown
// franchise is reported as forbidden, not as missing.
func (s *franchiseService) authorizeStores(ctx context.Context, p *model.Principal, franchiseID int64, deny string) error {
	if p == nil {
		return errs.ErrUnauthorized
	}
	f, err := s.repo.GetFranchise(ctx, franchiseID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.NewForbiddenError(deny)
		}
		return err
	}
	if !p.IsAdmin() && !f.HasAdmin(p.ID) {
		return errs.NewForbiddenError(deny)
	}
	return nil
}
