package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/auth"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/errs"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/metrics"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/repository"
)

// AuthResult is returned by registration and login.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// AuthService covers registration, login, logout, credential resolution
// and profile updates.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, p *model.Principal) error

	// Authenticate resolves a presented credential. Unknown, revoked or
	// malformed credentials resolve to the anonymous principal (nil, nil);
	// storage failures are returned.
	Authenticate(ctx context.Context, credential string) (*model.Principal, error)

	// UpdateUser lets a user change their own email or password. Admins may
	// update anyone.
	UpdateUser(ctx context.Context, p *model.Principal, userID int64, upd model.UserUpdate) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	issuer   *auth.TokenIssuer
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, issuer *auth.TokenIssuer, m *metrics.Metrics, log zerolog.Logger) AuthService {
	return &authService{users: users, sessions: sessions, issuer: issuer, metrics: m, log: log}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	defer s.metrics.ObserveSince("auth.register", time.Now())

	if name == "" || email == "" || password == "" {
		return nil, errs.NewBadRequestError("name, email, and password are required")
	}
	u, err := s.users.AddUser(ctx, model.NewUser{
		Name:     name,
		Email:    email,
		Password: password,
		Roles:    []model.RoleGrant{{Role: model.RoleDiner}},
	})
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, u)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	defer s.metrics.ObserveSince("auth.login", time.Now())

	u, err := s.users.GetUser(ctx, email, password)
	if err != nil {
		if errors.Is(err, errs.ErrUnknownUser) {
			s.metrics.Login(false)
		}
		return nil, err
	}
	return s.startSession(ctx, u)
}

func (s *authService) startSession(ctx context.Context, u *model.User) (*AuthResult, error) {
	token, err := s.issuer.Issue(*u, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("sign credential: %w", err)
	}
	if err := s.sessions.Issue(ctx, u.ID, token); err != nil {
		return nil, err
	}
	s.metrics.Login(true)
	s.metrics.SessionStarted()
	s.log.Info().Int64("user_id", u.ID).Msg("session started")
	return &AuthResult{User: u, Token: token}, nil
}

func (s *authService) Logout(ctx context.Context, p *model.Principal) error {
	defer s.metrics.ObserveSince("auth.logout", time.Now())

	if p == nil {
		return errs.ErrUnauthorized
	}
	if err := s.sessions.Revoke(ctx, p.Credential); err != nil {
		return err
	}
	s.metrics.SessionEnded()
	s.log.Info().Int64("user_id", p.ID).Msg("session ended")
	return nil
}

func (s *authService) Authenticate(ctx context.Context, credential string) (*model.Principal, error) {
	if credential == "" {
		return nil, nil
	}
	ok, err := s.sessions.IsValid(ctx, credential)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	claims, err := s.issuer.Parse(credential)
	if err != nil {
		s.log.Warn().Err(err).Msg("stored session carries an unverifiable credential")
		return nil, nil
	}
	return &model.Principal{User: claims.User(), Credential: credential}, nil
}

func (s *authService) UpdateUser(ctx context.Context, p *model.Principal, userID int64, upd model.UserUpdate) (*model.User, error) {
	defer s.metrics.ObserveSince("auth.update_user", time.Now())

	if p == nil {
		return nil, errs.ErrUnauthorized
	}
	if !p.IsSelf(userID) && !p.IsAdmin() {
		return nil, errs.NewForbiddenError("unauthorized")
	}
	return s.users.UpdateUser(ctx, userID, upd)
}
