// Package services contains the fake backend's business logic: sign-in,
// token revocation and user administration over a users.Repository.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/common"
	"github.com/dmitrijs2005/useradmin/internal/server/auth"
	"github.com/dmitrijs2005/useradmin/internal/server/models"
	"github.com/dmitrijs2005/useradmin/internal/server/repositories/users"
	"github.com/jonboulle/clockwork"
)

var ErrSelfDeactivation = errors.New("you cannot deactivate your own account")

// RegeneratedPasswordLength is the length of passwords issued by
// RegeneratePassword.
const RegeneratedPasswordLength = 12

type CreateUserInput struct {
	Email    string
	Password string
	FullName string
	RoleID   int
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Email    *string
	Password *string
	FullName *string
	RoleID   *int
}

// UserService provides the operations behind the REST endpoints.
type UserService struct {
	repo       users.Repository
	tokens     *auth.Manager
	clock      clockwork.Clock
	bcryptCost int

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewUserService(repo users.Repository, tokens *auth.Manager, clock clockwork.Clock, bcryptCost int) *UserService {
	return &UserService{
		repo:       repo,
		tokens:     tokens,
		clock:      clock,
		bcryptCost: bcryptCost,
		revoked:    make(map[string]time.Time),
	}
}

// Login verifies credentials and mints a token. Unknown emails and wrong
// passwords are indistinguishable; deactivated accounts are refused.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", common.ErrorInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", common.ErrorInactiveAccount
	}

	token, err := s.tokens.GenerateToken(user.ID, user.RoleID)
	if err != nil {
		return nil, "", fmt.Errorf("error generating token: %w", err)
	}
	return user, token, nil
}

// Authenticate parses a bearer token and rejects revoked ones.
func (s *UserService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
	if claims.ExpiresAt != nil {
		s.revoked[claims.ID] = claims.ExpiresAt.Time
	}
}

func (s *UserService) List(ctx context.Context, f models.UserFilter) ([]*models.User, int, error) {
	return s.repo.List(ctx, f)
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	return s.repo.Create(ctx, &models.User{
		Email:        strings.TrimSpace(in.Email),
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		RoleID:       in.RoleID,
		IsActive:     true,
	})
}

func (s *UserService) Update(ctx context.Context, id int64, in UpdateUserInput) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.RoleID != nil {
		user.RoleID = *in.RoleID
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		user.PasswordHash = hash
	}

	return s.repo.Update(ctx, user)
}

// Deactivate marks the account inactive. Admins cannot deactivate
// themselves.
func (s *UserService) Deactivate(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrSelfDeactivation
	}
	_, err := s.setActive(ctx, id, false)
	return err
}

func (s *UserService) Reactivate(ctx context.Context, id int64) (*models.User, error) {
	return s.setActive(ctx, id, true)
}

func (s *UserService) setActive(ctx context.Context, id int64, active bool) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	return s.repo.Update(ctx, user)
}

// RegeneratePassword replaces the password with a random one and returns it
// in clear text exactly once.
func (s *UserService) RegeneratePassword(ctx context.Context, id int64) (*models.User, string, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	password, err := common.GeneratePassword(RegeneratedPasswordLength)
	if err != nil {
		return nil, "", fmt.Errorf("error generating password: %w", err)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("error hashing password: %w", err)
	}
	user.PasswordHash = hash

	user, err = s.repo.Update(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, password, nil
}
