package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/server/auth"
	"github.com/dmitrijs2005/useradmin/internal/server/models"
)

// Fixture is a seeded account with its clear-text password.
type Fixture struct {
	Email     string
	Password  string
	FullName  string
	RoleID    int
	IsActive  bool
	CreatedAt time.Time
}

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

// DefaultFixtures are the accounts a fresh development backend starts with.
var DefaultFixtures = []Fixture{
	{Email: "admin@umpisa.com", Password: "Test@123", FullName: "Umpisa Admin", RoleID: models.RoleAdmin, IsActive: true, CreatedAt: day("2024-01-01")},
	{Email: "admin@example.com", Password: "password", FullName: "Admin User", RoleID: models.RoleAdmin, IsActive: true, CreatedAt: day("2024-01-15")},
	{Email: "john@example.com", Password: "password", FullName: "John Doe", RoleID: models.RoleUser, IsActive: true, CreatedAt: day("2024-02-20")},
	{Email: "jane@example.com", Password: "password", FullName: "Jane Smith", RoleID: models.RoleUser, IsActive: true, CreatedAt: day("2024-03-10")},
	{Email: "bob@example.com", Password: "password", FullName: "Bob Johnson", RoleID: models.RoleUser, IsActive: false, CreatedAt: day("2024-04-05")},
}

// Seed inserts fixtures in order, so ids follow the slice positions on an
// empty repository.
func (s *UserService) Seed(ctx context.Context, fixtures []Fixture) error {
	for _, f := range fixtures {
		hash, err := auth.HashPassword(f.Password, s.bcryptCost)
		if err != nil {
			return fmt.Errorf("error hashing password for %s: %w", f.Email, err)
		}
		if _, err := s.repo.Create(ctx, &models.User{
			Email:        f.Email,
			FullName:     f.FullName,
			PasswordHash: hash,
			RoleID:       f.RoleID,
			IsActive:     f.IsActive,
			CreatedAt:    f.CreatedAt,
		}); err != nil {
			return fmt.Errorf("error seeding %s: %w", f.Email, err)
		}
	}
	return nil
}
