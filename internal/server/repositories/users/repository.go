// Package users stores the fake backend's accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/useradmin/internal/server/models"
)

// Repository persists users. Lookups of unknown ids or emails return
// common.ErrorNotFound; a duplicate email returns common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	List(ctx context.Context, f models.UserFilter) ([]*models.User, int, error)
}
