package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
)

// Client is the console's view of the user administration API.
type Client interface {
	Close() error
	SetToken(token string)
	Ping(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context) error
	ListUsers(ctx context.Context, params ListParams) (*UserPage, error)
	GetUser(ctx context.Context, id int64) (*models.APIUser, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*models.APIUser, error)
	UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*models.APIUser, error)
	DeactivateUser(ctx context.Context, id int64) error
	ReactivateUser(ctx context.Context, id int64) (*models.APIUser, error)
	RegeneratePassword(ctx context.Context, id int64) (*RegeneratedPassword, error)
}

type LoginResult struct {
	Token string
	User  models.APIUser
}

// ListParams is the query of GET /users/retrieve. Zero values are omitted.
type ListParams struct {
	Search string
	Status string
	Limit  int
	Page   int
}

func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	return v
}

type PageMeta struct {
	Total       int `json:"total"`
	PerPage     int `json:"perPage"`
	CurrentPage int `json:"currentPage"`
	LastPage    int `json:"lastPage"`
}

type UserPage struct {
	Users []models.APIUser
	Meta  PageMeta
}

type CreateUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	RoleID   int    `json:"roleId"`
}

// UpdateUserInput is a partial update; empty fields are not sent.
type UpdateUserInput struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	FullName string `json:"fullName,omitempty"`
	RoleID   int    `json:"roleId,omitempty"`
}

type RegeneratedPassword struct {
	NewPassword string `json:"newPassword"`
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
}
