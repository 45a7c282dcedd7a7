// Package models holds the fake backend's domain types.
package models

import (
	"strings"
	"time"
)

const (
	RoleAdmin = 1
	RoleUser  = 2
)

// Account status names accepted by the list filter.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash []byte
	RoleID       int
	IsActive     bool
	CreatedAt    time.Time
}

func (u *User) IsAdmin() bool {
	return u.RoleID == RoleAdmin
}

// UserFilter selects a page of users. Search matches name or email,
// case-insensitively. An empty Status matches every account.
type UserFilter struct {
	Search string
	Status string
	Limit  int
	Page   int
}

// Matches reports whether u passes the search and status parts of f.
func (f UserFilter) Matches(u *User) bool {
	switch f.Status {
	case StatusActive:
		if !u.IsActive {
			return false
		}
	case StatusInactive:
		if u.IsActive {
			return false
		}
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	return search == "" ||
		strings.Contains(strings.ToLower(u.FullName), search) ||
		strings.Contains(strings.ToLower(u.Email), search)
}
