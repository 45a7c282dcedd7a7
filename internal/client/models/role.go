package models

import "strings"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	RoleIDAdmin = 1
	RoleIDUser  = 2
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// RoleID maps a role name to its backend id. Unknown names map to the
// regular user role.
func RoleID(name string) int {
	if strings.EqualFold(strings.TrimSpace(name), RoleAdmin) {
		return RoleIDAdmin
	}
	return RoleIDUser
}

// RoleName maps a backend role id to its name; only id 1 is "admin".
func RoleName(id int) string {
	if id == RoleIDAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// StatusFromActive converts the backend isActive flag to a status label.
func StatusFromActive(active bool) string {
	if active {
		return StatusActive
	}
	return StatusInactive
}
