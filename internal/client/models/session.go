package models

// Session is the authenticated identity held by the console. Token is kept
// out of JSON because it is persisted in its own slot.
type Session struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	RoleID   int    `json:"roleId"`
	IsActive bool   `json:"isActive"`
	Token    string `json:"-"`
}

// IsAdmin gates admin-only affordances such as editing from the detail view.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// NewSession normalizes the user returned by the login endpoint.
func NewSession(u APIUser, token string) *Session {
	return &Session{
		ID:       u.ID,
		Name:     u.FullName,
		Email:    u.Email,
		Role:     RoleName(u.RoleID),
		RoleID:   u.RoleID,
		IsActive: u.IsActive,
		Token:    token,
	}
}
