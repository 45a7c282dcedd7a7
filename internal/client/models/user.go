package models

import (
	"fmt"
	"time"
)

// APIUser is the user shape returned by the REST backend.
type APIUser struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	RoleID    int    `json:"roleId"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

// UserRecord is the row the console renders. It is only ever replaced by a
// refetch, never edited in place.
type UserRecord struct {
	ID        int64
	Name      string
	Email     string
	Role      string
	RoleID    int
	Status    string
	CreatedAt string
}

func (u UserRecord) IsActive() bool {
	return u.Status == StatusActive
}

// RowAction is an affordance offered for a row in the user list.
type RowAction string

const (
	ActionView       RowAction = "View"
	ActionEdit       RowAction = "Edit"
	ActionDeactivate RowAction = "Deactivate"
	ActionReactivate RowAction = "Reactivate"
)

// Actions lists the row actions: active users can be deactivated, inactive
// users can only be reactivated.
func (u UserRecord) Actions() []RowAction {
	if u.IsActive() {
		return []RowAction{ActionView, ActionEdit, ActionDeactivate}
	}
	return []RowAction{ActionView, ActionEdit, ActionReactivate}
}

func (u UserRecord) String() string {
	return fmt.Sprintf("#%d %s <%s> %s %s", u.ID, u.Name, u.Email, u.Role, u.Status)
}

// ToUserRecord converts the API shape: fullName becomes Name, isActive
// becomes Status, roleId derives Role, and createdAt is cut to the day.
func (a APIUser) ToUserRecord() UserRecord {
	return UserRecord{
		ID:        a.ID,
		Name:      a.FullName,
		Email:     a.Email,
		Role:      RoleName(a.RoleID),
		RoleID:    a.RoleID,
		Status:    StatusFromActive(a.IsActive),
		CreatedAt: DayOf(a.CreatedAt),
	}
}

// ToUserRecords converts a page of API users.
func ToUserRecords(in []APIUser) []UserRecord {
	out := make([]UserRecord, 0, len(in))
	for _, u := range in {
		out = append(out, u.ToUserRecord())
	}
	return out
}

// DayOf reduces an ISO timestamp to YYYY-MM-DD. Values that do not parse
// are truncated to their first ten characters.
func DayOf(ts string) string {
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t.Format(time.DateOnly)
	}
	if len(ts) > len(time.DateOnly) {
		return ts[:len(time.DateOnly)]
	}
	return ts
}
