package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleMapping(t *testing.T) {
	assert.Equal(t, RoleIDAdmin, RoleID("admin"))
	assert.Equal(t, RoleIDAdmin, RoleID(" Admin "))
	assert.Equal(t, RoleIDUser, RoleID("user"))
	assert.Equal(t, RoleIDUser, RoleID("superuser"))

	assert.Equal(t, RoleAdmin, RoleName(1))
	assert.Equal(t, RoleUser, RoleName(2))
	assert.Equal(t, RoleUser, RoleName(99))
}

func TestAPIUser_ToUserRecord(t *testing.T) {
	u := APIUser{ID: 3, Email: "jane@example.com", FullName: "Jane Smith", RoleID: 1, IsActive: false, CreatedAt: "2024-03-10T08:15:00.000Z"}

	got := u.ToUserRecord()

	assert.Equal(t, UserRecord{
		ID:        3,
		Name:      "Jane Smith",
		Email:     "jane@example.com",
		Role:      RoleAdmin,
		RoleID:    1,
		Status:    StatusInactive,
		CreatedAt: "2024-03-10",
	}, got)
}

func TestDayOf(t *testing.T) {
	assert.Equal(t, "2024-02-20", DayOf("2024-02-20T23:59:59+00:00"))
	assert.Equal(t, "2024-02-20", DayOf("2024-02-20"))
	assert.Equal(t, "2024-02-20", DayOf("2024-02-20 10:00:00"))
	assert.Equal(t, "", DayOf(""))
}

func TestUserRecord_Actions(t *testing.T) {
	active := UserRecord{Status: StatusActive}
	inactive := UserRecord{Status: StatusInactive}

	assert.Equal(t, []RowAction{ActionView, ActionEdit, ActionDeactivate}, active.Actions())
	assert.Equal(t, []RowAction{ActionView, ActionEdit, ActionReactivate}, inactive.Actions())
}

func TestSession_JSONOmitsToken(t *testing.T) {
	s := NewSession(APIUser{ID: 1, Email: "admin@umpisa.com", FullName: "Admin", RoleID: 1, IsActive: true}, "tok")

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "tok")

	var back Session
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "admin", back.Role)
	assert.True(t, back.IsAdmin())
}

func TestSession_IsAdmin(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.IsAdmin())
	assert.False(t, (&Session{Role: RoleUser}).IsAdmin())
	assert.True(t, (&Session{Role: RoleAdmin}).IsAdmin())
}
