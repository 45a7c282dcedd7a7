package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePage() *client.UserPage {
	return &client.UserPage{
		Users: []models.APIUser{
			{ID: 1, FullName: "Admin", Email: "admin@umpisa.com", RoleID: 1, IsActive: true, CreatedAt: "2024-01-01T00:00:00Z"},
			{ID: 2, FullName: "John Doe", Email: "john@example.com", RoleID: 2, IsActive: true, CreatedAt: "2024-01-15T00:00:00Z"},
			{ID: 3, FullName: "Jane Smith", Email: "jane@example.com", RoleID: 2, IsActive: false, CreatedAt: "2024-02-20T00:00:00Z"},
		},
		Meta: client.PageMeta{Total: 3, PerPage: 10, CurrentPage: 1, LastPage: 1},
	}
}

func TestUserService_ListSendsStatusToBackend(t *testing.T) {
	tests := []struct {
		status     string
		wantStatus string
	}{
		{"", ""},
		{StatusAll, ""},
		{models.StatusActive, models.StatusActive},
		{models.StatusInactive, models.StatusInactive},
	}

	for _, tt := range tests {
		t.Run("status="+tt.status, func(t *testing.T) {
			fc := &fakeClient{ListRet: []*client.UserPage{samplePage()}}
			svc := NewUserService(fc, logging.Discard())

			res, err := svc.List(context.Background(), UserQuery{Search: "j", Status: tt.status, Limit: 10, Page: 2})
			require.NoError(t, err)

			assert.Equal(t, client.ListParams{Search: "j", Status: tt.wantStatus, Limit: 10, Page: 2}, fc.ListCalls[0])
			assert.Len(t, res.Users, 3, "rows come back as the backend filtered them")
			assert.Equal(t, 3, res.Meta.Total)
		})
	}
}

func TestUserService_GetNotFound(t *testing.T) {
	svc := NewUserService(&fakeClient{GetErr: &client.APIError{Status: http.StatusNotFound, Message: "User not found"}}, logging.Discard())

	_, err := svc.Get(context.Background(), 99)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestUserService_CreateMapsFormValues(t *testing.T) {
	fc := &fakeClient{CreateRet: &models.APIUser{ID: 9, FullName: "New Person", RoleID: 1, IsActive: true}}
	svc := NewUserService(fc, logging.Discard())

	r, err := svc.Create(context.Background(), map[string]string{
		"name": "  New Person ", "email": "new@example.com", "password": "secret1", "role": "admin",
	})
	require.NoError(t, err)

	assert.Equal(t, client.CreateUserInput{Email: "new@example.com", Password: "secret1", FullName: "New Person", RoleID: 1}, fc.LastCreate)
	assert.Equal(t, models.RoleAdmin, r.Role)
}

func TestUserService_UpdateAppliesStatusChange(t *testing.T) {
	t.Run("deactivate", func(t *testing.T) {
		fc := &fakeClient{UpdateRet: &models.APIUser{ID: 2, FullName: "John", RoleID: 2, IsActive: true}}
		svc := NewUserService(fc, logging.Discard())

		r, err := svc.Update(context.Background(), 2, map[string]string{"name": "John", "role": "user", "status": "inactive"})
		require.NoError(t, err)

		assert.Equal(t, []int64{2}, fc.Deactivated)
		assert.Equal(t, models.StatusInactive, r.Status)
		assert.Equal(t, client.UpdateUserInput{FullName: "John", RoleID: 2}, fc.LastUpdate)
	})

	t.Run("reactivate", func(t *testing.T) {
		fc := &fakeClient{
			UpdateRet:     &models.APIUser{ID: 3, IsActive: false},
			ReactivateRet: &models.APIUser{ID: 3, IsActive: true},
		}
		svc := NewUserService(fc, logging.Discard())

		r, err := svc.Update(context.Background(), 3, map[string]string{"status": "active"})
		require.NoError(t, err)

		assert.Equal(t, []int64{3}, fc.Reactivated)
		assert.Equal(t, models.StatusActive, r.Status)
	})

	t.Run("unchanged", func(t *testing.T) {
		fc := &fakeClient{UpdateRet: &models.APIUser{ID: 2, IsActive: true}}
		svc := NewUserService(fc, logging.Discard())

		_, err := svc.Update(context.Background(), 2, map[string]string{"status": "active"})
		require.NoError(t, err)

		assert.Empty(t, fc.Deactivated)
		assert.Empty(t, fc.Reactivated)
	})

	t.Run("update error stops", func(t *testing.T) {
		fc := &fakeClient{UpdateErr: errors.New("boom")}
		svc := NewUserService(fc, logging.Discard())

		_, err := svc.Update(context.Background(), 2, map[string]string{"status": "inactive"})
		require.Error(t, err)
		assert.Empty(t, fc.Deactivated)
	})
}

func TestUserService_DeactivateWrapsError(t *testing.T) {
	fc := &fakeClient{DeactivateErr: fmt.Errorf("%w: timeout", client.ErrUnavailable)}
	svc := NewUserService(fc, logging.Discard())

	err := svc.Deactivate(context.Background(), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrUnavailable)
	assert.Contains(t, err.Error(), "deactivate user 3")
}

func TestUserService_StatsWalksPages(t *testing.T) {
	page1 := samplePage()
	page1.Meta.LastPage = 2
	page2 := &client.UserPage{
		Users: []models.APIUser{{ID: 4, RoleID: 2, IsActive: false}},
		Meta:  client.PageMeta{Total: 4, CurrentPage: 2, LastPage: 2},
	}
	fc := &fakeClient{ListRet: []*client.UserPage{page1, page2}}
	svc := NewUserService(fc, logging.Discard())

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &Stats{Total: 4, Active: 2, Inactive: 2, Admins: 1}, st)
	require.Len(t, fc.ListCalls, 2)
	assert.Equal(t, 2, fc.ListCalls[1].Page)
}
