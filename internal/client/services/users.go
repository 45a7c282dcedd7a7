package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/validation"
	"github.com/dmitrijs2005/useradmin/internal/logging"
)

// StatusAll disables the status filter.
const StatusAll = "all"

// UserQuery selects a page of users. Status is filtered on the client
// because the list endpoint only understands search, limit and page.
type UserQuery struct {
	Search string
	Status string
	Limit  int
	Page   int
}

// UserList is one fetched page after status filtering.
type UserList struct {
	Users []models.UserRecord
	Meta  client.PageMeta
}

// Stats summarizes every account known to the backend.
type Stats struct {
	Total    int
	Active   int
	Inactive int
	Admins   int
}

// UserService wraps the user endpoints in console terms: form values in,
// UserRecord out.
type UserService interface {
	List(ctx context.Context, q UserQuery) (*UserList, error)
	Get(ctx context.Context, id int64) (*models.UserRecord, error)
	Create(ctx context.Context, values map[string]string) (*models.UserRecord, error)
	Update(ctx context.Context, id int64, values map[string]string) (*models.UserRecord, error)
	Deactivate(ctx context.Context, id int64) error
	Reactivate(ctx context.Context, id int64) (*models.UserRecord, error)
	RegeneratePassword(ctx context.Context, id int64) (*client.RegeneratedPassword, error)
	Stats(ctx context.Context) (*Stats, error)
}

type userService struct {
	client client.Client
	log    logging.Logger
}

func NewUserService(c client.Client, log logging.Logger) UserService {
	return &userService{client: c, log: log}
}

func (s *userService) List(ctx context.Context, q UserQuery) (*UserList, error) {
	status := q.Status
	if status == StatusAll {
		status = ""
	}

	params := client.ListParams{Search: q.Search, Status: status, Limit: q.Limit, Page: q.Page}
	page, err := s.client.ListUsers(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	records := models.ToUserRecords(page.Users)

	s.log.Debug(ctx, "users fetched", "count", len(records), "search", q.Search, "status", q.Status)
	return &UserList{Users: records, Meta: page.Meta}, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*models.UserRecord, error) {
	u, err := s.client.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	r := u.ToUserRecord()
	return &r, nil
}

func (s *userService) Create(ctx context.Context, values map[string]string) (*models.UserRecord, error) {
	in := client.CreateUserInput{
		Email:    strings.TrimSpace(values[validation.FieldEmail]),
		Password: values[validation.FieldPassword],
		FullName: strings.TrimSpace(values[validation.FieldName]),
		RoleID:   models.RoleID(values[validation.FieldRole]),
	}

	u, err := s.client.CreateUser(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	r := u.ToUserRecord()
	s.log.Info(ctx, "user created", "user_id", r.ID)
	return &r, nil
}

// Update sends the changed profile fields, then applies a requested status
// change through the deactivate or reactivate endpoint.
func (s *userService) Update(ctx context.Context, id int64, values map[string]string) (*models.UserRecord, error) {
	in := client.UpdateUserInput{
		Email:    strings.TrimSpace(values[validation.FieldEmail]),
		Password: values[validation.FieldPassword],
		FullName: strings.TrimSpace(values[validation.FieldName]),
	}
	if role := values[validation.FieldRole]; role != "" {
		in.RoleID = models.RoleID(role)
	}

	u, err := s.client.UpdateUser(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	r := u.ToUserRecord()

	switch want := values[validation.FieldStatus]; {
	case want == models.StatusInactive && r.IsActive():
		if err := s.Deactivate(ctx, id); err != nil {
			return nil, err
		}
		r.Status = models.StatusInactive
	case want == models.StatusActive && !r.IsActive():
		re, err := s.Reactivate(ctx, id)
		if err != nil {
			return nil, err
		}
		r = *re
	}

	s.log.Info(ctx, "user updated", "user_id", id)
	return &r, nil
}

func (s *userService) Deactivate(ctx context.Context, id int64) error {
	if err := s.client.DeactivateUser(ctx, id); err != nil {
		return fmt.Errorf("deactivate user %d: %w", id, err)
	}
	s.log.Info(ctx, "user deactivated", "user_id", id)
	return nil
}

func (s *userService) Reactivate(ctx context.Context, id int64) (*models.UserRecord, error) {
	u, err := s.client.ReactivateUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reactivate user %d: %w", id, err)
	}
	r := u.ToUserRecord()
	s.log.Info(ctx, "user reactivated", "user_id", id)
	return &r, nil
}

func (s *userService) RegeneratePassword(ctx context.Context, id int64) (*client.RegeneratedPassword, error) {
	p, err := s.client.RegeneratePassword(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("regenerate password for user %d: %w", id, err)
	}
	s.log.Info(ctx, "password regenerated", "user_id", id)
	return p, nil
}

// statsPageSize is the page size used when walking all users.
const statsPageSize = 100

func (s *userService) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	for page := 1; ; page++ {
		res, err := s.client.ListUsers(ctx, client.ListParams{Limit: statsPageSize, Page: page})
		if err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
		for _, u := range res.Users {
			st.Total++
			if u.IsActive {
				st.Active++
			} else {
				st.Inactive++
			}
			if u.RoleID == models.RoleIDAdmin {
				st.Admins++
			}
		}
		if len(res.Users) == 0 || page >= res.Meta.LastPage {
			return st, nil
		}
	}
}
