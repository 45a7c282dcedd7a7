package cli

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/config"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/services"
	"github.com/dmitrijs2005/useradmin/internal/client/validation"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/jonboulle/clockwork"
)

// ---- output ----

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// ---- fake session service ----

type fakeSession struct {
	current *models.Session

	loginErrs  []error
	loginCalls []string

	logoutErr   error
	logoutCalls int

	forgetErr   error
	forgetCalls int

	restoreRet *models.Session
	restoreErr error
}

func adminSession() *models.Session {
	return &models.Session{ID: 1, Name: "Umpisa Admin", Email: "admin@umpisa.com", Role: models.RoleAdmin, RoleID: models.RoleIDAdmin, IsActive: true}
}

func userSession() *models.Session {
	return &models.Session{ID: 3, Name: "John Doe", Email: "john@example.com", Role: models.RoleUser, RoleID: models.RoleIDUser, IsActive: true}
}

func (f *fakeSession) Login(ctx context.Context, email, password string) (*models.Session, error) {
	f.loginCalls = append(f.loginCalls, email+"/"+password)
	if len(f.loginErrs) > 0 {
		err := f.loginErrs[0]
		f.loginErrs = f.loginErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	s := adminSession()
	s.Email = email
	f.current = s
	return s, nil
}

func (f *fakeSession) Logout(ctx context.Context) error {
	f.logoutCalls++
	f.current = nil
	return f.logoutErr
}

func (f *fakeSession) Forget(ctx context.Context) error {
	f.forgetCalls++
	f.current = nil
	return f.forgetErr
}

func (f *fakeSession) Current(ctx context.Context) (*models.Session, error) { return f.current, nil }

func (f *fakeSession) Restore(ctx context.Context) (*models.Session, error) {
	if f.restoreRet != nil {
		f.current = f.restoreRet
	}
	return f.restoreRet, f.restoreErr
}

func (f *fakeSession) Session() *models.Session { return f.current }

// ---- fake user service ----

// fakeUsers keeps records in memory. List is called from the debounce
// goroutine, so all state sits behind mu.
type fakeUsers struct {
	mu sync.Mutex

	records []models.UserRecord

	listErr   error
	listCalls []services.UserQuery

	getErr error

	createErr   error
	createCalls []map[string]string

	updateCalls []map[string]string

	deactivateErr   error
	deactivateCalls []int64
	reactivateCalls []int64

	regenRet *client.RegeneratedPassword
}

func seededUsers() *fakeUsers {
	return &fakeUsers{records: []models.UserRecord{
		{ID: 1, Name: "Umpisa Admin", Email: "admin@umpisa.com", Role: models.RoleAdmin, RoleID: 1, Status: models.StatusActive, CreatedAt: "2024-01-01"},
		{ID: 3, Name: "John Doe", Email: "john@example.com", Role: models.RoleUser, RoleID: 2, Status: models.StatusActive, CreatedAt: "2024-02-20"},
		{ID: 4, Name: "Jane Smith", Email: "jane@example.com", Role: models.RoleUser, RoleID: 2, Status: models.StatusActive, CreatedAt: "2024-03-10"},
		{ID: 5, Name: "Bob Johnson", Email: "bob@example.com", Role: models.RoleUser, RoleID: 2, Status: models.StatusInactive, CreatedAt: "2024-04-05"},
	}}
}

func notFound(id int64) error {
	return fmt.Errorf("get user %d: %w", id, &client.APIError{Status: 404, Message: "User not found"})
}

func (f *fakeUsers) List(ctx context.Context, q services.UserQuery) (*services.UserList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, q)
	if f.listErr != nil {
		return nil, f.listErr
	}

	out := []models.UserRecord{}
	search := strings.ToLower(q.Search)
	for _, r := range f.records {
		if search != "" && !strings.Contains(strings.ToLower(r.Name), search) && !strings.Contains(strings.ToLower(r.Email), search) {
			continue
		}
		if q.Status != "" && q.Status != services.StatusAll && r.Status != q.Status {
			continue
		}
		out = append(out, r)
	}
	return &services.UserList{Users: out}, nil
}

func (f *fakeUsers) ListCalls() []services.UserQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]services.UserQuery(nil), f.listCalls...)
}

func (f *fakeUsers) find(id int64) *models.UserRecord {
	for i := range f.records {
		if f.records[i].ID == id {
			return &f.records[i]
		}
	}
	return nil
}

func (f *fakeUsers) Get(ctx context.Context, id int64) (*models.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	r := f.find(id)
	if r == nil {
		return nil, notFound(id)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeUsers) Create(ctx context.Context, values map[string]string) (*models.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls = append(f.createCalls, maps.Clone(values))
	if f.createErr != nil {
		return nil, f.createErr
	}
	r := models.UserRecord{
		ID:     int64(len(f.records) + 2),
		Name:   values[validation.FieldName],
		Email:  values[validation.FieldEmail],
		Role:   values[validation.FieldRole],
		Status: models.StatusActive,
	}
	f.records = append(f.records, r)
	return &r, nil
}

func (f *fakeUsers) Update(ctx context.Context, id int64, values map[string]string) (*models.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls = append(f.updateCalls, maps.Clone(values))
	r := f.find(id)
	if r == nil {
		return nil, notFound(id)
	}
	r.Name = values[validation.FieldName]
	r.Email = values[validation.FieldEmail]
	r.Role = values[validation.FieldRole]
	if s := values[validation.FieldStatus]; s != "" {
		r.Status = s
	}
	cp := *r
	return &cp, nil
}

func (f *fakeUsers) setStatus(id int64, status string) error {
	r := f.find(id)
	if r == nil {
		return notFound(id)
	}
	r.Status = status
	return nil
}

func (f *fakeUsers) Deactivate(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivateCalls = append(f.deactivateCalls, id)
	if f.deactivateErr != nil {
		return f.deactivateErr
	}
	return f.setStatus(id, models.StatusInactive)
}

func (f *fakeUsers) Reactivate(ctx context.Context, id int64) (*models.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactivateCalls = append(f.reactivateCalls, id)
	if err := f.setStatus(id, models.StatusActive); err != nil {
		return nil, err
	}
	cp := *f.find(id)
	return &cp, nil
}

func (f *fakeUsers) RegeneratePassword(ctx context.Context, id int64) (*client.RegeneratedPassword, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.find(id)
	if r == nil {
		return nil, notFound(id)
	}
	if f.regenRet != nil {
		return f.regenRet, nil
	}
	return &client.RegeneratedPassword{NewPassword: "Xk3pQ9mZ7wRt", Email: r.Email, FullName: r.Name}, nil
}

func (f *fakeUsers) Stats(ctx context.Context) (*services.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := &services.Stats{}
	for _, r := range f.records {
		st.Total++
		if r.IsActive() {
			st.Active++
		} else {
			st.Inactive++
		}
		if r.Role == models.RoleAdmin {
			st.Admins++
		}
	}
	return st, nil
}

// ---- app builder ----

type testApp struct {
	*App
	out   *syncBuffer
	clock *clockwork.FakeClock
	ss    *fakeSession
	us    *fakeUsers
}

// newTestApp builds an App over fakes reading input from the given text.
// Password prompts read from the same input.
func newTestApp(t *testing.T, input string, ss *fakeSession, us *fakeUsers) *testApp {
	t.Helper()
	stubTerminal(t, false, nil, nil)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	out := &syncBuffer{}
	clock := clockwork.NewFakeClock()
	app := newApp(cfg, ss, us, clock, logging.Discard(), strings.NewReader(input), out)
	t.Cleanup(app.stopList)

	return &testApp{App: app, out: out, clock: clock, ss: ss, us: us}
}
