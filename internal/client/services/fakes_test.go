package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, client.RunMigrations(context.Background(), db))
	return db
}

func insertMeta(t *testing.T, db *sql.DB, k string, v []byte) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO metadata(key,value) VALUES(?,?)`, k, v)
	require.NoError(t, err)
}

func getMeta(t *testing.T, db *sql.DB, k string) []byte {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key=?`, k).Scan(&v)
	if err == sql.ErrNoRows {
		return nil
	}
	require.NoError(t, err)
	return v
}

// ---- fake client ----

// fakeClient implements client.Client for service unit tests.
type fakeClient struct {
	LoginRet *client.LoginResult
	LoginErr error

	LogoutErr   error
	LogoutCalls int

	ListRet   []*client.UserPage
	ListErr   error
	ListCalls []client.ListParams

	GetRet *models.APIUser
	GetErr error

	CreateRet *models.APIUser
	CreateErr error
	LastCreate client.CreateUserInput

	UpdateRet  *models.APIUser
	UpdateErr  error
	LastUpdate client.UpdateUserInput

	DeactivateErr error
	Deactivated   []int64

	ReactivateRet *models.APIUser
	ReactivateErr error
	Reactivated   []int64

	RegenRet *client.RegeneratedPassword
	RegenErr error

	Token string
}

func (f *fakeClient) Close() error                   { return nil }
func (f *fakeClient) SetToken(token string)          { f.Token = token }
func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) Login(ctx context.Context, email, password string) (*client.LoginResult, error) {
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.LogoutCalls++
	return f.LogoutErr
}

func (f *fakeClient) ListUsers(ctx context.Context, p client.ListParams) (*client.UserPage, error) {
	f.ListCalls = append(f.ListCalls, p)
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	i := len(f.ListCalls) - 1
	if i >= len(f.ListRet) {
		i = len(f.ListRet) - 1
	}
	return f.ListRet[i], nil
}

func (f *fakeClient) GetUser(ctx context.Context, id int64) (*models.APIUser, error) {
	return f.GetRet, f.GetErr
}

func (f *fakeClient) CreateUser(ctx context.Context, in client.CreateUserInput) (*models.APIUser, error) {
	f.LastCreate = in
	return f.CreateRet, f.CreateErr
}

func (f *fakeClient) UpdateUser(ctx context.Context, id int64, in client.UpdateUserInput) (*models.APIUser, error) {
	f.LastUpdate = in
	return f.UpdateRet, f.UpdateErr
}

func (f *fakeClient) DeactivateUser(ctx context.Context, id int64) error {
	f.Deactivated = append(f.Deactivated, id)
	return f.DeactivateErr
}

func (f *fakeClient) ReactivateUser(ctx context.Context, id int64) (*models.APIUser, error) {
	f.Reactivated = append(f.Reactivated, id)
	return f.ReactivateRet, f.ReactivateErr
}

func (f *fakeClient) RegeneratePassword(ctx context.Context, id int64) (*client.RegeneratedPassword, error) {
	return f.RegenRet, f.RegenErr
}
