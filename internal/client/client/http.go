package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/common"
	"github.com/google/uuid"
)

// HTTPClient implements Client over net/http. It is safe for concurrent use.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPClient returns a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// SetToken sets the bearer token sent with subsequent requests. An empty
// token disables the Authorization header.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, nil)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp dataEnvelope[struct {
		User  models.APIUser `json:"user"`
		Token struct {
			Value string `json:"value"`
		} `json:"token"`
	}]
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", nil, body, &resp); err != nil {
		return nil, err
	}
	return &LoginResult{Token: resp.Data.Token.Value, User: resp.Data.User}, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil, nil)
}

func (c *HTTPClient) ListUsers(ctx context.Context, params ListParams) (*UserPage, error) {
	var resp struct {
		Data []models.APIUser `json:"data"`
		Meta PageMeta         `json:"meta"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/retrieve", params.Values(), nil, &resp); err != nil {
		return nil, err
	}
	return &UserPage{Users: resp.Data, Meta: resp.Meta}, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, id int64) (*models.APIUser, error) {
	var resp dataEnvelope[models.APIUser]
	if err := c.do(ctx, http.MethodGet, userPath(id, ""), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *HTTPClient) CreateUser(ctx context.Context, in CreateUserInput) (*models.APIUser, error) {
	var resp dataEnvelope[models.APIUser]
	if err := c.do(ctx, http.MethodPost, "/users", nil, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*models.APIUser, error) {
	var resp dataEnvelope[models.APIUser]
	if err := c.do(ctx, http.MethodPatch, userPath(id, ""), nil, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *HTTPClient) DeactivateUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, userPath(id, "/deactivate"), nil, nil, nil)
}

func (c *HTTPClient) ReactivateUser(ctx context.Context, id int64) (*models.APIUser, error) {
	var resp dataEnvelope[models.APIUser]
	if err := c.do(ctx, http.MethodPatch, userPath(id, "/reactivate"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *HTTPClient) RegeneratePassword(ctx context.Context, id int64) (*RegeneratedPassword, error) {
	var resp dataEnvelope[RegeneratedPassword]
	if err := c.do(ctx, http.MethodPost, userPath(id, "/regenerate-password"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func userPath(id int64, suffix string) string {
	return "/users/" + strconv.FormatInt(id, 10) + suffix
}

// do sends one request. A non-nil in is encoded as JSON; a non-nil out
// receives the decoded 2xx body.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.RequestIDHeader, uuid.NewString())
	if token := c.currentToken(); token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		// Non-JSON error bodies fall back to the status text.
		_ = json.Unmarshal(raw, &eb)
		return newAPIError(resp.StatusCode, eb)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// IsTransport reports whether err is a network or server-side failure rather
// than a rejection of the request itself.
func IsTransport(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
