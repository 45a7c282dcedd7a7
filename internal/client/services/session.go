package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/useradmin/internal/dbx"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// Persisted slot names.
const (
	SlotToken = "token"
	SlotUser  = "user"
)

// GenericLoginMessage is shown when the server could not be reached or did
// not say why the login failed.
const GenericLoginMessage = "Unable to sign in. Please try again."

// AuthenticationError is a rejected or failed login. Message is safe to show
// to the operator.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string { return e.Message }
func (e *AuthenticationError) Unwrap() error { return e.Err }

// SessionService owns the authenticated session.
//
// Contract:
//   - Login: authenticate, persist the token and user slots together, and
//     remember the session.
//   - Logout: best-effort remote logout, then always clear both slots, even
//     when ctx is already cancelled; the remote error is returned after
//     clearing.
//   - Forget: drop every locally stored key without calling the server.
//   - Current: read the persisted session; (nil, nil) when absent and an
//     error when the stored user is malformed.
//   - Restore: startup check that drops a session whose token is missing
//     or expired.
//   - Session: the in-memory session, nil when signed out.
//
// Two concurrent logins are not serialized; the last write wins.
type SessionService interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Logout(ctx context.Context) error
	Forget(ctx context.Context) error
	Current(ctx context.Context) (*models.Session, error)
	Restore(ctx context.Context) (*models.Session, error)
	Session() *models.Session
}

type sessionService struct {
	client client.Client
	db     *sql.DB
	clock  clockwork.Clock
	log    logging.Logger

	mu      sync.RWMutex
	current *models.Session
}

// NewSessionService constructs a SessionService bound to the API client and
// the local database holding the metadata table.
func NewSessionService(c client.Client, db *sql.DB, clock clockwork.Clock, log logging.Logger) SessionService {
	return &sessionService{client: c, db: db, clock: clock, log: log}
}

func (s *sessionService) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func (s *sessionService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.log.Warn(ctx, "login failed", "email", email, "error", err)
		return nil, toAuthenticationError(err)
	}

	session := models.NewSession(res.User, res.Token)
	if err := s.persist(ctx, session); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}

	s.client.SetToken(session.Token)
	s.setCurrent(session)
	s.log.Info(ctx, "signed in", "user_id", session.ID, "role", session.Role)
	return session, nil
}

// toAuthenticationError keeps the server's message for rejected credentials
// and falls back to the generic one for transport failures.
func toAuthenticationError(err error) *AuthenticationError {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && !client.IsTransport(err) && apiErr.Message != "" {
		return &AuthenticationError{Message: apiErr.Message, Err: err}
	}
	return &AuthenticationError{Message: GenericLoginMessage, Err: err}
}

// persist writes both slots in a single transaction.
func (s *sessionService) persist(ctx context.Context, session *models.Session) error {
	user, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, SlotToken, []byte(session.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, SlotUser, user)
	})
}

func (s *sessionService) Logout(ctx context.Context) error {
	remoteErr := s.client.Logout(ctx)
	if remoteErr != nil {
		s.log.Warn(ctx, "remote logout failed", "error", remoteErr)
		remoteErr = fmt.Errorf("logout: %w", remoteErr)
	}

	localErr := s.clear(context.WithoutCancel(ctx))
	s.log.Info(ctx, "signed out")
	return errors.Join(remoteErr, localErr)
}

func (s *sessionService) Forget(ctx context.Context) error {
	s.client.SetToken("")
	s.setCurrent(nil)
	if err := s.repo().Clear(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("local data clearing error: %w", err)
	}
	s.log.Info(ctx, "local data cleared")
	return nil
}

// clear drops both slots and the in-memory session.
func (s *sessionService) clear(ctx context.Context) error {
	s.client.SetToken("")
	s.setCurrent(nil)
	if err := s.repo().Delete(ctx, SlotToken, SlotUser); err != nil {
		return fmt.Errorf("session clearing error: %w", err)
	}
	return nil
}

func (s *sessionService) Current(ctx context.Context) (*models.Session, error) {
	repo := s.repo()

	raw, err := repo.Get(ctx, SlotUser)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("malformed persisted session: %w", err)
	}

	token, err := repo.Get(ctx, SlotToken)
	if err != nil {
		return nil, err
	}
	session.Token = string(token)
	return &session, nil
}

func (s *sessionService) Restore(ctx context.Context) (*models.Session, error) {
	session, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	if session == nil || session.Token == "" || s.expired(session.Token) {
		if session != nil {
			s.log.Info(ctx, "persisted session dropped", "user_id", session.ID)
		}
		if err := s.clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	s.client.SetToken(session.Token)
	s.setCurrent(session)
	return session, nil
}

// expired reports whether token is a JWT whose exp has passed. Opaque tokens
// and JWTs without exp are left to the server to judge.
func (s *sessionService) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.clock.Now().Before(exp.Time)
}

func (s *sessionService) Session() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *sessionService) setCurrent(session *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = session
}
