package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/config"
	"github.com/dmitrijs2005/useradmin/internal/client/form"
	"github.com/dmitrijs2005/useradmin/internal/client/listquery"
	"github.com/dmitrijs2005/useradmin/internal/client/services"
	"github.com/dmitrijs2005/useradmin/internal/filex"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/jonboulle/clockwork"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	clock   clockwork.Clock
	session services.SessionService
	users   services.UserService
	closeFn func() error

	reader     *bufio.Reader
	out        io.Writer
	createForm *form.Controller

	// mu guards the page state below; debounced fetches render from the
	// timer goroutine.
	mu      sync.Mutex
	list    *listquery.Coordinator
	busy    bool
	loading bool
}

// lockedWriter serializes writes from the REPL and the debounce goroutine.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// NewApp opens the local session store and wires the REST client and
// services from c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewText(os.Stderr, c.LogLevel)

	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, fmt.Errorf("error preparing database directory: %w", err)
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout)
	clock := clockwork.NewRealClock()

	ss := services.NewSessionService(apiClient, db, clock, logger)
	us := services.NewUserService(apiClient, logger)

	app := newApp(c, ss, us, clock, logger, os.Stdin, os.Stdout)
	app.closeFn = func() error {
		return errors.Join(apiClient.Close(), db.Close())
	}
	return app, nil
}

func newApp(c *config.Config, ss services.SessionService, us services.UserService, clock clockwork.Clock,
	logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config:  c,
		log:     logger,
		clock:   clock,
		session: ss,
		users:   us,
		reader:  bufio.NewReader(in),
		out:     &lockedWriter{w: out},
	}
}

// Run restores a persisted session, or asks for credentials, and then
// serves commands until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)

	a.printf("Welcome to the user admin console (type 'help' for commands)\n")

	if !a.restore(ctx) {
		_ = a.Login(ctx, nil)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) close(ctx context.Context) {
	a.stopList()
	if a.closeFn == nil {
		return
	}
	if err := a.closeFn(); err != nil {
		a.log.Warn(ctx, "close error", "error", err)
	}
}

// restore reports whether a usable persisted session was found.
func (a *App) restore(ctx context.Context) bool {
	s, err := a.session.Restore(ctx)
	if err != nil {
		a.log.Error(ctx, "session restore failed", "error", err)
		a.toastError("Stored session could not be read; please log in again")
		return false
	}
	if s == nil {
		return false
	}
	a.toastSuccess(fmt.Sprintf("Welcome back, %s", s.Name))
	return true
}

func (a *App) isLoggedIn() bool {
	return a.session.Session() != nil
}

func (a *App) isAdmin() bool {
	return a.session.Session().IsAdmin()
}

func (a *App) getStatus() string {
	s := a.session.Session()
	if s == nil {
		return "(signed out)"
	}
	status := fmt.Sprintf("(%s %s)", s.Email, s.Role)
	if a.isLoading() {
		status += " loading"
	}
	return status
}

// startLoading raises the page loading flag. The returned func clears it
// and is meant to be deferred, so every exit path drops the flag.
func (a *App) startLoading() func() {
	a.mu.Lock()
	a.loading = true
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		a.loading = false
		a.mu.Unlock()
	}
}

func (a *App) isLoading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) toastSuccess(msg string) { a.printf("[ok] %s\n", msg) }
func (a *App) toastError(msg string)   { a.printf("[error] %s\n", msg) }
func (a *App) toastInfo(msg string)    { a.printf("[info] %s\n", msg) }

// errorMessage renders err for a toast: server messages verbatim, transport
// failures as a generic retry hint.
func errorMessage(err error) string {
	var authErr *services.AuthenticationError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	if client.IsTransport(err) {
		return "Server unavailable, please try again"
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

var (
	errUsage     = errors.New("usage")
	errAdminOnly = errors.New("admin access required")
)

// parseID reads the single numeric id argument of a row command.
func (a *App) parseID(args []string, usage string) (int64, error) {
	if len(args) != 1 {
		a.printf("Usage: %s\n", usage)
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		a.printf("Invalid user id: %s\n", args[0])
		return 0, errUsage
	}
	return id, nil
}

// requireAdmin prints a notice and reports false for non-admin sessions.
func (a *App) requireAdmin() bool {
	if a.isAdmin() {
		return true
	}
	a.toastError("Admin access required")
	return false
}
