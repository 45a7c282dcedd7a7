// Package listquery keeps the user list in step with the search box and the
// status filter. Keystrokes are debounced; a refetch happens only when the
// debounced search or the status actually changes.
package listquery

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/jonboulle/clockwork"
)

// DefaultDebounce is the quiet period after the last keystroke.
const DefaultDebounce = 500 * time.Millisecond

// Query is what the fetcher receives. Empty fields mean "no filter".
type Query struct {
	Search string
	Status string
}

// Params renders the query for transport, omitting empty keys.
func (q Query) Params() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	return v
}

// Fetcher loads the rows matching q.
type Fetcher func(ctx context.Context, q Query) ([]models.UserRecord, error)

// Snapshot is the render state handed to observers.
type Snapshot struct {
	// Input is the raw search text, possibly ahead of Query.Search.
	Input string
	Query Query
	Users []models.UserRecord

	// Loading is set only while the very first fetch is in flight;
	// later fetches set Refreshing instead.
	Loading    bool
	Refreshing bool

	// Err is the last fetch failure. Users keeps the previous rows.
	Err error
}

// Coordinator owns the list query state. It is safe for concurrent use;
// fetches are not serialized and the most recently issued one wins.
type Coordinator struct {
	fetch    Fetcher
	clock    clockwork.Clock
	debounce time.Duration
	log      logging.Logger

	mu        sync.Mutex
	ctx       context.Context
	raw       string
	debounced string
	status    string
	timer     clockwork.Timer
	gen       uint64
	seq       uint64
	settled   bool
	users     []models.UserRecord
	loading   bool
	refresh   bool
	err       error
	observers []func(Snapshot)
}

// New creates a coordinator. A non-positive debounce uses DefaultDebounce.
func New(fetch Fetcher, clock clockwork.Clock, debounce time.Duration, log logging.Logger) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Coordinator{
		fetch:    fetch,
		clock:    clock,
		debounce: debounce,
		log:      log,
		ctx:      context.Background(),
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
func (c *Coordinator) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Start performs the initial fetch. ctx also bounds fetches fired later by
// the debounce timer.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
	return c.refetch(ctx)
}

// Stop cancels a pending debounce.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// SetSearch records a keystroke and restarts the debounce window. Only the
// latest scheduled timer may apply the text.
func (c *Coordinator) SetSearch(text string) {
	c.mu.Lock()
	c.raw = text
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.clock.AfterFunc(c.debounce, func() { c.fire(gen) })
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Coordinator) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.raw == c.debounced {
		c.mu.Unlock()
		return
	}
	c.debounced = c.raw
	c.timer = nil
	ctx := c.ctx
	c.mu.Unlock()

	if err := c.refetch(ctx); err != nil {
		c.log.Warn(ctx, "debounced refetch failed", "error", err)
	}
}

// SetStatus changes the status filter and refetches immediately. Setting the
// current value again is a no-op.
func (c *Coordinator) SetStatus(ctx context.Context, status string) error {
	c.mu.Lock()
	if status == c.status {
		c.mu.Unlock()
		return nil
	}
	c.status = status
	c.mu.Unlock()

	return c.refetch(ctx)
}

// Refresh refetches with the current query.
func (c *Coordinator) Refresh(ctx context.Context) error {
	return c.refetch(ctx)
}

// Apply runs a row action. Only a successful action triggers a refetch;
// a failed one leaves the list untouched.
func (c *Coordinator) Apply(ctx context.Context, action func(ctx context.Context) error) error {
	if err := action(ctx); err != nil {
		return err
	}
	return c.refetch(ctx)
}

// Snapshot returns the current render state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) refetch(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	q := Query{Search: c.debounced, Status: c.status}
	if c.settled {
		c.refresh = true
	} else {
		c.loading = true
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	users, err := c.fetch(ctx, q)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.log.Debug(ctx, "stale list response dropped", "seq", seq, "search", q.Search, "status", q.Status)
		return err
	}
	c.settled = true
	c.loading = false
	c.refresh = false
	if err != nil {
		c.err = err
	} else {
		c.users = users
		c.err = nil
	}
	snap = c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	return err
}

func (c *Coordinator) snapshotLocked() Snapshot {
	users := make([]models.UserRecord, len(c.users))
	copy(users, c.users)
	return Snapshot{
		Input:      c.raw,
		Query:      Query{Search: c.debounced, Status: c.status},
		Users:      users,
		Loading:    c.loading,
		Refreshing: c.refresh,
		Err:        c.err,
	}
}

func (c *Coordinator) notify(s Snapshot) {
	c.mu.Lock()
	observers := make([]func(Snapshot), len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(s)
	}
}
