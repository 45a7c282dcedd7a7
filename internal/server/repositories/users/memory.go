package users

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/useradmin/internal/common"
	"github.com/dmitrijs2005/useradmin/internal/server/models"
	"github.com/jonboulle/clockwork"
)

// DefaultPageSize applies when a filter carries no limit.
const DefaultPageSize = 10

// MemoryRepository is a mutex-guarded in-memory Repository. Callers receive
// copies, so stored users never change behind the repository's back.
type MemoryRepository struct {
	mu     sync.RWMutex
	clock  clockwork.Clock
	nextID int64
	byID   map[int64]*models.User
}

func NewMemoryRepository(clock clockwork.Clock) *MemoryRepository {
	return &MemoryRepository{
		clock:  clock,
		nextID: 1,
		byID:   make(map[int64]*models.User),
	}
}

func clone(u *models.User) *models.User {
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &c
}

func (r *MemoryRepository) emailTakenLocked(email string, exceptID int64) bool {
	for id, u := range r.byID {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// Create assigns the next id and, when unset, the creation time.
func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(user.Email, 0) {
		return nil, common.ErrorAlreadyExists
	}

	u := clone(user)
	u.ID = r.nextID
	r.nextID++
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.clock.Now().UTC()
	}
	r.byID[u.ID] = u
	return clone(u), nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			return clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	if r.emailTakenLocked(user.Email, user.ID) {
		return nil, common.ErrorAlreadyExists
	}

	u := clone(user)
	r.byID[u.ID] = u
	return clone(u), nil
}

// List filters the whole set, then returns one page ordered by id together
// with the total match count.
func (r *MemoryRepository) List(ctx context.Context, f models.UserFilter) ([]*models.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.User, 0, len(r.byID))
	for _, u := range r.byID {
		if f.Matches(u) {
			matched = append(matched, u)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Page < 1 {
		f.Page = 1
	}

	total := len(matched)
	start := (f.Page - 1) * f.Limit
	if start >= total {
		return []*models.User{}, total, nil
	}
	end := min(start+f.Limit, total)

	out := make([]*models.User, 0, end-start)
	for _, u := range matched[start:end] {
		out = append(out, clone(u))
	}
	return out, total, nil
}
