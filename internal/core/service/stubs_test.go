package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/accountkit/account-service/internal/core/domain"
	"github.com/accountkit/account-service/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users   map[string]*domain.User
	nextID  int
	findErr error // if set, FindByEmail and FindByID return this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) taken(id, username, email string) bool {
	for _, u := range r.users {
		if u.ID == id {
			continue
		}
		if u.Username == username || u.Email == email {
			return true
		}
	}
	return false
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.taken("", user.Username, user.Email) {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	clone := cloneUser(user)
	clone.ID = fmt.Sprintf("%024x", r.nextID)
	r.users[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, id string, c ports.UserChanges) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	next := cloneUser(u)
	if c.Username != nil {
		next.Username = *c.Username
	}
	if c.Email != nil {
		next.Email = *c.Email
	}
	if c.Name != nil {
		next.Name = *c.Name
	}
	if c.Role != nil {
		next.Role = *c.Role
	}
	if r.taken(id, next.Username, next.Email) {
		return domain.ErrUserExists
	}
	next.UpdatedAt = c.UpdatedAt
	r.users[id] = next
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) Search(_ context.Context, f ports.SearchUsersFilter) ([]*domain.User, int64, error) {
	var matched []*domain.User
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(f.Name)) {
			continue
		}
		matched = append(matched, cloneUser(u))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip > len(matched) {
		return []*domain.User{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

// seed stores a user with the given password and role directly.
func (r *stubUserRepo) seed(username, password string, role domain.Role) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	u, err := r.Create(context.Background(), &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		Name:         strings.ToUpper(username[:1]) + username[1:],
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		panic(err)
	}
	return u
}

// interleavingRepo runs afterFind once, between a FindByID store read and the
// caller's use of the result.
type interleavingRepo struct {
	*stubUserRepo
	afterFind func()
}

func (r *interleavingRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := r.stubUserRepo.FindByID(ctx, id)
	if hook := r.afterFind; hook != nil {
		r.afterFind = nil
		hook()
	}
	return u, err
}

// ---------------------------------------------------------------------------
// Cache and event stubs
// ---------------------------------------------------------------------------

type stubCache struct {
	users      map[string]*domain.User
	tombstones map[string]bool
	deleted    []string
}

func newStubCache() *stubCache {
	return &stubCache{users: make(map[string]*domain.User), tombstones: make(map[string]bool)}
}

func (c *stubCache) Get(_ context.Context, id string) (*domain.User, bool) {
	if c.tombstones[id] {
		return nil, false
	}
	u, ok := c.users[id]
	return cloneUser(u), ok
}

// Set mirrors SET NX: existing views and tombstones are kept.
func (c *stubCache) Set(_ context.Context, u *domain.User) {
	if _, ok := c.users[u.ID]; ok || c.tombstones[u.ID] {
		return
	}
	c.users[u.ID] = cloneUser(u)
}

func (c *stubCache) Delete(_ context.Context, id string) {
	delete(c.users, id)
	c.tombstones[id] = true
	c.deleted = append(c.deleted, id)
}

type recordingEmitter struct {
	events []domain.UserEvent
}

func (e *recordingEmitter) Enqueue(ev domain.UserEvent) {
	e.events = append(e.events, ev)
}

func (e *recordingEmitter) last() domain.UserEvent {
	if len(e.events) == 0 {
		return domain.UserEvent{}
	}
	return e.events[len(e.events)-1]
}
