// Package repository provides the data access layer.
// Users are held in memory for the lifetime of the process.
package repository

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/userapi/userapi/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
)

// firstID is the id assigned to the first user created after construction or Clear.
const firstID int64 = 1

// UserUpdate carries the fields to change on an existing user.
// A nil or empty field is left unchanged.
type UserUpdate struct {
	Name  *string
	Email *string
}

// UserStore is an in-memory user store with auto-incrementing ids.
// It is safe for concurrent use.
type UserStore struct {
	mu     sync.RWMutex
	users  map[int64]*model.User
	nextID int64
	now    func() time.Time
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		users:  make(map[int64]*model.User),
		nextID: firstID,
		now:    time.Now,
	}
}

// SetClock replaces the clock used to stamp created_at. Intended for tests.
func (s *UserStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Create stores a new user under the next id.
// Validation of name and email is the caller's responsibility.
func (s *UserStore) Create(name, email string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := &model.User{
		ID:        s.nextID,
		Name:      name,
		Email:     email,
		CreatedAt: s.now(),
	}
	s.users[user.ID] = user
	s.nextID++

	return user.Clone()
}

// Get returns the user with the given id.
func (s *UserStore) Get(id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user.Clone(), nil
}

// List returns all users ordered by id, which is also insertion order.
func (s *UserStore) List() []*model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user.Clone())
	}
	slices.SortFunc(users, func(a, b *model.User) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})

	return users
}

// Update applies the non-empty fields of upd to the user with the given id.
func (s *UserStore) Update(id int64, upd UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	// Empty strings count as omitted, so a field can never be cleared.
	if upd.Name != nil && *upd.Name != "" {
		user.Name = *upd.Name
	}
	if upd.Email != nil && *upd.Email != "" {
		user.Email = *upd.Email
	}

	return user.Clone(), nil
}

// Delete removes the user with the given id and reports whether it existed.
func (s *UserStore) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	return true
}

// Count returns the number of stored users.
func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Clear removes every user and resets the id counter.
func (s *UserStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.users)
	s.nextID = firstID
}
