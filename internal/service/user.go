// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/userapi/userapi/internal/metrics"
	"github.com/userapi/userapi/internal/model"
	"github.com/userapi/userapi/internal/repository"
)

// Service errors.
var (
	ErrUserNotFound  = repository.ErrUserNotFound
	ErrMissingFields = errors.New("missing required fields: name, email")
)

// UserStore is the storage the service depends on.
type UserStore interface {
	Create(name, email string) *model.User
	Get(id int64) (*model.User, error)
	List() []*model.User
	Update(id int64, upd repository.UserUpdate) (*model.User, error)
	Delete(id int64) bool
	Count() int
}

// UserService handles user business logic.
type UserService struct {
	store   UserStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, recorder metrics.Recorder, logger *slog.Logger) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		store:   store,
		metrics: recorder,
		logger:  logger,
	}
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	Name  string
	Email string
}

// UpdateUserInput defines input for updating a user.
// Nil fields were not supplied by the caller.
type UpdateUserInput struct {
	Name  *string
	Email *string
}

// CreateUser validates the input and stores a new user.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if input.Name == "" || input.Email == "" {
		return nil, ErrMissingFields
	}

	user := s.store.Create(input.Name, input.Email)
	s.metrics.IncUserCreated()

	s.logger.InfoContext(ctx, "user_created", "user_id", user.ID)

	return user, nil
}

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.store.Get(id)
}

// ListUsers returns every user.
func (s *UserService) ListUsers(ctx context.Context) []*model.User {
	return s.store.List()
}

// UpdateUser changes the supplied fields of an existing user.
func (s *UserService) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*model.User, error) {
	user, err := s.store.Update(id, repository.UserUpdate{
		Name:  input.Name,
		Email: input.Email,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncUserUpdated()

	s.logger.InfoContext(ctx, "user_updated",
		"user_id", user.ID,
		"name_changed", input.Name != nil && *input.Name != "",
		"email_changed", input.Email != nil && *input.Email != "",
	)

	return user, nil
}

// DeleteUser removes a user. Returns ErrUserNotFound if nothing was removed.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if !s.store.Delete(id) {
		return ErrUserNotFound
	}
	s.metrics.IncUserDeleted()

	s.logger.InfoContext(ctx, "user_deleted", "user_id", id)

	return nil
}

// CountUsers returns the number of stored users.
func (s *UserService) CountUsers(ctx context.Context) int {
	return s.store.Count()
}
