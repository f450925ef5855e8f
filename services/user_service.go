package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkoenig/ssoportal/models"
	"github.com/mkoenig/ssoportal/repositories"
)

// ErrInvalidCredentials is returned when the local login form carries a
// wrong email/password combination. Deliberately indistinguishable from
// an unknown account.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService interface defines user account business logic
type UserService interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Provision(ctx context.Context, email, name string) (*models.User, error)
	RecordLogin(ctx context.Context, id int) error
	GetAll(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int, error)
}

// userService implements UserService interface
type userService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// Authenticate checks the local fallback credentials
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetByEmail retrieves an active user by exact email match
func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.GetByEmail(ctx, email)
}

// Provision creates a local account for an externally authenticated
// user. The account has no password; only SSO can sign it in.
func (s *userService) Provision(ctx context.Context, email, name string) (*models.User, error) {
	form := &models.UserForm{Email: email, Name: name, Active: true}
	if errors := form.Validate(); len(errors) > 0 {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors, ", "))
	}

	user := &models.User{
		Email:  strings.TrimSpace(email),
		Name:   strings.TrimSpace(name),
		Active: true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	return user, nil
}

// RecordLogin stamps the user's last successful login
func (s *userService) RecordLogin(ctx context.Context, id int) error {
	return s.userRepo.UpdateLastLogin(ctx, id)
}

// GetAll retrieves all users
func (s *userService) GetAll(ctx context.Context) ([]models.User, error) {
	return s.userRepo.GetAll(ctx)
}

// Count returns the total number of users
func (s *userService) Count(ctx context.Context) (int, error) {
	return s.userRepo.Count(ctx)
}
