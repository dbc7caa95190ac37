package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/yukikurage/todo-team-api/internal/constants"
	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/repository"
	"github.com/yukikurage/todo-team-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidEmail         = fmt.Errorf("%w: invalid email address", ErrValidation)
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles accounts and credentials.
type AuthService struct {
	store repository.Store
	cost  int
	now   Clock
}

// NewAuthService creates a new AuthService.
func NewAuthService(store repository.Store) *AuthService {
	return &AuthService{
		store: store,
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
	}
}

// RegisterInput represents the information to create a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new active user.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}

	err = s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if err := ensureEmailFree(ctx, repos.Users, email, 0); err != nil {
			return err
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials of an active user and stamps last_login.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	users := s.store.Repositories().Users

	user, err := users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	user.LastLogin = &now
	if err := users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	return user, nil
}

// GetUser retrieves an active user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	return findActiveUser(ctx, s.store.Repositories().Users, id)
}

// ListUsers lists active users.
func (s *AuthService) ListUsers(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.store.Repositories().Users.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// UpdateProfileInput carries a partial profile update.
type UpdateProfileInput struct {
	Name     *string
	Email    *string
	Password *string
}

// UpdateProfile applies the set fields to the user's own account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint64, input UpdateProfileInput) (*models.User, error) {
	var user *models.User
	err := s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		var err error
		if user, err = findActiveUser(ctx, repos.Users, userID); err != nil {
			return err
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return ErrNameRequired
			}
			user.Name = name
		}
		if input.Email != nil {
			email, err := normalizeEmail(*input.Email)
			if err != nil {
				return err
			}
			if email != user.Email {
				if err := ensureEmailFree(ctx, repos.Users, email, user.ID); err != nil {
					return err
				}
				user.Email = email
			}
		}
		if input.Password != nil {
			if len(*input.Password) < constants.MinPasswordLength {
				return ErrPasswordTooShort
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), s.cost)
			if err != nil {
				return ErrFailedToHashPassword
			}
			user.PasswordHash = string(hash)
		}

		if err := repos.Users.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// ensureEmailFree fails with ErrEmailTaken when another account, active or
// not, already uses the address.
func ensureEmailFree(ctx context.Context, users repository.UserRepository, email string, selfID uint64) error {
	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing.ID != selfID {
		return ErrEmailTaken
	}
	return nil
}
