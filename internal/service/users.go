package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/artesan_shop/internal/hash"
	"github.com/Skotchmaster/artesan_shop/internal/models"
	"github.com/Skotchmaster/artesan_shop/internal/mykafka"
	"github.com/Skotchmaster/artesan_shop/internal/repo"
)

type UpdateUserInput struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Store.Users(ctx)
}

func (s *AuthService) SearchUsers(ctx context.Context, q string) ([]models.User, error) {
	return s.Store.SearchUsers(ctx, q)
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.Store.UserByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return u, err
}

// CreateUser is the admin path: same rules as Register, any role.
func (s *AuthService) CreateUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.Register(ctx, in)
}

// UpdateUser edits name, email and role. Email uniqueness is only checked
// when the email actually changes.
func (s *AuthService) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	case email == "":
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	case !emailRe.MatchString(email):
		return nil, fmt.Errorf("%w: email is malformed", ErrValidation)
	}
	role := user.Role
	if in.Role != "" {
		r, ok := models.ParseRole(string(in.Role))
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
		}
		role = r
	}

	if email != user.Email {
		taken, err := s.Store.EmailExists(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
	}

	user.Name = name
	user.Email = email
	user.Role = role
	if err := s.Store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUser, user.ID, map[string]any{
		"type":   "user_updated",
		"userID": user.ID,
		"role":   user.Role,
	})
	return user, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, id, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	hashed, err := hash.HashPassword(password)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	user.PasswordHash = hashed
	if err := s.Store.UpdateUser(ctx, user); err != nil {
		return err
	}

	publish(ctx, s.Events, mykafka.TopicUser, user.ID, map[string]any{
		"type":   "user_password_reset",
		"userID": user.ID,
	})
	return nil
}

// DeleteUser refuses to remove whoever holds the session.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	current, err := s.Store.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if current != nil && current.ID == id {
		return fmt.Errorf("%w: cannot delete the logged-in user", ErrForbidden)
	}

	if err := s.Store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return err
	}

	publish(ctx, s.Events, mykafka.TopicUser, id, map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})
	return nil
}
