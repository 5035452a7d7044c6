package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Skotchmaster/artesan_shop/internal/hash"
	"github.com/Skotchmaster/artesan_shop/internal/logging"
	"github.com/Skotchmaster/artesan_shop/internal/models"
	"github.com/Skotchmaster/artesan_shop/internal/mykafka"
	"github.com/Skotchmaster/artesan_shop/internal/repo"
	"github.com/Skotchmaster/artesan_shop/internal/storage"
)

const (
	MinPasswordLength = 6
	// bcrypt refuses anything longer.
	MaxPasswordBytes  = 72
)

// Credentials of the account seeded on an empty users table.
const (
	DefaultAdminName     = "Administrador"
	DefaultAdminEmail    = "admin@artesanapp.com"
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9+._%\-]{1,256}@[a-zA-Z0-9][a-zA-Z0-9\-]{0,64}(\.[a-zA-Z0-9][a-zA-Z0-9\-]{0,25})+$`)

type RegisterInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     models.Role `json:"role,omitempty"`
}

func (in *RegisterInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if r, ok := models.ParseRole(string(in.Role)); ok {
		in.Role = r
	}
}

func (in RegisterInput) validate() error {
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case in.Email == "":
		return fmt.Errorf("%w: email is required", ErrValidation)
	case !emailRe.MatchString(in.Email):
		return fmt.Errorf("%w: email is malformed", ErrValidation)
	case in.Username == "":
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if err := validatePassword(in.Password); err != nil {
		return err
	}
	if _, ok := models.ParseRole(string(in.Role)); !ok {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}
	return nil
}

func validatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, MaxPasswordBytes)
	}
	return nil
}

type AuthService struct {
	Store  *storage.Manager
	Events mykafka.Publisher
}

func NewAuthService(store *storage.Manager, events mykafka.Publisher) *AuthService {
	return &AuthService{Store: store, Events: events}
}

// EnsureDefaultAdmin seeds the bootstrap admin when no users exist yet.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context) error {
	n, err := s.Store.UserCount(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}
	_, err = s.Register(ctx, RegisterInput{
		Name:     DefaultAdminName,
		Email:    DefaultAdminEmail,
		Username: DefaultAdminUsername,
		Password: DefaultAdminPassword,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logging.FromContext(ctx).Info("default_admin_created", "username", DefaultAdminUsername)
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	taken, err := s.Store.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: username already exists", ErrConflict)
	}
	taken, err = s.Store.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hashed, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hashed,
		Role:         in.Role,
	}
	if err := s.Store.SaveUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, fmt.Errorf("%w: username or email already exists", ErrConflict)
		}
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUser, user.ID, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
	return user, nil
}

// Login checks the credentials and makes the user the current session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Store.FindUserByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	if err := s.Store.SetCurrentUser(ctx, user); err != nil {
		return nil, fmt.Errorf("set session: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicUser, user.ID, map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	current, err := s.Store.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := s.Store.SetCurrentUser(ctx, nil); err != nil {
		return err
	}
	if current != nil {
		publish(ctx, s.Events, mykafka.TopicUser, current.ID, map[string]any{
			"type":   "user_logged_out",
			"userID": current.ID,
		})
	}
	return nil
}

// CurrentUser returns nil when nobody is logged in.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	return s.Store.CurrentUser(ctx)
}

func (s *AuthService) IsLoggedIn(ctx context.Context) (bool, error) {
	u, err := s.Store.CurrentUser(ctx)
	return u != nil, err
}

func (s *AuthService) IsAdmin(ctx context.Context) (bool, error) {
	u, err := s.Store.CurrentUser(ctx)
	return u.IsAdmin(), err
}
