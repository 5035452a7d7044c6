package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artesan_shop/internal/logging"
	"github.com/Skotchmaster/artesan_shop/internal/models"
	"github.com/Skotchmaster/artesan_shop/internal/tokens"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextUser   = "user"
)

// SessionSource resolves the user currently holding the store session.
type SessionSource interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

type Middleware struct {
	JWTSecret []byte
	Sessions  SessionSource
}

func New(secret []byte, sessions SessionSource) *Middleware {
	return &Middleware{JWTSecret: secret, Sessions: sessions}
}

type validatorFunc func(u *models.User) error

func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, nil)
}

// RequireAdmin checks the role stored for the session user, not the token
// claim, so a demoted admin loses access immediately.
func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, func(u *models.User) error {
		if !u.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *Middleware) require(next echo.HandlerFunc, validate validatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth")

		raw := TokenFromRequest(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			l.Warn("auth_rejected", "reason", "invalid_token", "error", err)
			c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		// the token is only good while its subject still holds the session
		user, err := m.Sessions.CurrentUser(ctx)
		if err != nil {
			l.Error("auth_session_lookup_failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "session lookup failed")
		}
		if user == nil || user.ID != claims.Subject {
			l.Warn("auth_rejected", "reason", "session_mismatch", "user_id", claims.Subject)
			c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
			return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
		}

		if validate != nil {
			if err := validate(user); err != nil {
				l.Warn("auth_rejected", "reason", "forbidden", "user_id", user.ID)
				return err
			}
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextRole, string(user.Role))
		c.Set(ContextUser, user)
		return next(c)
	}
}

// TokenFromRequest prefers the Authorization header and falls back to the
// access cookie.
func TokenFromRequest(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	if ck, err := c.Cookie(tokens.AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

// UserFrom returns the user placed in the context by RequireAuth.
func UserFrom(c echo.Context) *models.User {
	u, _ := c.Get(ContextUser).(*models.User)
	return u
}
