package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/artesan_shop/internal/models"
	"github.com/Skotchmaster/artesan_shop/internal/tokens"
)

var secret = []byte("test-secret")

type fixedSession struct {
	user *models.User
}

func (f *fixedSession) CurrentUser(context.Context) (*models.User, error) {
	return f.user, nil
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, UserFrom(c).ID)
}

func run(t *testing.T, h echo.HandlerFunc, setup func(r *http.Request)) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if setup != nil {
		setup(req)
	}
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func bearer(t *testing.T, userID, role string) func(r *http.Request) {
	tok, _, err := tokens.SignAccessToken(userID, role, secret, time.Minute)
	require.NoError(t, err)
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok) }
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	return he.Code
}

func TestRequireAuth(t *testing.T) {
	ana := &models.User{ID: "u-ana", Role: models.RoleUser}
	m := New(secret, &fixedSession{user: ana})

	_, err := run(t, m.RequireAuth(okHandler), nil)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = run(t, m.RequireAuth(okHandler), func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer junk") })
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	rec, err := run(t, m.RequireAuth(okHandler), bearer(t, "u-ana", "USER"))
	require.NoError(t, err)
	assert.Equal(t, "u-ana", rec.Body.String())
}

func TestRequireAuth_CookieToken(t *testing.T) {
	m := New(secret, &fixedSession{user: &models.User{ID: "u-ana"}})
	tok, exp, err := tokens.SignAccessToken("u-ana", "USER", secret, time.Minute)
	require.NoError(t, err)

	rec, err := run(t, m.RequireAuth(okHandler), func(r *http.Request) {
		r.AddCookie(tokens.CreateCookie(tokens.AccessCookie, tok, "/", exp))
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_TokenOutlivesSession(t *testing.T) {
	m := New(secret, &fixedSession{user: &models.User{ID: "u-bob"}})
	_, err := run(t, m.RequireAuth(okHandler), bearer(t, "u-ana", "USER"))
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	m = New(secret, &fixedSession{})
	_, err = run(t, m.RequireAuth(okHandler), bearer(t, "u-ana", "USER"))
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestRequireAdmin_UsesStoredRole(t *testing.T) {
	m := New(secret, &fixedSession{user: &models.User{ID: "u-ana", Role: models.RoleUser}})
	// a stale ADMIN claim does not help
	_, err := run(t, m.RequireAdmin(okHandler), bearer(t, "u-ana", "ADMIN"))
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	m = New(secret, &fixedSession{user: &models.User{ID: "u-root", Role: models.RoleAdmin}})
	rec, err := run(t, m.RequireAdmin(okHandler), bearer(t, "u-root", "ADMIN"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
