package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artesan_shop/internal/i18n"
	"github.com/Skotchmaster/artesan_shop/internal/logging"
	authmw "github.com/Skotchmaster/artesan_shop/internal/middleware/auth"
	"github.com/Skotchmaster/artesan_shop/internal/models"
	"github.com/Skotchmaster/artesan_shop/internal/service"
	"github.com/Skotchmaster/artesan_shop/internal/tokens"
)

type AuthHandler struct {
	Auth      *service.AuthService
	JWTSecret []byte
	AccessTTL time.Duration
}

type loginResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   int64        `json:"expires_at"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "register")

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "invalid_body", err)
	}

	// self-registration always creates a USER
	user, err := h.Auth.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return errorResponse(c, l, err)
	}

	l.Info("user_registered", "user_id", user.ID, "username", user.Username)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "invalid_body", err)
	}

	user, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return errorResponse(c, l, err)
	}

	token, exp, err := tokens.SignAccessToken(user.ID, string(user.Role), h.JWTSecret, h.AccessTTL)
	if err != nil {
		l.Error("token_sign_failed", "user_id", user.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot issue token")
	}
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, token, "/", exp))

	l.Info("login_succeeded", "user_id", user.ID)
	return c.JSON(http.StatusOK, loginResponse{User: user, AccessToken: token, ExpiresAt: exp.Unix()})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "logout")

	if err := h.Auth.Logout(ctx); err != nil {
		return errorResponse(c, l, err)
	}
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))

	l.Info("logout_succeeded")
	return c.JSON(http.StatusOK, Response{Status: "ok", Message: localize(c, i18n.KeyLoggedOut)})
}

// Me returns the user bound to the request by the auth middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	user := authmw.UserFrom(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
	}
	return c.JSON(http.StatusOK, user)
}
