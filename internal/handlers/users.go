package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artesan_shop/internal/logging"
	"github.com/Skotchmaster/artesan_shop/internal/service"
)

// UserHandler backs the admin user-management screens.
type UserHandler struct {
	Auth *service.AuthService
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "list_users")

	users, err := h.Auth.SearchUsers(ctx, c.QueryParam("q"))
	if err != nil {
		return errorResponse(c, l, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": users, "total": len(users)})
}

func (h *UserHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get_user")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "invalid_id", err)
	}
	u, err := h.Auth.GetUser(ctx, id)
	if err != nil {
		return errorResponse(c, l, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_user")

	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "invalid_body", err)
	}
	u, err := h.Auth.CreateUser(ctx, req)
	if err != nil {
		return errorResponse(c, l, err)
	}

	l.Info("user_created", "user_id", u.ID, "role", u.Role)
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update_user")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "invalid_id", err)
	}
	var req service.UpdateUserInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "invalid_body", err)
	}
	u, err := h.Auth.UpdateUser(ctx, id, req)
	if err != nil {
		return errorResponse(c, l, err)
	}

	l.Info("user_updated", "user_id", u.ID)
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reset_password")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "invalid_id", err)
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "invalid_body", err)
	}
	if err := h.Auth.ResetPassword(ctx, id, req.Password); err != nil {
		return errorResponse(c, l, err)
	}

	l.Info("password_reset", "user_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete_user")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "invalid_id", err)
	}
	if err := h.Auth.DeleteUser(ctx, id); err != nil {
		return errorResponse(c, l, err)
	}

	l.Info("user_deleted", "user_id", id)
	return c.NoContent(http.StatusNoContent)
}
