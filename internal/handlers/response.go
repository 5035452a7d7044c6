package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artesan_shop/internal/i18n"
	"github.com/Skotchmaster/artesan_shop/internal/service"
)

type Response struct {
	Status  string `json:"status"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func statusFor(k service.Kind) int {
	switch k {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict, service.KindInsufficientStock:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func localize(c echo.Context, key string) string {
	return i18n.T(c.Request().Header.Get("Accept-Language"), key)
}

// errorResponse turns a service error into a localized JSON body. Internal
// errors are logged and their text is not sent to the client.
func errorResponse(c echo.Context, l *slog.Logger, err error) error {
	kind := service.KindOf(err)
	status := statusFor(kind)
	body := Response{
		Status:  "error",
		Kind:    kind.String(),
		Message: localize(c, kind.String()),
	}
	if kind == service.KindInternal {
		l.Error("request_failed", "status", status, "error", err)
	} else {
		body.Detail = err.Error()
		l.Warn("request_rejected", "status", status, "reason", kind.String(), "error", err)
	}
	return c.JSON(status, body)
}

func badRequest(c echo.Context, l *slog.Logger, reason string, err error) error {
	l.Warn("bad_request", "status", http.StatusBadRequest, "reason", reason, "error", err)
	detail := reason
	if err != nil {
		detail = reason + ": " + err.Error()
	}
	return c.JSON(http.StatusBadRequest, Response{
		Status:  "error",
		Kind:    service.KindValidation.String(),
		Message: localize(c, i18n.KeyValidation),
		Detail:  detail,
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

var errEmptyID = errors.New("empty id")

func pathID(c echo.Context, name string) (string, error) {
	id := c.Param(name)
	if id == "" {
		return "", errEmptyID
	}
	return id, nil
}
