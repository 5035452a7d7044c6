package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artesan_shop/internal/logging"
	"github.com/Skotchmaster/artesan_shop/internal/service/search"
	"github.com/Skotchmaster/artesan_shop/internal/util"
)

type SearchHandler struct {
	Search *search.Service
}

func (h *SearchHandler) Handler(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search")

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return badRequest(c, l, "query_required", nil)
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, products, err := h.Search.Search(ctx, q, from, size)
	if err != nil {
		return errorResponse(c, l, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"total": total, "products": products})
}
