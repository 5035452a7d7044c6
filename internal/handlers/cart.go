package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artesan_shop/internal/i18n"
	"github.com/Skotchmaster/artesan_shop/internal/logging"
	"github.com/Skotchmaster/artesan_shop/internal/models"
	"github.com/Skotchmaster/artesan_shop/internal/service"
)

type CartHandler struct {
	Cart *service.CartService
}

type cartView struct {
	Items []models.CartItem `json:"items"`
	Count int               `json:"count"`
	Total float64           `json:"total"`
}

func (h *CartHandler) view(c echo.Context) (*cartView, error) {
	ctx := c.Request().Context()
	items, err := h.Cart.GetCart(ctx)
	if err != nil {
		return nil, err
	}
	v := &cartView{Items: items}
	if v.Items == nil {
		v.Items = []models.CartItem{}
	}
	for _, it := range items {
		v.Count += it.Quantity
		v.Total += it.TotalPrice()
	}
	return v, nil
}

func (h *CartHandler) GetCart(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "get_cart")
	v, err := h.view(c)
	if err != nil {
		return errorResponse(c, l, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CartHandler) Summary(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_summary")

	count, err := h.Cart.GetCartItemCount(ctx)
	if err != nil {
		return errorResponse(c, l, err)
	}
	total, err := h.Cart.GetCartTotal(ctx)
	if err != nil {
		return errorResponse(c, l, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"count": count, "total": total})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "add_to_cart")

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "invalid_body", err)
	}
	if req.ProductID == "" {
		return badRequest(c, l, "product_id_required", nil)
	}

	if err := h.Cart.AddToCart(ctx, req.ProductID, req.Quantity); err != nil {
		return errorResponse(c, l, err)
	}

	v, err := h.view(c)
	if err != nil {
		return errorResponse(c, l, err)
	}
	l.Info("cart_item_added", "product_id", req.ProductID, "quantity", req.Quantity)
	return c.JSON(http.StatusOK, v)
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update_cart_item")

	productID, err := pathID(c, "product_id")
	if err != nil {
		return badRequest(c, l, "invalid_id", err)
	}
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "invalid_body", err)
	}
	if req.Quantity == nil {
		return badRequest(c, l, "quantity_required", nil)
	}

	if err := h.Cart.UpdateQuantity(ctx, productID, *req.Quantity); err != nil {
		return errorResponse(c, l, err)
	}

	v, err := h.view(c)
	if err != nil {
		return errorResponse(c, l, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "remove_from_cart")

	productID, err := pathID(c, "product_id")
	if err != nil {
		return badRequest(c, l, "invalid_id", err)
	}
	if err := h.Cart.RemoveFromCart(ctx, productID); err != nil {
		return errorResponse(c, l, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "clear_cart")

	if err := h.Cart.ClearCart(ctx); err != nil {
		return errorResponse(c, l, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	receipt, err := h.Cart.Checkout(ctx)
	if err != nil {
		return errorResponse(c, l, err)
	}

	l.Info("checkout_completed", "items", receipt.Items, "total", receipt.Total)
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"message": localize(c, i18n.KeyCheckoutDone),
		"receipt": receipt,
	})
}
