package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/artesan_shop/internal/logging"
	"github.com/Skotchmaster/artesan_shop/internal/service"
	"github.com/Skotchmaster/artesan_shop/internal/util"
)

// maxImageUpload caps raw uploads before decoding.
const maxImageUpload = 10 << 20

type ProductHandler struct {
	Products *service.ProductService
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get_product")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "invalid_id", err)
	}
	p, err := h.Products.Get(ctx, id)
	if err != nil {
		return errorResponse(c, l, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get_products")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	total, items, err := h.Products.Page(ctx, offset, limit)
	if err != nil {
		return errorResponse(c, l, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": util.TotalPages(total, limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) GetImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get_product_image")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "invalid_id", err)
	}
	data, err := h.Products.Image(ctx, id)
	if err != nil {
		return errorResponse(c, l, err)
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_product")

	var req service.ProductInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "invalid_body", err)
	}

	p, err := h.Products.Create(ctx, req)
	if err != nil {
		return errorResponse(c, l, err)
	}

	l.Info("product_created", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "patch_product")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "invalid_id", err)
	}
	// absent fields keep their current value
	var req service.ProductPatch
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "invalid_body", err)
	}

	p, err := h.Products.Patch(ctx, id, req)
	if err != nil {
		return errorResponse(c, l, err)
	}

	l.Info("product_updated", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete_product")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "invalid_id", err)
	}
	if err := h.Products.Delete(ctx, id); err != nil {
		return errorResponse(c, l, err)
	}

	l.Info("product_deleted", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) SetStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "set_stock")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "invalid_id", err)
	}
	var req struct {
		Stock *int `json:"stock"`
		// Decrease takes units out instead of overwriting.
		Decrease int `json:"decrease"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "invalid_body", err)
	}

	switch {
	case req.Decrease != 0:
		p, err := h.Products.DecreaseStock(ctx, id, req.Decrease)
		if err != nil {
			return errorResponse(c, l, err)
		}
		return c.JSON(http.StatusOK, p)
	case req.Stock != nil:
		p, err := h.Products.UpdateStock(ctx, id, *req.Stock)
		if err != nil {
			return errorResponse(c, l, err)
		}
		return c.JSON(http.StatusOK, p)
	}
	return badRequest(c, l, "stock_or_decrease_required", nil)
}

// SetImage accepts a multipart "image" file or a JSON body with
// image_base64.
func (h *ProductHandler) SetImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "set_product_image")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, l, "invalid_id", err)
	}

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("image")
		if err != nil {
			return badRequest(c, l, "image_file_required", err)
		}
		f, err := fh.Open()
		if err != nil {
			return badRequest(c, l, "image_unreadable", err)
		}
		defer f.Close()
		raw, err := io.ReadAll(io.LimitReader(f, maxImageUpload))
		if err != nil {
			return badRequest(c, l, "image_unreadable", err)
		}
		p, err := h.Products.SetImage(ctx, id, raw)
		if err != nil {
			return errorResponse(c, l, err)
		}
		return c.JSON(http.StatusOK, p)
	}

	var req struct {
		ImageBase64 string `json:"image_base64"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "invalid_body", err)
	}
	p, err := h.Products.SetImageBase64(ctx, id, req.ImageBase64)
	if err != nil {
		return errorResponse(c, l, err)
	}
	l.Info("product_image_updated", "product_id", id)
	return c.JSON(http.StatusOK, p)
}
