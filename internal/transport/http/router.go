package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/artesan_shop/internal/handlers"
	"github.com/Skotchmaster/artesan_shop/internal/i18n"
	authmw "github.com/Skotchmaster/artesan_shop/internal/middleware/auth"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	DB             Pinger
	Auth           *authmw.Middleware
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	CartHandler    *handlers.CartHandler
	UserHandler    *handlers.UserHandler
	SearchHandler  *handlers.SearchHandler
	StoreHandler   *handlers.StoreHandler
	// LoginRPS limits login attempts per client IP. Zero disables the limit.
	LoginRPS float64
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.DB.PingContext(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login, loginLimiter(d.LoginRPS)...)
	v1.POST("/logout", d.AuthHandler.Logout, d.Auth.RequireAuth)
	v1.GET("/me", d.AuthHandler.Me, d.Auth.RequireAuth)
	v1.GET("/search", d.SearchHandler.Handler)
	v1.GET("/store/location", d.StoreHandler.GetLocation)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.GET("/:id/image", d.ProductHandler.GetImage)

	cart := v1.Group("/cart", d.Auth.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.GET("/summary", d.CartHandler.Summary)
	cart.POST("/items", d.CartHandler.AddToCart)
	cart.PATCH("/items/:product_id", d.CartHandler.UpdateQuantity)
	cart.DELETE("/items/:product_id", d.CartHandler.RemoveFromCart)
	cart.POST("/checkout", d.CartHandler.Checkout)

	admin := v1.Group("/admin", d.Auth.RequireAdmin)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	admin.PUT("/products/:id/stock", d.ProductHandler.SetStock)
	admin.PUT("/products/:id/image", d.ProductHandler.SetImage)

	admin.GET("/users", d.UserHandler.ListUsers)
	admin.POST("/users", d.UserHandler.CreateUser)
	admin.GET("/users/:id", d.UserHandler.GetUser)
	admin.PATCH("/users/:id", d.UserHandler.UpdateUser)
	admin.DELETE("/users/:id", d.UserHandler.DeleteUser)
	admin.PUT("/users/:id/password", d.UserHandler.ResetPassword)
}

func loginLimiter(rps float64) []echo.MiddlewareFunc {
	if rps <= 0 {
		return nil
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     int(rps) + 1,
		ExpiresIn: 3 * time.Minute,
	})
	return []echo.MiddlewareFunc{middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, handlers.Response{
				Status:  "error",
				Message: i18n.T(c.Request().Header.Get("Accept-Language"), i18n.KeyTooManyRequests),
			})
		},
	})}
}
