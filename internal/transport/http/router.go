package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/hobbyvault/storefront/internal/guard"
	"github.com/hobbyvault/storefront/internal/handlers"
	"github.com/hobbyvault/storefront/internal/session"
)

type Deps struct {
	Sessions       *session.Manager
	CartHandler    *handlers.CartHandler
	SessionHandler *handlers.SessionHandler
	SearchHandler  *handlers.SearchHandler
	ScreenHandler  *handlers.ScreenHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.Use(session.EnsureSession())
	e.Use(guard.Middleware(d.Sessions))

	v1 := e.Group("/api/v1")

	sess := v1.Group("/session")
	sess.GET("", d.SessionHandler.GetSession)
	sess.POST("/login", d.SessionHandler.Login)
	sess.POST("/logout", d.SessionHandler.Logout)
	sess.POST("/role", d.SessionHandler.SwitchRole)

	cart := v1.Group("/cart")
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.POST("/clear", d.CartHandler.ClearCart)
	cart.DELETE("/:id", d.CartHandler.RemoveFromCart)
	cart.PATCH("/:id", d.CartHandler.UpdateQuantity)

	v1.GET("/search", d.SearchHandler.Search)

	// Everything else is a navigation path; the guard above has already
	// decided whether this role may see it.
	e.GET("/*", d.ScreenHandler.Screen)
}
