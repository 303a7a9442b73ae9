package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hobbyvault/storefront/internal/session"
)

type ScreenHandler struct {
	Sessions *session.Manager
}

// Screen answers any navigation path the guard let through with a
// screen descriptor; the front-end shell owns the rendering.
func (h *ScreenHandler) Screen(c echo.Context) error {
	ctx := c.Request().Context()
	sid := session.IDFromContext(c)

	resp := echo.Map{"screen": c.Request().URL.Path}
	if role, ok := h.Sessions.CurrentRole(ctx, sid); ok {
		resp["role"] = role
	}
	return c.JSON(http.StatusOK, resp)
}
