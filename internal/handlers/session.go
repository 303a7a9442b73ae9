package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hobbyvault/storefront/internal/cart"
	"github.com/hobbyvault/storefront/internal/events"
	"github.com/hobbyvault/storefront/internal/logging"
	"github.com/hobbyvault/storefront/internal/roles"
	"github.com/hobbyvault/storefront/internal/session"
)

type SessionHandler struct {
	Sessions *session.Manager
	Carts    *cart.Manager
	Producer *events.Producer
}

// Login accepts an access token issued by the auth service, stores the
// session identity and switches the cart store to synced mode.
func (h *SessionHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.login")

	var req struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.Bind(&req); err != nil || req.AccessToken == "" {
		l.Warn("login_error", "status", 400, "reason", "invalid body")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sid := session.IDFromContext(c)
	id, err := h.Sessions.Login(ctx, sid, req.AccessToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidToken) || errors.Is(err, session.ErrInvalidRole) {
			l.Warn("login_failed", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		l.Error("login_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	store := h.Carts.ForSession(ctx, sid, "")
	state, err := store.Login(ctx, req.AccessToken)
	if err != nil {
		// The session is authenticated either way; the cart screen will
		// retry the fetch.
		l.Warn("login_cart_fetch_failed", "error", err)
	}

	h.publishSession(c, map[string]any{
		"type": "user_logged_in",
		"user": id.UserID,
		"role": id.Role,
	})

	l.Info("login_success", "status", 200, "role", id.Role)
	return c.JSON(http.StatusOK, echo.Map{"user": id, "cart": state})
}

// Logout clears the session locally. The server-side cart is left
// untouched for the user's next login.
func (h *SessionHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.logout")

	sid := session.IDFromContext(c)
	cred, _ := h.Sessions.Credential(ctx, sid)
	state := h.Carts.ForSession(ctx, sid, cred).Logout(ctx)

	if err := h.Sessions.Logout(ctx, sid); err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publishSession(c, map[string]any{"type": "user_logged_out"})

	l.Info("logout_success", "status", 200)
	return c.JSON(http.StatusOK, echo.Map{"cart": state})
}

// SwitchRole sets the session's current role explicitly.
func (h *SessionHandler) SwitchRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.switch_role")

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("switch_role_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sid := session.IDFromContext(c)
	if err := h.Sessions.SetRole(ctx, sid, roles.Role(req.Role)); err != nil {
		if errors.Is(err, session.ErrInvalidRole) {
			l.Warn("switch_role_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
		}
		l.Error("switch_role_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("switch_role_success", "role", req.Role)
	return c.JSON(http.StatusOK, echo.Map{
		"role": req.Role,
		"home": roles.Role(req.Role).HomePath(),
	})
}

// GetSession reports the session as the guard sees it.
func (h *SessionHandler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	sid := session.IDFromContext(c)

	role, hasRole := h.Sessions.CurrentRole(ctx, sid)
	_, authenticated := h.Sessions.Credential(ctx, sid)

	resp := echo.Map{
		"authenticated": authenticated,
	}
	if hasRole {
		resp["role"] = role
		resp["home"] = role.HomePath()
	}
	if id, ok := h.Sessions.Identity(ctx, sid); ok {
		resp["user"] = id
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) publishSession(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Producer.PublishEvent(ctx, session.IDFromContext(c), event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("kafka_publish_failed", "error", err)
	}
}
