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
	"github.com/hobbyvault/storefront/internal/session"
)

type CartHandler struct {
	Carts    *cart.Manager
	Sessions *session.Manager
	Producer *events.Producer
}

// store resolves the session's cart store, resuming synced mode when a
// credential survived a restart.
func (h *CartHandler) store(c echo.Context) *cart.Store {
	ctx := c.Request().Context()
	sid := session.IDFromContext(c)
	cred, _ := h.Sessions.Credential(ctx, sid)
	return h.Carts.ForSession(ctx, sid, cred)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	st := h.store(c)
	state, err := st.Fetch(ctx)
	if err != nil {
		// Sync failure leaves the visible cart as it was; the screen
		// renders the last known state.
		l.Warn("cart_fetch_failed", "error", err)
	}
	return c.JSON(http.StatusOK, state)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req struct {
		ProductID uint    `json:"product_id"`
		VariantID uint    `json:"variant_id"`
		Price     float64 `json:"price"`
		Quantity  uint    `json:"quantity"`
		Name      string  `json:"name"`
		Image     string  `json:"image"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("cart_add_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	state, err := h.store(c).Add(ctx, cart.Product{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Price:     req.Price,
		Name:      req.Name,
		Image:     req.Image,
	}, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrValidation) {
			l.Warn("cart_add_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("cart_add_error", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "cart service unavailable")
	}

	h.publish(c, map[string]any{
		"type":       "add_cart_items",
		"product_id": req.ProductID,
		"variant_id": req.VariantID,
		"quantity":   req.Quantity,
	})
	return c.JSON(http.StatusOK, state)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	state, err := h.store(c).Remove(ctx, id)
	if err != nil {
		l.Error("cart_remove_error", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "cart service unavailable")
	}

	h.publish(c, map[string]any{
		"type":         "cart_item_deleted",
		"deleted_item": id,
	})
	return c.JSON(http.StatusOK, state)
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_quantity")

	id := c.Param("id")
	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("cart_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	state, err := h.store(c).UpdateQuantity(ctx, id, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrValidation) {
			l.Warn("cart_update_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("cart_update_error", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "cart service unavailable")
	}

	h.publish(c, map[string]any{
		"type":         "cart_quantity_updated",
		"item":         id,
		"new_quantity": req.Quantity,
	})
	return c.JSON(http.StatusOK, state)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()

	state := h.store(c).Clear(ctx)

	h.publish(c, map[string]any{"type": "cart_cleared"})
	return c.JSON(http.StatusOK, state)
}

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Producer.PublishEvent(ctx, session.IDFromContext(c), event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("kafka_publish_failed", "error", err)
	}
}
