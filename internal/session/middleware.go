package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// CookieName identifies the browser session.
	CookieName = "storefront_session"

	// ContextKey is where EnsureSession stashes the session id on the
	// echo context.
	ContextKey = "sessionID"

	cookieTTL = 30 * 24 * time.Hour
)

// EnsureSession assigns every request a session id, minting a cookie on
// first contact.
func EnsureSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(CookieName)
			if err != nil || ck.Value == "" {
				sid := uuid.NewString()
				c.SetCookie(CreateCookie(CookieName, sid, "/", time.Now().Add(cookieTTL)))
				c.Set(ContextKey, sid)
				return next(c)
			}
			c.Set(ContextKey, ck.Value)
			return next(c)
		}
	}
}

// IDFromContext returns the session id EnsureSession stashed.
func IDFromContext(c echo.Context) string {
	if v, ok := c.Get(ContextKey).(string); ok {
		return v
	}
	return ""
}
