package guard

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hobbyvault/storefront/internal/logging"
	"github.com/hobbyvault/storefront/internal/session"
)

// Middleware applies Decide to every navigation request. API and health
// traffic is never redirected; the guard is about which screens a role
// may reach, not about the data plane.
func Middleware(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if req.Method != http.MethodGet || skip(path) {
				return next(c)
			}

			sid := session.IDFromContext(c)
			role, ok := sessions.CurrentRole(req.Context(), sid)
			if !ok {
				return next(c)
			}

			if target, redirect := Decide(path, role); redirect {
				logging.FromContext(req.Context()).Info("guard_redirect",
					"role", role, "from", path, "to", target)
				// 302 keeps the rejected path out of the history the
				// browser commits.
				return c.Redirect(http.StatusFound, target)
			}
			return next(c)
		}
	}
}

func skip(path string) bool {
	return strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/health")
}
