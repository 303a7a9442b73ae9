package loggingmw

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hobbyvault/storefront/internal/logging"
	"github.com/hobbyvault/storefront/internal/session"
)

// RequestLogger attaches a request-scoped logger to the context and
// writes one completion line per request.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(echo.HeaderXRequestID)

			l := base.With(
				"method", c.Request().Method,
				"path", c.Path(),
				"url", c.Request().URL.Path,
				"remote_ip", c.RealIP(),
			)
			if rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}

			req := c.Request().WithContext(logging.IntoContext(c.Request().Context(), l))
			c.SetRequest(req)

			start := time.Now()
			err := next(c)
			dur := time.Since(start)
			status := c.Response().Status

			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
				status = c.Response().Status
			}

			l = l.With("status", status, "duration_ms", dur.Milliseconds())
			// The session cookie middleware runs inside this one, so the
			// id only exists on the way out.
			if sid := session.IDFromContext(c); sid != "" {
				l = l.With("session", sid)
			}

			switch {
			case err != nil || status >= 500:
				l.Error("request completed", "error", errStr(err))
			case status >= 400:
				l.Warn("request completed")
			default:
				l.Info("request completed", "bytes", c.Response().Size)
			}
			return nil
		}
	}
}

func errStr(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%v", err)
}
