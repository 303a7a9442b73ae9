package loggingmw

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/hobbyvault/storefront/internal/session"
)

func captureLogs(t *testing.T, buf *bytes.Buffer) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestRequestLoggerCompletionLine(t *testing.T) {
	var buf bytes.Buffer

	e := echo.New()
	e.Use(RequestLogger(captureLogs(t, &buf)))
	e.Use(session.EnsureSession())
	e.GET("/guest/home", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/guest/home", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sess-1"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	entry := lastLine(t, &buf)
	require.Equal(t, "request completed", entry["msg"])
	require.Equal(t, "INFO", entry["level"])
	require.EqualValues(t, http.StatusOK, entry["status"])
	require.Equal(t, "sess-1", entry["session"])
	require.Equal(t, "/guest/home", entry["url"])
}

func TestRequestLoggerErrorLine(t *testing.T) {
	var buf bytes.Buffer

	e := echo.New()
	e.Use(RequestLogger(captureLogs(t, &buf)))
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "upstream down")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	entry := lastLine(t, &buf)
	require.Equal(t, "ERROR", entry["level"])
	require.EqualValues(t, http.StatusBadGateway, entry["status"])
	require.Contains(t, entry["error"], "upstream down")
	// No session cookie and no session middleware: no session field.
	require.NotContains(t, entry, "session")
}
