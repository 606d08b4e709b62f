package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"tienda-services/internal/config"
	"tienda-services/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingRoutes struct{}

func (pingRoutes) Register(api *echo.Group) {
	api.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	api.GET("/missing", func(c echo.Context) error {
		return service.ErrNotFound
	})
}

func newTestServer(t *testing.T) (*Server, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	cfg := &config.Config{CORS: config.CORS{AllowOrigins: []string{"http://shop.test"}}}
	return NewServer("orders", cfg, logger, pingRoutes{}), &logs
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"orders"}`, rec.Body.String())
}

func TestRoutesGetMiddleware(t *testing.T) {
	srv, logs := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "http://shop.test")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "http://shop.test", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, logs.String(), `"uri":"/api/ping"`)
}

func TestServiceErrorsAreMapped(t *testing.T) {
	srv, logs := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"not found"}`, rec.Body.String())
	assert.Contains(t, logs.String(), `"status":404`)
}
