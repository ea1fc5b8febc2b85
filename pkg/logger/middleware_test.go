package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerMiddleware_RequestID(t *testing.T) {
	var out bytes.Buffer
	log := New(Config{Level: LevelDebug, Environment: "production", Output: &out})

	e := echo.New()
	e.Use(RequestLoggerMiddleware(log))

	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = GetRequestID(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-123", seen)
	assert.Contains(t, out.String(), `"request_id":"req-123"`)
	assert.Contains(t, out.String(), `"status":204`)
	assert.Contains(t, out.String(), `"method":"GET"`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader), "generated when absent")
}

func TestRecoveryMiddleware(t *testing.T) {
	var out bytes.Buffer
	e := echo.New()
	e.Use(RecoveryMiddleware(New(Config{Environment: "production", Output: &out})))
	e.GET("/", func(c echo.Context) error {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_UNEXPECTED_ERROR")
	assert.Contains(t, out.String(), `"panic":"boom"`)
	assert.Contains(t, out.String(), `"method":"GET"`)
}

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	ctx := WithLoggerContext(WithRequestIDContext(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "abc"), Nop())
	assert.Equal(t, "abc", GetRequestID(ctx))
	assert.NotNil(t, FromContext(ctx))
	assert.NotNil(t, FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
