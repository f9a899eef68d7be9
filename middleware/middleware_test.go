package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debugtutor/backend/utils"
)

func TestCorrelationID_GeneratesTraceID(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString(utils.GetTraceID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}

func TestCorrelationID_HonorsProvidedTraceID(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Trace-ID", "caller-supplied-id")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, "caller-supplied-id", resp.Header.Get("X-Trace-ID"))
}

func TestRequestLogging_PassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Use(RequestLogging(utils.NewLogger("error", "json")))
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
