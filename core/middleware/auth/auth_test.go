package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(New(cfg))
	app.Get("/status", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func get(t *testing.T, app *fiber.App, path, key string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if key != "" {
		req.Header.Set(HeaderName, key)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestNew_RejectsWithoutKey(t *testing.T) {
	app := newApp(Config{ApiKey: "secret"})

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/status", ""))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/status", "wrong"))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/status", "secret"))
}

func TestNew_EmptyKeyDisablesCheck(t *testing.T) {
	app := newApp(Config{})
	assert.Equal(t, fiber.StatusOK, get(t, app, "/status", ""))
}

func TestNew_ExemptPathsBypass(t *testing.T) {
	app := newApp(Config{ApiKey: "secret", Exempt: []string{"/healthz"}})

	assert.Equal(t, fiber.StatusOK, get(t, app, "/healthz", ""))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/status", ""))
}
