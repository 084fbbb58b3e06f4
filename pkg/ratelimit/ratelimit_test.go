package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestAllowRefillsOverTime(t *testing.T) {
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(Config{RequestsPerSecond: 1, Burst: 2, Now: clk.Now})

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "burst exhausted")
	assert.True(t, l.Allow("b"), "buckets are per key")

	clk.now = clk.now.Add(time.Second)
	assert.True(t, l.Allow("a"))
}

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	l := New(Config{})
	for range 100 {
		require.True(t, l.Allow("a"))
	}
	assert.Zero(t, l.Len())
}

func TestIdleBucketsAreEvicted(t *testing.T) {
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(Config{RequestsPerSecond: 1, IdleTTL: time.Minute, Now: clk.Now})
	l.Allow("a")
	l.Allow("b")
	assert.Equal(t, 2, l.Len())

	clk.now = clk.now.Add(2 * time.Minute)
	l.Allow("c")
	assert.Equal(t, 1, l.Len())
}

func TestMiddlewareReturns429(t *testing.T) {
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(Config{RequestsPerSecond: 0.5, Now: clk.Now})
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", c.Get("X-User"))
		return c.Next()
	})
	app.Post("/api/chat", l.Middleware(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	send := func(user string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}
	assert.Equal(t, http.StatusOK, send("ruben").StatusCode)
	limited := send("ruben")
	assert.Equal(t, http.StatusTooManyRequests, limited.StatusCode)
	assert.Equal(t, "2", limited.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, http.StatusOK, send("ana").StatusCode)
}
