package models

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	err := NewInternalError(inner)

	assert.Equal(t, CodeInternal, err.Code)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/app-error", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusNotFound, NewNotFoundError("Post", 9))
	})
	app.Get("/raw-error", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError,
			errors.New("pq: password authentication failed for user postgres"))
	})

	t.Run("App Error Carries Code And Message", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/app-error", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, CodeNotFound, body.Code)
		assert.NotEmpty(t, body.Error)
	})

	t.Run("Raw Error Details Never Leak", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/raw-error", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, CodeInternal, body.Code)
		assert.Equal(t, "Internal server error", body.Error)
		assert.NotContains(t, body.Error, "postgres")
	})
}

func TestUserJSONNeverExposesPassword(t *testing.T) {
	t.Parallel()

	user := User{Username: "alice", Password: "$2a$10$secret-hash"}
	user.ID = 1

	raw, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-hash")
	assert.Contains(t, string(raw), "alice")
}
