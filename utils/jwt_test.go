package utils

import (
	"net/http/httptest"
	"strconv"
	"testing"

	"learnhub/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// extractThrough runs ExtractUserIDFromToken inside a real request context.
func extractThrough(t *testing.T, cfg *config.Config, authorization string) (int, string) {
	t.Helper()

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		userID, err := ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(strconv.FormatUint(uint64(userID), 10))
	})

	req := httptest.NewRequest("GET", "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body := make([]byte, 16)
	n, _ := resp.Body.Read(body)
	return resp.StatusCode, string(body[:n])
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}

	token, err := GenerateJWTToken(42, cfg)
	require.NoError(t, err)

	status, body := extractThrough(t, cfg, "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "42", body)

	// the bare token without the Bearer prefix is accepted too
	status, body = extractThrough(t, cfg, token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "42", body)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWTToken(7, &config.Config{JWTSecret: "one"})
	require.NoError(t, err)

	status, _ := extractThrough(t, &config.Config{JWTSecret: "another"}, "Bearer "+token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestTokenMissingHeader(t *testing.T) {
	status, _ := extractThrough(t, &config.Config{JWTSecret: "testsecret"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
