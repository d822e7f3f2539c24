package controllers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, env := doRequest(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"firstName": "New",
		"lastName":  "Student",
		"email":     "new@example.com",
		"password":  "password123",
	})

	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "success", env.Status)
	assert.NotEmpty(t, env.Data["token"])

	user := env.Data["user"].(map[string]interface{})
	assert.Equal(t, "student", user["role"])
	assert.NotContains(t, user, "passwordHash")
}

func TestRegisterCannotSelfAssignAdmin(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, env := doRequest(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"firstName": "Sneaky",
		"lastName":  "User",
		"email":     "sneaky@example.com",
		"password":  "password123",
		"role":      "admin",
	})

	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	user := env.Data["user"].(map[string]interface{})
	assert.Equal(t, "student", user["role"])
}

func TestRegisterMissingFields(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, env := doRequest(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"email": "incomplete@example.com",
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", env.Status)
}

func TestLogin(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	createUser(t, db, cfg, "login@example.com", "student")

	resp, env := doRequest(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "login@example.com",
		"password": "password",
	})

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", env.Status)
	assert.NotEmpty(t, env.Data["token"])
}

func TestLoginWrongPassword(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	createUser(t, db, cfg, "login2@example.com", "student")

	resp, env := doRequest(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "login2@example.com",
		"password": "wrong",
	})

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "error", env.Status)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, env := doRequest(t, app, "GET", "/api/progress/dashboard", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "error", env.Status)
}
