package controllers_test

import (
	"fmt"
	"testing"

	"learnhub/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllUsersAdminOnly(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	_, studentToken := createUser(t, db, cfg, "student@test.io", models.RoleStudent)
	_, adminToken := createUser(t, db, cfg, "admin@test.io", models.RoleAdmin)

	resp, _ := doRequest(t, app, "GET", "/api/users", studentToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, env := doRequest(t, app, "GET", "/api/users", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, env.Data["users"].([]interface{}), 2)
}

func TestGetUserSelfOrAdmin(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	student, studentToken := createUser(t, db, cfg, "student@test.io", models.RoleStudent)
	_, otherToken := createUser(t, db, cfg, "other@test.io", models.RoleStudent)
	_, adminToken := createUser(t, db, cfg, "admin@test.io", models.RoleAdmin)

	path := fmt.Sprintf("/api/users/%d", student.ID)

	resp, env := doRequest(t, app, "GET", path, studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	user := env.Data["user"].(map[string]interface{})
	assert.Equal(t, "student@test.io", user["email"])
	_, leaked := user["passwordHash"]
	assert.False(t, leaked)

	resp, _ = doRequest(t, app, "GET", path, otherToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, app, "GET", path, adminToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUpdateUserRole(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	student, studentToken := createUser(t, db, cfg, "student@test.io", models.RoleStudent)
	_, adminToken := createUser(t, db, cfg, "admin@test.io", models.RoleAdmin)

	path := fmt.Sprintf("/api/users/%d", student.ID)

	resp, _ := doRequest(t, app, "PUT", path, studentToken, map[string]interface{}{"role": "admin"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, env := doRequest(t, app, "PUT", path, adminToken, map[string]interface{}{"role": "superuser"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "role")

	resp, env = doRequest(t, app, "PUT", path, adminToken, map[string]interface{}{"role": "instructor"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "instructor", env.Data["user"].(map[string]interface{})["role"])

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, student.ID).Error)
	assert.Equal(t, models.RoleInstructor, reloaded.Role)
}

func TestDeleteUserAdminOnly(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	student, studentToken := createUser(t, db, cfg, "student@test.io", models.RoleStudent)
	_, adminToken := createUser(t, db, cfg, "admin@test.io", models.RoleAdmin)

	path := fmt.Sprintf("/api/users/%d", student.ID)

	resp, _ := doRequest(t, app, "DELETE", path, studentToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, app, "DELETE", path, adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, app, "DELETE", path, adminToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetProfile(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	_, token := createUser(t, db, cfg, "me@test.io", models.RoleStudent)

	resp, env := doRequest(t, app, "GET", "/api/user/profile", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	user := env.Data["user"].(map[string]interface{})
	assert.Equal(t, "me@test.io", user["email"])
}

func TestUpdateProfileNeverChangesRole(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	student, token := createUser(t, db, cfg, "me@test.io", models.RoleStudent)

	body := map[string]interface{}{
		"firstName": "Ada",
		"bio":       "Learning things",
		"role":      "admin",
	}
	resp, env := doRequest(t, app, "PUT", "/api/user/profile", token, body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	user := env.Data["user"].(map[string]interface{})
	assert.Equal(t, "Ada", user["firstName"])
	assert.Equal(t, "Learning things", user["bio"])
	assert.Equal(t, "student", user["role"])

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, student.ID).Error)
	assert.Equal(t, models.RoleStudent, reloaded.Role)
	assert.Equal(t, "Ada", reloaded.FirstName)
}
