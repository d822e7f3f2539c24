package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"learnhub/config"
	"learnhub/models"
	"learnhub/routes"
	"learnhub/utils"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type envelope struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

// setupTestApp builds the full route tree over an in-memory database.
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{JWTSecret: "testsecret", ServerPort: "8080"}

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg)
	return app, db, cfg
}

// createUser inserts a user with the given role and returns it with a token.
func createUser(t *testing.T, db *gorm.DB, cfg *config.Config, email, role string) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Stats:        models.UserStats{LastActiveAt: time.Now()},
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateJWTToken(user.ID, cfg)
	require.NoError(t, err)
	return user, token
}

// doRequest performs a JSON request against the test app.
func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	}
	return resp, env
}

// createCourse inserts a published course with the given lessons.
func createCourse(t *testing.T, db *gorm.DB, instructorID uint, lessonCount int) models.Course {
	t.Helper()

	course := models.Course{
		Title:        "Test Course",
		Description:  "A course used in tests",
		Category:     "programming",
		Level:        "beginner",
		InstructorID: instructorID,
		IsPublished:  true,
	}
	for i := 1; i <= lessonCount; i++ {
		course.Lessons = append(course.Lessons, models.Lesson{
			Title:         fmt.Sprintf("Lesson %d", i),
			Content:       "content",
			SequenceOrder: i,
		})
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

// enroll runs the enrollment endpoint for the user.
func enroll(t *testing.T, app *fiber.App, token string, courseID uint) {
	t.Helper()
	resp, _ := doRequest(t, app, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
