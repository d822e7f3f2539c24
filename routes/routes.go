package routes

import (
	"learnhub/config"
	"learnhub/controllers"
	"learnhub/middleware"
	"learnhub/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	protect := middleware.Protect(db, cfg)
	instructorOrAdmin := middleware.Authorize(models.RoleInstructor, models.RoleAdmin)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Course routes (list and detail are public)
	courseController := controllers.NewCourseController(db, cfg)
	courses := app.Group("/api/courses")
	courses.Get("/", courseController.GetAllCourses)
	courses.Get("/:id", courseController.GetCourse)
	courses.Post("/", protect, instructorOrAdmin, courseController.CreateCourse)
	courses.Put("/:id", protect, instructorOrAdmin, courseController.UpdateCourse)
	courses.Delete("/:id", protect, instructorOrAdmin, courseController.DeleteCourse)
	courses.Post("/:id/enroll", protect, courseController.EnrollCourse)

	// Quiz routes
	quizController := controllers.NewQuizController(db, cfg)
	quizzes := app.Group("/api/quizzes", protect)
	quizzes.Post("/", instructorOrAdmin, quizController.CreateQuiz)
	quizzes.Get("/course/:courseId", quizController.GetCourseQuizzes)
	quizzes.Get("/:id", quizController.GetQuiz)
	quizzes.Post("/:id/submit", quizController.SubmitQuiz)
	quizzes.Put("/:id", instructorOrAdmin, quizController.UpdateQuiz)
	quizzes.Delete("/:id", instructorOrAdmin, quizController.DeleteQuiz)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg)
	progress := app.Group("/api/progress", protect)
	progress.Get("/dashboard", progressController.GetDashboard)
	progress.Get("/user/:userId", progressController.GetUserProgress)
	progress.Get("/course/:courseId", progressController.GetCourseProgress)
	progress.Put("/lesson", progressController.UpdateLessonProgress)
	progress.Post("/notes", progressController.AddProgressNote)
	progress.Get("/instructor/analytics", instructorOrAdmin, progressController.GetInstructorAnalytics)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", protect, userController.GetProfile)
	app.Put("/api/user/profile", protect, userController.UpdateProfile)

	users := app.Group("/api/users", protect)
	users.Get("/", adminOnly, userController.GetAllUsers)
	users.Get("/:id", userController.GetUser)
	users.Put("/:id", adminOnly, userController.UpdateUser)
	users.Delete("/:id", adminOnly, userController.DeleteUser)
}
