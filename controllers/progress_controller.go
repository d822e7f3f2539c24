package controllers

import (
	"errors"
	"strconv"
	"time"

	"learnhub/config"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg}
}

// GetUserProgress godoc
// @Summary Raw progress list for a user
// @Description Only the user themselves or an admin may read it
// @Tags progress
// @Produce json
// @Success 200 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Router /progress/user/{userId} [get]
func (pc *ProgressController) GetUserProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	userID, err := strconv.Atoi(c.Params("userId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	if uint(userID) != user.ID && user.Role != models.RoleAdmin {
		return utils.Forbidden(c, "Not authorized to view this progress")
	}

	var records []models.Progress
	if err := pc.DB.
		Preload("Course").
		Preload("LessonsProgress").
		Preload("QuizAttempts").
		Where("user_id = ?", userID).
		Order("last_accessed_at DESC").
		Find(&records).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.SuccessList(c, len(records), fiber.Map{"progress": records})
}

func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("courseId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var progress models.Progress
	if err := pc.DB.
		Preload("Course").
		Preload("Course.Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order ASC") }).
		Preload("LessonsProgress").
		Preload("QuizAttempts").
		Preload("QuizAttempts.Answers").
		Preload("Notes").
		Where("user_id = ? AND course_id = ?", user.ID, courseID).
		First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Progress not found for this course")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"progress": progress})
}

// UpdateLessonProgress applies a lesson completion/time update to the
// caller's Progress ledger for the course.
func (pc *ProgressController) UpdateLessonProgress(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		CourseID  uint `json:"courseId"`
		LessonID  uint `json:"lessonId"`
		Completed bool `json:"completed"`
		TimeSpent int  `json:"timeSpent"` // minutes, added to the running total
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var progress models.Progress
	if err := pc.DB.
		Preload("LessonsProgress").
		Where("user_id = ? AND course_id = ?", user.ID, input.CourseID).
		First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Progress not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var lesson models.Lesson
	if err := pc.DB.Where("id = ? AND course_id = ?", input.LessonID, input.CourseID).First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found in this course")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var totalLessons int64
	if err := pc.DB.Model(&models.Lesson{}).Where("course_id = ?", input.CourseID).Count(&totalLessons).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	progress.ApplyLessonProgress(input.LessonID, input.Completed, input.TimeSpent, int(totalLessons), time.Now())

	if err := pc.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(&progress).Error; err != nil {
		return utils.InternalServerError(c, "Could not save progress")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"progress": progress})
}

// AddProgressNote appends a study note to the caller's Progress for a course.
func (pc *ProgressController) AddProgressNote(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		CourseID uint   `json:"courseId"`
		LessonID uint   `json:"lessonId"`
		Content  string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Content == "" {
		return utils.BadRequest(c, "content is required")
	}

	var progress models.Progress
	if err := pc.DB.
		Where("user_id = ? AND course_id = ?", user.ID, input.CourseID).
		First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Progress not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	note := models.ProgressNote{
		ProgressID: progress.ID,
		LessonID:   input.LessonID,
		Content:    input.Content,
	}
	if err := pc.DB.Create(&note).Error; err != nil {
		return utils.InternalServerError(c, "Could not save note")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"note": note})
}

// GetDashboard godoc
// @Summary Student dashboard
// @Description Aggregates the caller's Progress records; nothing is cached
// @Tags progress
// @Produce json
// @Success 200 {object} utils.Response
// @Router /progress/dashboard [get]
func (pc *ProgressController) GetDashboard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var records []models.Progress
	if err := pc.DB.
		Preload("Course").
		Preload("QuizAttempts").
		Where("user_id = ?", user.ID).
		Find(&records).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, models.BuildDashboard(records))
}

// GetInstructorAnalytics godoc
// @Summary Instructor analytics
// @Description Full-scan aggregation over every Progress record touching the instructor's courses
// @Tags progress
// @Produce json
// @Success 200 {object} utils.Response
// @Router /progress/instructor/analytics [get]
func (pc *ProgressController) GetInstructorAnalytics(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var courses []models.Course
	if err := pc.DB.Preload("Lessons").Where("instructor_id = ?", user.ID).Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	if len(courses) == 0 {
		return utils.Success(c, fiber.StatusOK, models.BuildInstructorAnalytics(nil, nil, time.Now()))
	}

	courseIDs := make([]uint, 0, len(courses))
	for _, course := range courses {
		courseIDs = append(courseIDs, course.ID)
	}

	var records []models.Progress
	if err := pc.DB.
		Preload("User").
		Preload("Course").
		Preload("QuizAttempts").
		Where("course_id IN ?", courseIDs).
		Order("last_accessed_at DESC").
		Find(&records).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, models.BuildInstructorAnalytics(courses, records, time.Now()))
}
