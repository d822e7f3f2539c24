package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"learnhub/config"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CourseController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCourseController(db *gorm.DB, cfg *config.Config) *CourseController {
	return &CourseController{DB: db, Cfg: cfg}
}

// GetAllCourses godoc
// @Summary List published courses
// @Description Lists published courses, optionally filtered by category, level and text search
// @Tags courses
// @Produce json
// @Success 200 {object} utils.Response
// @Router /courses [get]
func (cc *CourseController) GetAllCourses(c *fiber.Ctx) error {
	category := c.Query("category")
	level := c.Query("level")
	search := c.Query("search")

	query := cc.DB.Model(&models.Course{}).Where("is_published = ?", true)

	if category != "" {
		query = query.Where("category = ?", category)
	}
	if level != "" {
		query = query.Where("level = ?", level)
	}
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var courses []models.Course
	if err := query.Preload("Instructor").Order("created_at DESC").Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.SuccessList(c, len(courses), fiber.Map{"courses": courses})
}

// GetCourse godoc
// @Summary Course detail
// @Tags courses
// @Produce json
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /courses/{id} [get]
func (cc *CourseController) GetCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.
		Preload("Instructor").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order ASC") }).
		Preload("Lessons.Resources").
		First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"course": course})
}

func (cc *CourseController) CreateCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var course models.Course
	if err := c.BodyParser(&course); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if course.Title == "" || course.Description == "" || course.Category == "" {
		return utils.BadRequest(c, "title, description and category are required")
	}

	course.ID = 0
	course.InstructorID = user.ID
	course.TotalEnrollments = 0

	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"course": course})
}

func (cc *CourseController) UpdateCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.Preload("Lessons").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if course.InstructorID != user.ID && user.Role != models.RoleAdmin {
		return utils.Forbidden(c, "Not authorized to update this course")
	}

	var input struct {
		Title              *string         `json:"title"`
		Description        *string         `json:"description"`
		ShortDescription   *string         `json:"shortDescription"`
		Category           *string         `json:"category"`
		Level              *string         `json:"level"`
		Thumbnail          *string         `json:"thumbnail"`
		Tags               *string         `json:"tags"`
		LearningObjectives *string         `json:"learningObjectives"`
		Prerequisites      *string         `json:"prerequisites"`
		IsPublished        *bool           `json:"isPublished"`
		EstimatedDuration  *int            `json:"estimatedDuration"`
		Lessons            []models.Lesson `json:"lessons"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		course.Title = *input.Title
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.ShortDescription != nil {
		course.ShortDescription = *input.ShortDescription
	}
	if input.Category != nil {
		course.Category = *input.Category
	}
	if input.Level != nil {
		course.Level = *input.Level
	}
	if input.Thumbnail != nil {
		course.Thumbnail = *input.Thumbnail
	}
	if input.Tags != nil {
		course.Tags = *input.Tags
	}
	if input.LearningObjectives != nil {
		course.LearningObjectives = *input.LearningObjectives
	}
	if input.Prerequisites != nil {
		course.Prerequisites = *input.Prerequisites
	}
	if input.IsPublished != nil {
		course.IsPublished = *input.IsPublished
	}
	if input.EstimatedDuration != nil {
		course.EstimatedDuration = *input.EstimatedDuration
	}

	// Replacing the lesson list replaces the embedded documents wholesale.
	if input.Lessons != nil {
		if err := cc.DB.Where("course_id = ?", course.ID).Delete(&models.Lesson{}).Error; err != nil {
			return utils.InternalServerError(c, "Could not update lessons")
		}
		for i := range input.Lessons {
			input.Lessons[i].ID = 0
			input.Lessons[i].CourseID = course.ID
			if input.Lessons[i].SequenceOrder == 0 {
				input.Lessons[i].SequenceOrder = i + 1
			}
		}
		course.Lessons = input.Lessons
	}

	if err := cc.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"course": course})
}

func (cc *CourseController) DeleteCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if course.InstructorID != user.ID && user.Role != models.RoleAdmin {
		return utils.Forbidden(c, "Not authorized to delete this course")
	}

	if err := cc.DB.Delete(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete course")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{})
}

// EnrollCourse enrolls the caller and creates the Progress ledger for the
// (user, course) pair. A second call is a conflict, not a re-enrollment.
func (cc *CourseController) EnrollCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var existing models.Progress
	err = cc.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&existing).Error
	if err == nil {
		return utils.BadRequest(c, "Already enrolled in this course")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := cc.DB.Model(&course).Association("EnrolledStudents").Append(user); err != nil {
		return utils.InternalServerError(c, "Could not enroll in course")
	}
	if err := course.RecountEnrollments(cc.DB); err != nil {
		return utils.InternalServerError(c, "Could not update enrollment count")
	}

	now := time.Now()
	progress := models.Progress{
		UserID:         user.ID,
		CourseID:       course.ID,
		EnrolledAt:     now,
		LastAccessedAt: now,
	}
	if err := cc.DB.Create(&progress).Error; err != nil {
		return utils.InternalServerError(c, "Could not create progress record")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "Successfully enrolled in course", fiber.Map{
		"course": course,
	})
}
