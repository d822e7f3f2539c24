package controllers

import (
	"errors"
	"math"
	"strconv"
	"time"

	"learnhub/config"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuizController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewQuizController(db *gorm.DB, cfg *config.Config) *QuizController {
	return &QuizController{DB: db, Cfg: cfg}
}

// sanitizeQuiz serves the quiz without its answer keys: option correctness
// flags and true-false answers never leave the server before a submission.
func sanitizeQuiz(quiz *models.Quiz) fiber.Map {
	questions := make([]fiber.Map, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		options := make([]fiber.Map, 0, len(q.Options))
		for _, opt := range q.Options {
			options = append(options, fiber.Map{
				"id":   opt.ID,
				"text": opt.Text,
			})
		}
		questions = append(questions, fiber.Map{
			"id":           q.ID,
			"questionText": q.Text,
			"questionType": q.Type,
			"options":      options,
			"points":       q.Points,
			"order":        q.SequenceOrder,
		})
	}

	return fiber.Map{
		"id":                 quiz.ID,
		"courseId":           quiz.CourseID,
		"lessonId":           quiz.LessonID,
		"title":              quiz.Title,
		"description":        quiz.Description,
		"questions":          questions,
		"duration":           quiz.Duration,
		"passingScore":       quiz.PassingScore,
		"totalPoints":        quiz.TotalPoints,
		"difficulty":         quiz.Difficulty,
		"isActive":           quiz.IsActive,
		"attemptsAllowed":    quiz.AttemptsAllowed,
		"shuffleQuestions":   quiz.ShuffleQuestions,
		"showCorrectAnswers": quiz.ShowCorrectAnswers,
	}
}

// GetCourseQuizzes godoc
// @Summary List quizzes for a course
// @Description Lists active quizzes with answer keys stripped
// @Tags quizzes
// @Produce json
// @Success 200 {object} utils.Response
// @Router /quizzes/course/{courseId} [get]
func (qc *QuizController) GetCourseQuizzes(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("courseId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var quizzes []models.Quiz
	if err := qc.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order ASC") }).
		Preload("Questions.Options").
		Where("course_id = ? AND is_active = ?", courseID, true).
		Find(&quizzes).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	sanitized := make([]fiber.Map, 0, len(quizzes))
	for i := range quizzes {
		sanitized = append(sanitized, sanitizeQuiz(&quizzes[i]))
	}

	return utils.SuccessList(c, len(sanitized), fiber.Map{"quizzes": sanitized})
}

func (qc *QuizController) GetQuiz(c *fiber.Ctx) error {
	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order ASC") }).
		Preload("Questions.Options").
		Preload("Course").
		First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"quiz": sanitizeQuiz(&quiz)})
}

func (qc *QuizController) CreateQuiz(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var quiz models.Quiz
	if err := c.BodyParser(&quiz); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if quiz.Title == "" || quiz.CourseID == 0 {
		return utils.BadRequest(c, "title and courseId are required")
	}

	var course models.Course
	if err := qc.DB.First(&course, quiz.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if course.InstructorID != user.ID && user.Role != models.RoleAdmin {
		return utils.Forbidden(c, "Not authorized to create quiz for this course")
	}

	quiz.ID = 0
	for i := range quiz.Questions {
		quiz.Questions[i].ID = 0
		if quiz.Questions[i].SequenceOrder == 0 {
			quiz.Questions[i].SequenceOrder = i + 1
		}
		for j := range quiz.Questions[i].Options {
			quiz.Questions[i].Options[j].ID = 0
		}
	}

	if err := qc.DB.Create(&quiz).Error; err != nil {
		return utils.InternalServerError(c, "Could not create quiz")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"quiz": quiz})
}

// SubmitQuiz grades a submission against the stored answer keys and appends
// the attempt to the caller's Progress ledger. The caller must already be
// enrolled; submitting never creates an enrollment.
func (qc *QuizController) SubmitQuiz(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var input struct {
		Answers   []models.SubmittedAnswer `json:"answers"`
		TimeSpent int                      `json:"timeSpent"` // seconds
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var quiz models.Quiz
	if err := qc.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("sequence_order ASC") }).
		Preload("Questions.Options").
		First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var progress models.Progress
	if err := qc.DB.
		Preload("QuizAttempts").
		Where("user_id = ? AND course_id = ?", user.ID, quiz.CourseID).
		First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.BadRequest(c, "You must be enrolled in the course to take this quiz")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if quiz.AttemptsAllowed > 0 && progress.AttemptsOn(quiz.ID) >= quiz.AttemptsAllowed {
		return utils.BadRequest(c, "Maximum attempts ("+strconv.Itoa(quiz.AttemptsAllowed)+") reached for this quiz")
	}

	result := quiz.Grade(input.Answers)

	attempt := models.QuizAttempt{
		ProgressID:  progress.ID,
		QuizID:      quiz.ID,
		Score:       result.Score,
		TotalPoints: result.TotalPoints,
		Percentage:  result.Percentage,
		Passed:      result.Passed,
		Answers:     result.Answers,
		TimeSpent:   input.TimeSpent,
		AttemptedAt: time.Now(),
	}
	if err := qc.DB.Create(&attempt).Error; err != nil {
		return utils.InternalServerError(c, "Could not record attempt")
	}

	progress.QuizAttempts = append(progress.QuizAttempts, attempt)
	progress.UpdatePerformance()
	progress.LastAccessedAt = time.Now()
	if err := qc.DB.Save(&progress).Error; err != nil {
		return utils.InternalServerError(c, "Could not update progress")
	}

	qc.updateUserQuizStats(user)

	data := fiber.Map{
		"score":         result.Score,
		"totalPoints":   result.TotalPoints,
		"percentage":    result.Percentage,
		"passed":        result.Passed,
		"gradedAnswers": result.Answers,
	}

	// Answer keys and explanations are disclosed only after grading, and only
	// when the quiz allows it.
	if quiz.ShowCorrectAnswers {
		correctAnswers := make([]fiber.Map, 0, len(quiz.Questions))
		for _, q := range quiz.Questions {
			entry := fiber.Map{
				"questionId":  q.ID,
				"explanation": q.Explanation,
			}
			if q.Type == models.QuestionTrueFalse {
				entry["correctAnswer"] = q.CorrectAnswer
			} else {
				entry["correctAnswer"] = q.CorrectOptionIDs()
			}
			correctAnswers = append(correctAnswers, entry)
		}
		data["correctAnswers"] = correctAnswers
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"result": data})
}

// updateUserQuizStats refreshes the denormalized profile counters over the
// user's full attempt history.
func (qc *QuizController) updateUserQuizStats(user *models.User) {
	var records []models.Progress
	if err := qc.DB.Preload("QuizAttempts").Where("user_id = ?", user.ID).Find(&records).Error; err != nil {
		return
	}

	totalAttempts := 0
	totalPercentage := 0
	for _, p := range records {
		totalAttempts += len(p.QuizAttempts)
		for _, a := range p.QuizAttempts {
			totalPercentage += a.Percentage
		}
	}

	user.Stats.TotalQuizzesTaken = totalAttempts
	if totalAttempts > 0 {
		user.Stats.AverageScore = int(math.Round(float64(totalPercentage) / float64(totalAttempts)))
	}
	qc.DB.Save(user)
}

func (qc *QuizController) UpdateQuiz(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.Preload("Course").Preload("Questions.Options").First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if quiz.Course == nil || (quiz.Course.InstructorID != user.ID && user.Role != models.RoleAdmin) {
		return utils.Forbidden(c, "Not authorized to update this quiz")
	}

	var input struct {
		Title              *string           `json:"title"`
		Description        *string           `json:"description"`
		Duration           *int              `json:"duration"`
		PassingScore       *int              `json:"passingScore"`
		Difficulty         *string           `json:"difficulty"`
		IsActive           *bool             `json:"isActive"`
		AttemptsAllowed    *int              `json:"attemptsAllowed"`
		ShuffleQuestions   *bool             `json:"shuffleQuestions"`
		ShowCorrectAnswers *bool             `json:"showCorrectAnswers"`
		Questions          []models.Question `json:"questions"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != nil {
		quiz.Title = *input.Title
	}
	if input.Description != nil {
		quiz.Description = *input.Description
	}
	if input.Duration != nil {
		quiz.Duration = *input.Duration
	}
	if input.PassingScore != nil {
		quiz.PassingScore = *input.PassingScore
	}
	if input.Difficulty != nil {
		quiz.Difficulty = *input.Difficulty
	}
	if input.IsActive != nil {
		quiz.IsActive = *input.IsActive
	}
	if input.AttemptsAllowed != nil {
		quiz.AttemptsAllowed = *input.AttemptsAllowed
	}
	if input.ShuffleQuestions != nil {
		quiz.ShuffleQuestions = *input.ShuffleQuestions
	}
	if input.ShowCorrectAnswers != nil {
		quiz.ShowCorrectAnswers = *input.ShowCorrectAnswers
	}

	if input.Questions != nil {
		if err := qc.DB.Where("quiz_id = ?", quiz.ID).Delete(&models.Question{}).Error; err != nil {
			return utils.InternalServerError(c, "Could not update questions")
		}
		for i := range input.Questions {
			input.Questions[i].ID = 0
			input.Questions[i].QuizID = quiz.ID
			if input.Questions[i].SequenceOrder == 0 {
				input.Questions[i].SequenceOrder = i + 1
			}
			for j := range input.Questions[i].Options {
				input.Questions[i].Options[j].ID = 0
			}
		}
		quiz.Questions = input.Questions
	}

	if err := qc.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(&quiz).Error; err != nil {
		return utils.InternalServerError(c, "Could not update quiz")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"quiz": quiz})
}

func (qc *QuizController) DeleteQuiz(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.Preload("Course").First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if quiz.Course == nil || (quiz.Course.InstructorID != user.ID && user.Role != models.RoleAdmin) {
		return utils.Forbidden(c, "Not authorized to delete this quiz")
	}

	if err := qc.DB.Delete(&quiz).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete quiz")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{})
}
