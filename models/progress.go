package models

import (
	"math"
	"time"
)

// Progress is the per-(user, course) ledger of lesson completion and quiz
// attempts. The pair is unique; attempts are append-only.
type Progress struct {
	Model
	UserID               uint             `gorm:"uniqueIndex:idx_user_course;not null" json:"userId"`
	CourseID             uint             `gorm:"uniqueIndex:idx_user_course;not null" json:"courseId"`
	User                 *User            `json:"user,omitempty"`
	Course               *Course          `json:"course,omitempty"`
	EnrolledAt           time.Time        `json:"enrolledAt"`
	CompletedAt          *time.Time       `json:"completedAt"`
	IsCompleted          bool             `gorm:"default:false" json:"isCompleted"`
	CompletionPercentage int              `gorm:"default:0" json:"completionPercentage"`
	LessonsProgress      []LessonProgress `gorm:"constraint:OnDelete:CASCADE" json:"lessonsProgress"`
	QuizAttempts         []QuizAttempt    `gorm:"constraint:OnDelete:CASCADE" json:"quizAttempts"`
	TotalTimeSpent       int              `gorm:"default:0" json:"totalTimeSpent"` // minutes
	LastAccessedAt       time.Time        `json:"lastAccessedAt"`
	CurrentLessonID      *uint            `json:"currentLesson"`
	Performance          Performance      `gorm:"embedded;embeddedPrefix:performance_" json:"performance"`
	Notes                []ProgressNote   `gorm:"constraint:OnDelete:CASCADE" json:"notes"`
}

type Performance struct {
	AverageQuizScore   int `json:"averageQuizScore"`
	TotalQuizzesTaken  int `json:"totalQuizzesTaken"`
	TotalQuizzesPassed int `json:"totalQuizzesPassed"`
}

type LessonProgress struct {
	Model
	ProgressID     uint       `json:"-"`
	LessonID       uint       `gorm:"not null" json:"lessonId"`
	Completed      bool       `gorm:"default:false" json:"completed"`
	CompletedAt    *time.Time `json:"completedAt"`
	TimeSpent      int        `gorm:"default:0" json:"timeSpent"` // minutes, cumulative
	LastAccessedAt time.Time  `json:"lastAccessedAt"`
}

type QuizAttempt struct {
	Model
	ProgressID  uint           `json:"-"`
	QuizID      uint           `gorm:"not null" json:"quizId"`
	Score       int            `json:"score"`
	TotalPoints int            `json:"totalPoints"`
	Percentage  int            `json:"percentage"`
	Passed      bool           `json:"passed"`
	Answers     []GradedAnswer `gorm:"constraint:OnDelete:CASCADE" json:"answers"`
	TimeSpent   int            `gorm:"default:0" json:"timeSpent"` // seconds
	AttemptedAt time.Time      `json:"attemptedAt"`
}

type GradedAnswer struct {
	Model
	QuizAttemptID  uint   `json:"-"`
	QuestionID     uint   `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"` // JSON-encoded submitted value
	IsCorrect      bool   `json:"isCorrect"`
	PointsEarned   int    `json:"pointsEarned"`
}

type ProgressNote struct {
	Model
	ProgressID uint   `json:"-"`
	LessonID   uint   `json:"lessonId"`
	Content    string `json:"content"`
}

// CalculateCompletionPercentage returns the rounded share of completed lessons.
func (p *Progress) CalculateCompletionPercentage(totalLessons int) int {
	if totalLessons == 0 {
		return 0
	}
	completed := 0
	for _, lp := range p.LessonsProgress {
		if lp.Completed {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(totalLessons) * 100))
}

// UpdatePerformance recomputes the rolling quiz aggregates over the full
// attempt history.
func (p *Progress) UpdatePerformance() {
	if len(p.QuizAttempts) == 0 {
		return
	}
	totalScore := 0
	passed := 0
	for _, attempt := range p.QuizAttempts {
		totalScore += attempt.Percentage
		if attempt.Passed {
			passed++
		}
	}
	p.Performance.AverageQuizScore = int(math.Round(float64(totalScore) / float64(len(p.QuizAttempts))))
	p.Performance.TotalQuizzesTaken = len(p.QuizAttempts)
	p.Performance.TotalQuizzesPassed = passed
}

// AttemptsOn counts prior attempts on a specific quiz.
func (p *Progress) AttemptsOn(quizID uint) int {
	count := 0
	for _, attempt := range p.QuizAttempts {
		if attempt.QuizID == quizID {
			count++
		}
	}
	return count
}

// ApplyLessonProgress updates the per-lesson record and the document-level
// rollups. CompletedAt is stamped only on the first completion and TimeSpent
// only accumulates. The IsCompleted flip at 100% is one-way.
func (p *Progress) ApplyLessonProgress(lessonID uint, completed bool, timeSpent int, totalLessons int, now time.Time) {
	var row *LessonProgress
	for i := range p.LessonsProgress {
		if p.LessonsProgress[i].LessonID == lessonID {
			row = &p.LessonsProgress[i]
			break
		}
	}

	if row == nil {
		p.LessonsProgress = append(p.LessonsProgress, LessonProgress{
			LessonID:       lessonID,
			LastAccessedAt: now,
		})
		row = &p.LessonsProgress[len(p.LessonsProgress)-1]
	}

	row.Completed = completed
	row.LastAccessedAt = now
	if completed && row.CompletedAt == nil {
		at := now
		row.CompletedAt = &at
	}
	if timeSpent > 0 {
		row.TimeSpent += timeSpent
		p.TotalTimeSpent += timeSpent
	}

	current := lessonID
	p.CurrentLessonID = &current
	p.LastAccessedAt = now
	p.CompletionPercentage = p.CalculateCompletionPercentage(totalLessons)

	if p.CompletionPercentage == 100 && !p.IsCompleted {
		p.IsCompleted = true
		at := now
		p.CompletedAt = &at
	}
}
