package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuestionMultipleChoice = "multiple-choice"
	QuestionTrueFalse      = "true-false"
	QuestionMultipleAnswer = "multiple-answer"
)

type Quiz struct {
	Model
	CourseID           uint       `gorm:"not null" json:"courseId"`
	Course             *Course    `json:"course,omitempty"`
	LessonID           *uint      `json:"lessonId"` // optional: quiz can cover the whole course
	Title              string     `gorm:"not null" json:"title"`
	Description        string     `json:"description"`
	Questions          []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions"`
	Duration           int        `gorm:"default:30" json:"duration"` // minutes
	PassingScore       int        `gorm:"default:70" json:"passingScore"` // percentage
	TotalPoints        int        `gorm:"default:0" json:"totalPoints"`
	Difficulty         string     `gorm:"default:medium" json:"difficulty"` // easy, medium, hard
	IsActive           bool       `gorm:"default:true" json:"isActive"`
	AttemptsAllowed    int        `gorm:"default:3" json:"attemptsAllowed"` // 0 means unlimited
	ShuffleQuestions   bool       `gorm:"default:false" json:"shuffleQuestions"`
	ShowCorrectAnswers bool       `gorm:"default:true" json:"showCorrectAnswers"`
	AvailableFrom      time.Time  `json:"availableFrom"`
	AvailableUntil     *time.Time `json:"availableUntil"`
}

// BeforeSave keeps TotalPoints equal to the sum of the question point values.
func (q *Quiz) BeforeSave(tx *gorm.DB) error {
	if len(q.Questions) > 0 {
		total := 0
		for i := range q.Questions {
			if q.Questions[i].Points == 0 {
				q.Questions[i].Points = 1
			}
			total += q.Questions[i].Points
		}
		q.TotalPoints = total
	}
	return nil
}

type Question struct {
	Model
	QuizID        uint             `json:"quizId"`
	Text          string           `gorm:"not null" json:"questionText"`
	Type          string           `gorm:"not null" json:"questionType"`
	Options       []QuestionOption `gorm:"constraint:OnDelete:CASCADE" json:"options"`
	CorrectAnswer string           `json:"correctAnswer"` // true-false questions only
	Explanation   string           `json:"explanation"`
	Points        int              `gorm:"default:1" json:"points"`
	SequenceOrder int              `gorm:"not null" json:"order"`
}

type QuestionOption struct {
	Model
	QuestionID uint   `json:"questionId"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"isCorrect"`
}

// CorrectOptionIDs returns the ids of the options flagged correct, sorted.
func (q *Question) CorrectOptionIDs() []uint {
	var ids []uint
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	sortUints(ids)
	return ids
}
