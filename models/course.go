package models

import (
	"gorm.io/gorm"
)

type Course struct {
	Model
	Title              string   `gorm:"not null" json:"title"`
	Description        string   `gorm:"not null" json:"description"`
	ShortDescription   string   `json:"shortDescription"`
	Category           string   `gorm:"not null" json:"category"` // programming, design, business, science, mathematics, language, other
	Level              string   `gorm:"default:beginner" json:"level"` // beginner, intermediate, advanced
	Thumbnail          string   `json:"thumbnail"`
	InstructorID       uint     `json:"instructorId"`
	Instructor         *User    `json:"instructor,omitempty"`
	Lessons            []Lesson `gorm:"constraint:OnDelete:CASCADE" json:"lessons"`
	LearningObjectives string   `json:"learningObjectives"` // newline-separated
	Prerequisites      string   `json:"prerequisites"`      // newline-separated
	Tags               string   `json:"tags"`               // comma-separated
	EnrolledStudents   []User   `gorm:"many2many:course_enrollments" json:"-"`
	TotalEnrollments   int      `gorm:"default:0" json:"totalEnrollments"`
	AverageRating      float64  `gorm:"default:0" json:"averageRating"`
	TotalRatings       int      `gorm:"default:0" json:"totalRatings"`
	IsPublished        bool     `gorm:"default:false" json:"isPublished"`
	EstimatedDuration  int      `gorm:"default:0" json:"estimatedDuration"` // hours
}

// RecountEnrollments keeps TotalEnrollments in sync with the join table.
// Called explicitly after every enrollment so the invariant stays auditable.
func (c *Course) RecountEnrollments(db *gorm.DB) error {
	var count int64
	if err := db.Table("course_enrollments").
		Where("course_id = ?", c.ID).
		Count(&count).Error; err != nil {
		return err
	}
	c.TotalEnrollments = int(count)
	return db.Model(c).Update("total_enrollments", c.TotalEnrollments).Error
}

type Lesson struct {
	Model
	CourseID      uint             `json:"courseId"`
	Title         string           `gorm:"not null" json:"title"`
	Content       string           `gorm:"not null" json:"content"`
	ContentType   string           `gorm:"default:text" json:"contentType"` // text, video, mixed
	VideoURL      string           `json:"videoUrl"`
	Duration      int              `gorm:"default:0" json:"duration"` // minutes
	SequenceOrder int              `gorm:"not null" json:"order"`
	Resources     []LessonResource `gorm:"constraint:OnDelete:CASCADE" json:"resources"`
}

type LessonResource struct {
	Model
	LessonID uint   `json:"lessonId"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Type     string `json:"type"` // pdf, link, document, other
}
