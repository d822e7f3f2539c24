package models

import (
	"time"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

type User struct {
	Model
	FirstName    string    `gorm:"not null" json:"firstName"`
	LastName     string    `gorm:"not null" json:"lastName"`
	Email        string    `gorm:"unique;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"default:student" json:"role"` // student, instructor, admin
	Bio          string    `json:"bio"`
	Avatar       string    `json:"avatar"`
	Stats        UserStats `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
}

// UserStats is the denormalized activity summary shown on the profile.
// It is recomputed explicitly after quiz submissions and logins.
type UserStats struct {
	TotalQuizzesTaken int       `json:"totalQuizzesTaken"`
	AverageScore      int       `json:"averageScore"`
	TotalTimeSpent    int       `gorm:"default:0" json:"totalTimeSpent"` // minutes
	LearningStreak    int       `gorm:"default:0" json:"learningStreak"` // consecutive active days
	LastActiveAt      time.Time `json:"lastActiveAt"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type LoginHistory struct {
	Model
	UserID    uint      `json:"userId"`
	LoginTime time.Time `json:"loginTime"`
}
