package models

import (
	"time"

	"gorm.io/gorm"
)

// Model mirrors gorm.Model with camelCase JSON keys so documents serialize
// the way the client expects.
type Model struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
