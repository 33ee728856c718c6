package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Lesson struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Subject     string    `gorm:"size:100" json:"subject"`
	Description string    `gorm:"type:text" json:"description"`
	TeacherID   uuid.UUID `gorm:"type:uuid;not null" json:"teacher_id"`

	Teacher User `gorm:"foreignkey:TeacherID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
