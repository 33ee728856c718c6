package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonResource struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	LessonID   uuid.UUID `gorm:"type:uuid;not null;index" json:"lesson_id"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	FileURL    string    `gorm:"type:text;not null" json:"file_url"`
	UploadedAt time.Time `json:"uploaded_at"`

	Lesson Lesson `gorm:"foreignkey:LessonID" json:"-"`
}

func (r *LessonResource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
