package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AssessmentTypeQuiz       = "quiz"
	AssessmentTypeAssignment = "assignment"
	AssessmentTypeExam       = "exam"

	AssessmentStatusDraft     = "draft"
	AssessmentStatusPublished = "published"
	AssessmentStatusArchived  = "archived"
)

type Assessment struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	LessonID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"lesson_id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Instructions    string    `gorm:"type:text" json:"instructions"`
	Type            string    `gorm:"size:20;not null;default:'quiz'" json:"type"`
	TotalMarks      int       `gorm:"not null" json:"total_marks"`
	DurationMinutes *int      `json:"duration_minutes"`
	Status          string    `gorm:"size:20;not null;default:'draft'" json:"status"`
	CreatedBy       uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`

	Questions []Question `gorm:"foreignkey:AssessmentID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
