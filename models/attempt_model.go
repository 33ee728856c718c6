package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusGraded     = "graded"
)

type Attempt struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	StudentID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	AssessmentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"assessment_id"`
	Status       string     `gorm:"size:20;not null;default:'in_progress'" json:"status"`
	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	SubmittedAt  *time.Time `json:"submitted_at"`

	TotalMarksScored   int     `gorm:"default:0" json:"total_marks_scored"`
	TotalMarksPossible int     `gorm:"default:0" json:"total_marks_possible"`
	ScorePercentage    float64 `gorm:"default:0" json:"score_percentage"`

	ResultReference *string `gorm:"size:12;unique" json:"result_reference"`
	ResultSlipURL   *string `gorm:"size:255" json:"result_slip_url"`

	Student    User       `gorm:"foreignkey:StudentID" json:"-"`
	Assessment Assessment `gorm:"foreignkey:AssessmentID" json:"-"`

	Responses []StudentResponse `gorm:"foreignkey:AttemptID" json:"responses,omitempty"`
}

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Deadline returns the moment the attempt expires, or false for untimed
// assessments. The Assessment association must be loaded.
func (a *Attempt) Deadline() (time.Time, bool) {
	if a.Assessment.DurationMinutes == nil {
		return time.Time{}, false
	}
	return a.StartedAt.Add(time.Duration(*a.Assessment.DurationMinutes) * time.Minute), true
}
