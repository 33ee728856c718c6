package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentResponse struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AttemptID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attempt_question" json:"attempt_id"`
	QuestionID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attempt_question" json:"question_id"`
	SelectedOption string    `gorm:"size:1;not null" json:"selected_option"`
	IsCorrect      bool      `gorm:"default:false" json:"is_correct"`
	MarksAwarded   int       `gorm:"default:0" json:"marks_awarded"`

	Attempt  Attempt  `gorm:"foreignkey:AttemptID" json:"-"`
	Question Question `gorm:"foreignkey:QuestionID" json:"-"`
}

func (r *StudentResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
