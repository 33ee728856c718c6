package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Question struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AssessmentID  uuid.UUID `gorm:"type:uuid;not null;index" json:"assessment_id"`
	QuestionText  string    `gorm:"type:text;not null" json:"question_text"`
	Marks         int       `gorm:"not null;default:1" json:"marks"`
	OptionA       string    `gorm:"type:text;not null" json:"option_a"`
	OptionB       string    `gorm:"type:text;not null" json:"option_b"`
	OptionC       string    `gorm:"type:text" json:"option_c"`
	OptionD       string    `gorm:"type:text" json:"option_d"`
	CorrectOption string    `gorm:"size:1;not null" json:"correct_option"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Option returns the text behind an option letter, empty if the slot is unset.
func (q *Question) Option(letter string) string {
	switch letter {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	}
	return ""
}
