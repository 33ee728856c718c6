package services

import (
	"math"

	"github.com/Khaledrae/elimu_hub/models"
	"github.com/google/uuid"
)

type QuestionScore struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedOption string    `json:"selected_option"`
	IsCorrect      bool      `json:"is_correct"`
	MarksAwarded   int       `json:"marks_awarded"`
}

type ScoreBreakdown struct {
	PerQuestion   []QuestionScore `json:"per_question"`
	TotalScored   int             `json:"total_scored"`
	TotalPossible int             `json:"total_possible"`
	Percentage    float64         `json:"percentage"`
}

// ScoreAttempt grades a response set against the assessment's questions.
// Unanswered questions score zero but still count toward the possible total.
// A response to a question outside the set is ignored. No partial credit.
func ScoreAttempt(questions []models.Question, responses []models.StudentResponse) ScoreBreakdown {
	responseByQuestion := make(map[uuid.UUID]models.StudentResponse, len(responses))
	for _, r := range responses {
		responseByQuestion[r.QuestionID] = r
	}

	breakdown := ScoreBreakdown{
		PerQuestion: make([]QuestionScore, 0, len(questions)),
	}

	for _, q := range questions {
		breakdown.TotalPossible += q.Marks

		entry := QuestionScore{QuestionID: q.ID}
		if r, answered := responseByQuestion[q.ID]; answered {
			entry.SelectedOption = r.SelectedOption
			if r.SelectedOption == q.CorrectOption {
				entry.IsCorrect = true
				entry.MarksAwarded = q.Marks
				breakdown.TotalScored += q.Marks
			}
		}
		breakdown.PerQuestion = append(breakdown.PerQuestion, entry)
	}

	if breakdown.TotalPossible > 0 {
		breakdown.Percentage = float64(breakdown.TotalScored) / float64(breakdown.TotalPossible) * 100
	}

	return breakdown
}

// DisplayPercentage rounds to one decimal place. Stored scores stay exact;
// this is for presentation only.
func DisplayPercentage(p float64) float64 {
	return math.Round(p*10) / 10
}

// Passed applies a pass threshold to an exact percentage. The threshold is a
// presentation-layer choice, not part of the grading itself.
func Passed(percentage, threshold float64) bool {
	return percentage >= threshold
}
