package services

import (
	"errors"
	"time"

	"github.com/Khaledrae/elimu_hub/models"
	"github.com/Khaledrae/elimu_hub/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Students get this long past the stated duration before a timed attempt is
// treated as expired, to absorb clock skew and in-flight requests. The
// deadline sweep applies the same grace.
const DeadlineGrace = 30 * time.Second

// QuestionForStudent is the question payload handed out when an attempt
// starts. The answer key stays server-side until the attempt is graded.
type QuestionForStudent struct {
	ID           uuid.UUID `json:"id"`
	QuestionText string    `json:"question_text"`
	Marks        int       `json:"marks"`
	OptionA      string    `json:"option_a"`
	OptionB      string    `json:"option_b"`
	OptionC      string    `json:"option_c,omitempty"`
	OptionD      string    `json:"option_d,omitempty"`
}

type StartedAttempt struct {
	AttemptID       uuid.UUID            `json:"attempt_id"`
	AssessmentID    uuid.UUID            `json:"assessment_id"`
	Title           string               `json:"title"`
	Instructions    string               `json:"instructions,omitempty"`
	DurationMinutes *int                 `json:"duration_minutes"`
	StartedAt       time.Time            `json:"started_at"`
	Questions       []QuestionForStudent `json:"questions"`
}

type AnswerSubmission struct {
	QuestionID     uuid.UUID
	SelectedOption string
}

type QuestionResult struct {
	QuestionID     uuid.UUID `json:"question_id"`
	QuestionText   string    `json:"question_text"`
	Marks          int       `json:"marks"`
	SelectedOption string    `json:"selected_option,omitempty"`
	CorrectOption  string    `json:"correct_option"`
	IsCorrect      bool      `json:"is_correct"`
	MarksAwarded   int       `json:"marks_awarded"`
}

type AttemptResult struct {
	AttemptID          uuid.UUID        `json:"attempt_id"`
	AssessmentID       uuid.UUID        `json:"assessment_id"`
	Status             string           `json:"status"`
	SubmittedAt        *time.Time       `json:"submitted_at"`
	TotalMarksScored   int              `json:"total_marks_scored"`
	TotalMarksPossible int              `json:"total_marks_possible"`
	ScorePercentage    float64          `json:"score_percentage"`
	ResultReference    *string          `json:"result_reference"`
	PerQuestion        []QuestionResult `json:"per_question"`
}

func attemptExpired(attempt *models.Attempt, now time.Time) bool {
	deadline, timed := attempt.Deadline()
	if !timed {
		return false
	}
	return now.After(deadline.Add(DeadlineGrace))
}

// StartAttempt opens a new attempt for the student and returns the question
// set with the answer key stripped. A fresh attempt is a new entity; attempts
// never leave a terminal state.
func StartAttempt(db *gorm.DB, studentID, assessmentID uuid.UUID) (*StartedAttempt, error) {
	var assessment models.Assessment
	err := db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&assessment, "id = ?", assessmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "assessment", ID: assessmentID.String()}
		}
		return nil, err
	}

	if assessment.Status != models.AssessmentStatusPublished {
		return nil, &NotPublishedError{Status: assessment.Status}
	}

	var open models.Attempt
	err = db.First(&open, "student_id = ? AND assessment_id = ? AND status = ?",
		studentID, assessmentID, models.AttemptStatusInProgress).Error
	if err == nil {
		return nil, &AlreadyInProgressError{AttemptID: open.ID.String()}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	attempt := models.Attempt{
		StudentID:    studentID,
		AssessmentID: assessmentID,
		Status:       models.AttemptStatusInProgress,
		StartedAt:    time.Now(),
	}
	if err := db.Create(&attempt).Error; err != nil {
		return nil, err
	}

	questions := make([]QuestionForStudent, len(assessment.Questions))
	for i, q := range assessment.Questions {
		questions[i] = QuestionForStudent{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Marks:        q.Marks,
			OptionA:      q.OptionA,
			OptionB:      q.OptionB,
			OptionC:      q.OptionC,
			OptionD:      q.OptionD,
		}
	}

	return &StartedAttempt{
		AttemptID:       attempt.ID,
		AssessmentID:    assessment.ID,
		Title:           assessment.Title,
		Instructions:    assessment.Instructions,
		DurationMinutes: assessment.DurationMinutes,
		StartedAt:       attempt.StartedAt,
		Questions:       questions,
	}, nil
}

func loadOwnedAttempt(db *gorm.DB, studentID, attemptID uuid.UUID) (*models.Attempt, error) {
	var attempt models.Attempt
	err := db.Preload("Assessment").First(&attempt, "id = ? AND student_id = ?", attemptID, studentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "attempt", ID: attemptID.String()}
		}
		return nil, err
	}
	return &attempt, nil
}

func validateSelection(question *models.Question, selected string) error {
	switch selected {
	case "A", "B", "C", "D":
	default:
		return &ValidationError{Field: "selected_option", Message: "selected_option must be one of A, B, C, D"}
	}
	if question.Option(selected) == "" {
		return &ValidationError{Field: "selected_option", Message: "selected_option references an empty option"}
	}
	return nil
}

// RecordAnswer upserts the student's response for one question. Re-answering
// overwrites, so retrying a failed call is safe.
func RecordAnswer(db *gorm.DB, studentID, attemptID, questionID uuid.UUID, selected string) (*models.StudentResponse, error) {
	attempt, err := loadOwnedAttempt(db, studentID, attemptID)
	if err != nil {
		return nil, err
	}

	if attempt.Status != models.AttemptStatusInProgress {
		return nil, &InvalidStateError{Message: "attempt has already been submitted"}
	}
	if attemptExpired(attempt, time.Now()) {
		return nil, &InvalidStateError{Message: "attempt time has expired"}
	}

	var question models.Question
	err = db.First(&question, "id = ? AND assessment_id = ?", questionID, attempt.AssessmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &UnknownQuestionError{QuestionID: questionID.String()}
		}
		return nil, err
	}

	if err := validateSelection(&question, selected); err != nil {
		return nil, err
	}

	var response models.StudentResponse
	err = db.First(&response, "attempt_id = ? AND question_id = ?", attemptID, questionID).Error
	switch {
	case err == nil:
		response.SelectedOption = selected
		if err := db.Save(&response).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		response = models.StudentResponse{
			AttemptID:      attemptID,
			QuestionID:     questionID,
			SelectedOption: selected,
		}
		if err := db.Create(&response).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return &response, nil
}

// SubmitAttempt merges any late responses, grades the attempt and freezes it.
// A second submit fails with InvalidStateError and never rescores.
func SubmitAttempt(db *gorm.DB, studentID, attemptID uuid.UUID, late []AnswerSubmission) (*AttemptResult, error) {
	attempt, err := loadOwnedAttempt(db, studentID, attemptID)
	if err != nil {
		return nil, err
	}

	if attempt.Status != models.AttemptStatusInProgress {
		return nil, &InvalidStateError{Message: "attempt has already been submitted"}
	}
	if attemptExpired(attempt, time.Now()) {
		return nil, &InvalidStateError{Message: "attempt time has expired"}
	}

	if err := gradeAttempt(db, attempt, late); err != nil {
		return nil, err
	}
	return GetResults(db, attempt.ID)
}

// ForceSubmitExpired grades an expired in-progress attempt with whatever
// responses were recorded. Used by the deadline sweep.
func ForceSubmitExpired(db *gorm.DB, attempt *models.Attempt) error {
	if attempt.Status != models.AttemptStatusInProgress {
		return &InvalidStateError{Message: "attempt is not in progress"}
	}
	return gradeAttempt(db, attempt, nil)
}

func gradeAttempt(db *gorm.DB, attempt *models.Attempt, late []AnswerSubmission) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var questions []models.Question
		if err := tx.Where("assessment_id = ?", attempt.AssessmentID).Order("created_at ASC").Find(&questions).Error; err != nil {
			return err
		}
		questionByID := make(map[uuid.UUID]*models.Question, len(questions))
		for i := range questions {
			questionByID[questions[i].ID] = &questions[i]
		}

		var responses []models.StudentResponse
		if err := tx.Where("attempt_id = ?", attempt.ID).Find(&responses).Error; err != nil {
			return err
		}
		responseByQuestion := make(map[uuid.UUID]models.StudentResponse, len(responses))
		for _, r := range responses {
			responseByQuestion[r.QuestionID] = r
		}

		for _, answer := range late {
			question, ok := questionByID[answer.QuestionID]
			if !ok {
				return &UnknownQuestionError{QuestionID: answer.QuestionID.String()}
			}
			if err := validateSelection(question, answer.SelectedOption); err != nil {
				return err
			}
			if existing, ok := responseByQuestion[answer.QuestionID]; ok {
				existing.SelectedOption = answer.SelectedOption
				responseByQuestion[answer.QuestionID] = existing
			} else {
				responseByQuestion[answer.QuestionID] = models.StudentResponse{
					AttemptID:      attempt.ID,
					QuestionID:     answer.QuestionID,
					SelectedOption: answer.SelectedOption,
				}
			}
		}

		merged := make([]models.StudentResponse, 0, len(responseByQuestion))
		for _, r := range responseByQuestion {
			merged = append(merged, r)
		}
		breakdown := ScoreAttempt(questions, merged)

		awarded := make(map[uuid.UUID]QuestionScore, len(breakdown.PerQuestion))
		for _, entry := range breakdown.PerQuestion {
			awarded[entry.QuestionID] = entry
		}
		for questionID, r := range responseByQuestion {
			entry := awarded[questionID]
			r.IsCorrect = entry.IsCorrect
			r.MarksAwarded = entry.MarksAwarded
			if err := tx.Save(&r).Error; err != nil {
				return err
			}
		}

		reference, err := utils.GenerateUniqueResultCode(tx)
		if err != nil {
			return err
		}

		now := time.Now()
		attempt.Status = models.AttemptStatusGraded
		attempt.SubmittedAt = &now
		attempt.TotalMarksScored = breakdown.TotalScored
		attempt.TotalMarksPossible = breakdown.TotalPossible
		attempt.ScorePercentage = breakdown.Percentage
		attempt.ResultReference = &reference

		return tx.Save(attempt).Error
	})
}

// GetResults returns the scored breakdown for a graded attempt, answer key
// included; the key is only revealed once the attempt is terminal.
func GetResults(db *gorm.DB, attemptID uuid.UUID) (*AttemptResult, error) {
	var attempt models.Attempt
	err := db.Preload("Responses").First(&attempt, "id = ?", attemptID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "attempt", ID: attemptID.String()}
		}
		return nil, err
	}

	if attempt.Status != models.AttemptStatusGraded {
		return nil, &InvalidStateError{Message: "attempt has not been submitted yet"}
	}

	var questions []models.Question
	if err := db.Where("assessment_id = ?", attempt.AssessmentID).Order("created_at ASC").Find(&questions).Error; err != nil {
		return nil, err
	}

	responseByQuestion := make(map[uuid.UUID]models.StudentResponse, len(attempt.Responses))
	for _, r := range attempt.Responses {
		responseByQuestion[r.QuestionID] = r
	}

	perQuestion := make([]QuestionResult, len(questions))
	for i, q := range questions {
		entry := QuestionResult{
			QuestionID:    q.ID,
			QuestionText:  q.QuestionText,
			Marks:         q.Marks,
			CorrectOption: q.CorrectOption,
		}
		if r, ok := responseByQuestion[q.ID]; ok {
			entry.SelectedOption = r.SelectedOption
			entry.IsCorrect = r.IsCorrect
			entry.MarksAwarded = r.MarksAwarded
		}
		perQuestion[i] = entry
	}

	return &AttemptResult{
		AttemptID:          attempt.ID,
		AssessmentID:       attempt.AssessmentID,
		Status:             attempt.Status,
		SubmittedAt:        attempt.SubmittedAt,
		TotalMarksScored:   attempt.TotalMarksScored,
		TotalMarksPossible: attempt.TotalMarksPossible,
		ScorePercentage:    DisplayPercentage(attempt.ScorePercentage),
		ResultReference:    attempt.ResultReference,
		PerQuestion:        perQuestion,
	}, nil
}
