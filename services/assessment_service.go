package services

import (
	"errors"
	"strings"

	"github.com/Khaledrae/elimu_hub/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service functions take the *gorm.DB explicitly instead of reading a global
// connection. Handlers pass database.DB; tests pass an in-memory database.

type AssessmentInput struct {
	LessonID        uuid.UUID
	Title           string
	Instructions    string
	Type            string
	TotalMarks      int
	DurationMinutes *int
	Status          string
	CreatedBy       uuid.UUID
}

type QuestionInput struct {
	QuestionText  string
	Marks         int
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectOption string
}

type Reconciliation struct {
	Computed int  `json:"computed"`
	Stated   int  `json:"stated"`
	Matches  bool `json:"matches"`
}

func validAssessmentType(t string) bool {
	return t == models.AssessmentTypeQuiz || t == models.AssessmentTypeAssignment || t == models.AssessmentTypeExam
}

func validAssessmentStatus(s string) bool {
	return s == models.AssessmentStatusDraft || s == models.AssessmentStatusPublished || s == models.AssessmentStatusArchived
}

func validateAssessmentInput(input AssessmentInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if input.TotalMarks < 1 {
		return &ValidationError{Field: "total_marks", Message: "total_marks must be a positive integer"}
	}
	if input.Type != "" && !validAssessmentType(input.Type) {
		return &ValidationError{Field: "type", Message: "type must be one of quiz, assignment, exam"}
	}
	if input.Status != "" && !validAssessmentStatus(input.Status) {
		return &ValidationError{Field: "status", Message: "status must be one of draft, published, archived"}
	}
	if input.DurationMinutes != nil && *input.DurationMinutes < 1 {
		return &ValidationError{Field: "duration_minutes", Message: "duration_minutes must be a positive integer"}
	}
	return nil
}

func CreateAssessment(db *gorm.DB, input AssessmentInput) (*models.Assessment, error) {
	if err := validateAssessmentInput(input); err != nil {
		return nil, err
	}
	if input.LessonID == uuid.Nil {
		return nil, &ValidationError{Field: "lesson_id", Message: "lesson_id is required"}
	}

	var lesson models.Lesson
	if err := db.First(&lesson, "id = ?", input.LessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "lesson", ID: input.LessonID.String()}
		}
		return nil, err
	}

	var existing int64
	db.Model(&models.Assessment{}).Where("lesson_id = ?", input.LessonID).Count(&existing)
	if existing > 0 {
		return nil, &ValidationError{Field: "lesson_id", Message: "lesson already has an assessment"}
	}

	assessment := models.Assessment{
		LessonID:        input.LessonID,
		Title:           strings.TrimSpace(input.Title),
		Instructions:    input.Instructions,
		Type:            input.Type,
		TotalMarks:      input.TotalMarks,
		DurationMinutes: input.DurationMinutes,
		Status:          input.Status,
		CreatedBy:       input.CreatedBy,
	}
	if assessment.Type == "" {
		assessment.Type = models.AssessmentTypeQuiz
	}
	if assessment.Status == "" {
		assessment.Status = models.AssessmentStatusDraft
	}

	if err := db.Create(&assessment).Error; err != nil {
		return nil, err
	}
	return &assessment, nil
}

// UpdateAssessment overwrites the mutable fields. The lesson binding and the
// creator are fixed at creation time.
func UpdateAssessment(db *gorm.DB, id uuid.UUID, input AssessmentInput) (*models.Assessment, error) {
	if err := validateAssessmentInput(input); err != nil {
		return nil, err
	}

	var assessment models.Assessment
	if err := db.First(&assessment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "assessment", ID: id.String()}
		}
		return nil, err
	}

	assessment.Title = strings.TrimSpace(input.Title)
	assessment.Instructions = input.Instructions
	if input.Type != "" {
		assessment.Type = input.Type
	}
	if input.Status != "" {
		assessment.Status = input.Status
	}
	assessment.TotalMarks = input.TotalMarks
	assessment.DurationMinutes = input.DurationMinutes

	if err := db.Save(&assessment).Error; err != nil {
		return nil, err
	}
	return &assessment, nil
}

// DeleteAssessment removes the assessment and all of its questions.
func DeleteAssessment(db *gorm.DB, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var assessment models.Assessment
		if err := tx.First(&assessment, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "assessment", ID: id.String()}
			}
			return err
		}
		if err := tx.Where("assessment_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&assessment).Error
	})
}

func validateQuestionInput(input QuestionInput) error {
	if strings.TrimSpace(input.QuestionText) == "" {
		return &ValidationError{Field: "question_text", Message: "question_text is required"}
	}
	if strings.TrimSpace(input.OptionA) == "" {
		return &ValidationError{Field: "option_a", Message: "option_a is required"}
	}
	if strings.TrimSpace(input.OptionB) == "" {
		return &ValidationError{Field: "option_b", Message: "option_b is required"}
	}
	if input.Marks < 1 {
		return &ValidationError{Field: "marks", Message: "marks must be at least 1"}
	}
	switch input.CorrectOption {
	case "A", "B", "C", "D":
	default:
		return &ValidationError{Field: "correct_option", Message: "correct_option must be one of A, B, C, D"}
	}
	q := models.Question{OptionA: input.OptionA, OptionB: input.OptionB, OptionC: input.OptionC, OptionD: input.OptionD}
	if strings.TrimSpace(q.Option(input.CorrectOption)) == "" {
		return &ValidationError{Field: "correct_option", Message: "correct_option must reference a populated option"}
	}
	return nil
}

func AddQuestion(db *gorm.DB, assessmentID uuid.UUID, input QuestionInput) (*models.Question, error) {
	if input.Marks == 0 {
		input.Marks = 1
	}
	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	var assessment models.Assessment
	if err := db.First(&assessment, "id = ?", assessmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "assessment", ID: assessmentID.String()}
		}
		return nil, err
	}

	question := models.Question{
		AssessmentID:  assessmentID,
		QuestionText:  strings.TrimSpace(input.QuestionText),
		Marks:         input.Marks,
		OptionA:       input.OptionA,
		OptionB:       input.OptionB,
		OptionC:       input.OptionC,
		OptionD:       input.OptionD,
		CorrectOption: input.CorrectOption,
	}
	if err := db.Create(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func UpdateQuestion(db *gorm.DB, id uuid.UUID, input QuestionInput) (*models.Question, error) {
	if input.Marks == 0 {
		input.Marks = 1
	}
	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	var question models.Question
	if err := db.First(&question, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "question", ID: id.String()}
		}
		return nil, err
	}

	question.QuestionText = strings.TrimSpace(input.QuestionText)
	question.Marks = input.Marks
	question.OptionA = input.OptionA
	question.OptionB = input.OptionB
	question.OptionC = input.OptionC
	question.OptionD = input.OptionD
	question.CorrectOption = input.CorrectOption

	if err := db.Save(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func DeleteQuestion(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&models.Question{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Resource: "question", ID: id.String()}
	}
	return nil
}

// ReconcileTotalMarks compares the stated total against the sum of the
// current questions' marks. It never mutates; the caller decides whether to
// adopt the computed total via UpdateAssessment.
func ReconcileTotalMarks(db *gorm.DB, assessmentID uuid.UUID) (Reconciliation, error) {
	var assessment models.Assessment
	if err := db.First(&assessment, "id = ?", assessmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Reconciliation{}, &NotFoundError{Resource: "assessment", ID: assessmentID.String()}
		}
		return Reconciliation{}, err
	}

	var computed int64
	err := db.Model(&models.Question{}).
		Where("assessment_id = ?", assessmentID).
		Select("COALESCE(SUM(marks), 0)").
		Scan(&computed).Error
	if err != nil {
		return Reconciliation{}, err
	}

	return Reconciliation{
		Computed: int(computed),
		Stated:   assessment.TotalMarks,
		Matches:  int(computed) == assessment.TotalMarks,
	}, nil
}

// GetAssessmentByLesson returns (nil, nil) when the lesson has no assessment;
// most lessons don't, so absence is an expected outcome rather than an error.
func GetAssessmentByLesson(db *gorm.DB, lessonID uuid.UUID) (*models.Assessment, error) {
	var assessment models.Assessment
	err := db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&assessment, "lesson_id = ?", lessonID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assessment, nil
}
