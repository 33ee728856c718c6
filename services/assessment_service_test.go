package services

import (
	"testing"

	"github.com/Khaledrae/elimu_hub/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Lesson{},
		&models.Assessment{},
		&models.Question{},
		&models.Attempt{},
		&models.StudentResponse{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	user := models.User{
		FullName: "Test " + role,
		Email:    uuid.New().String() + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestLesson(t *testing.T, db *gorm.DB, teacher *models.User) *models.Lesson {
	t.Helper()
	lesson := models.Lesson{
		Title:     "Introduction to Fractions",
		Subject:   "Mathematics",
		TeacherID: teacher.ID,
	}
	require.NoError(t, db.Create(&lesson).Error)
	return &lesson
}

func intPtr(n int) *int { return &n }

func TestCreateAssessmentDefaults(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestUser(t, db, "teacher")
	lesson := createTestLesson(t, db, teacher)

	assessment, err := CreateAssessment(db, AssessmentInput{
		LessonID:   lesson.ID,
		Title:      "Fractions Quiz",
		TotalMarks: 10,
		CreatedBy:  teacher.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.AssessmentStatusDraft, assessment.Status)
	assert.Equal(t, models.AssessmentTypeQuiz, assessment.Type)
	assert.Nil(t, assessment.DurationMinutes)
}

func TestCreateAssessmentValidation(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestUser(t, db, "teacher")
	lesson := createTestLesson(t, db, teacher)

	cases := []struct {
		name  string
		input AssessmentInput
		field string
	}{
		{"missing title", AssessmentInput{LessonID: lesson.ID, TotalMarks: 10}, "title"},
		{"blank title", AssessmentInput{LessonID: lesson.ID, Title: "   ", TotalMarks: 10}, "title"},
		{"zero total marks", AssessmentInput{LessonID: lesson.ID, Title: "Quiz", TotalMarks: 0}, "total_marks"},
		{"bad type", AssessmentInput{LessonID: lesson.ID, Title: "Quiz", TotalMarks: 5, Type: "worksheet"}, "type"},
		{"bad status", AssessmentInput{LessonID: lesson.ID, Title: "Quiz", TotalMarks: 5, Status: "open"}, "status"},
		{"zero duration", AssessmentInput{LessonID: lesson.ID, Title: "Quiz", TotalMarks: 5, DurationMinutes: intPtr(0)}, "duration_minutes"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CreateAssessment(db, tc.input)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}
}

func TestCreateAssessmentRejectsSecondForLesson(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestUser(t, db, "teacher")
	lesson := createTestLesson(t, db, teacher)

	_, err := CreateAssessment(db, AssessmentInput{LessonID: lesson.ID, Title: "First", TotalMarks: 5, CreatedBy: teacher.ID})
	require.NoError(t, err)

	_, err = CreateAssessment(db, AssessmentInput{LessonID: lesson.ID, Title: "Second", TotalMarks: 5, CreatedBy: teacher.ID})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "lesson_id", validationErr.Field)
}

func TestUpdateAssessmentNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := UpdateAssessment(db, uuid.New(), AssessmentInput{Title: "Quiz", TotalMarks: 5})
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "assessment", notFoundErr.Resource)
}

func TestUpdateAssessmentIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestUser(t, db, "teacher")
	lesson := createTestLesson(t, db, teacher)

	assessment, err := CreateAssessment(db, AssessmentInput{LessonID: lesson.ID, Title: "Quiz", TotalMarks: 5, CreatedBy: teacher.ID})
	require.NoError(t, err)

	input := AssessmentInput{Title: "Quiz", TotalMarks: 5, Status: models.AssessmentStatusPublished}
	first, err := UpdateAssessment(db, assessment.ID, input)
	require.NoError(t, err)
	second, err := UpdateAssessment(db, assessment.ID, input)
	require.NoError(t, err)

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.TotalMarks, second.TotalMarks)
	assert.Equal(t, first.Status, second.Status)
}

func TestAddQuestionValidation(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestUser(t, db, "teacher")
	lesson := createTestLesson(t, db, teacher)
	assessment, err := CreateAssessment(db, AssessmentInput{LessonID: lesson.ID, Title: "Quiz", TotalMarks: 5, CreatedBy: teacher.ID})
	require.NoError(t, err)

	valid := QuestionInput{
		QuestionText:  "What is 1/2 + 1/2?",
		OptionA:       "1",
		OptionB:       "2",
		CorrectOption: "A",
	}

	cases := []struct {
		name   string
		mutate func(q *QuestionInput)
		field  string
	}{
		{"empty text", func(q *QuestionInput) { q.QuestionText = " " }, "question_text"},
		{"empty option a", func(q *QuestionInput) { q.OptionA = "" }, "option_a"},
		{"empty option b", func(q *QuestionInput) { q.OptionB = "" }, "option_b"},
		{"negative marks", func(q *QuestionInput) { q.Marks = -2 }, "marks"},
		{"bad letter", func(q *QuestionInput) { q.CorrectOption = "E" }, "correct_option"},
		{"key on empty slot", func(q *QuestionInput) { q.CorrectOption = "D" }, "correct_option"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			_, err := AddQuestion(db, assessment.ID, input)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}
}

func TestAddQuestionDefaultsMarksToOne(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestUser(t, db, "teacher")
	lesson := createTestLesson(t, db, teacher)
	assessment, err := CreateAssessment(db, AssessmentInput{LessonID: lesson.ID, Title: "Quiz", TotalMarks: 5, CreatedBy: teacher.ID})
	require.NoError(t, err)

	question, err := AddQuestion(db, assessment.ID, QuestionInput{
		QuestionText:  "Pick A",
		OptionA:       "a",
		OptionB:       "b",
		CorrectOption: "A",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, question.Marks)
}

func TestAddQuestionUnknownAssessment(t *testing.T) {
	db := setupTestDB(t)

	_, err := AddQuestion(db, uuid.New(), QuestionInput{
		QuestionText:  "Pick A",
		OptionA:       "a",
		OptionB:       "b",
		CorrectOption: "A",
	})
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestReconcileTotalMarks(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestUser(t, db, "teacher")
	lesson := createTestLesson(t, db, teacher)
	assessment, err := CreateAssessment(db, AssessmentInput{LessonID: lesson.ID, Title: "Quiz", TotalMarks: 10, CreatedBy: teacher.ID})
	require.NoError(t, err)

	for _, marks := range []int{3, 5} {
		_, err := AddQuestion(db, assessment.ID, QuestionInput{
			QuestionText:  "Q",
			Marks:         marks,
			OptionA:       "a",
			OptionB:       "b",
			CorrectOption: "A",
		})
		require.NoError(t, err)
	}

	// Stated 10, questions sum to 8.
	reconciliation, err := ReconcileTotalMarks(db, assessment.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, reconciliation.Computed)
	assert.Equal(t, 10, reconciliation.Stated)
	assert.False(t, reconciliation.Matches)

	// Adopting the computed total is an ordinary update.
	_, err = UpdateAssessment(db, assessment.ID, AssessmentInput{Title: "Quiz", TotalMarks: 8})
	require.NoError(t, err)

	reconciliation, err = ReconcileTotalMarks(db, assessment.ID)
	require.NoError(t, err)
	assert.True(t, reconciliation.Matches)
}

func TestReconcileTotalMarksNoQuestions(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestUser(t, db, "teacher")
	lesson := createTestLesson(t, db, teacher)
	assessment, err := CreateAssessment(db, AssessmentInput{LessonID: lesson.ID, Title: "Quiz", TotalMarks: 10, CreatedBy: teacher.ID})
	require.NoError(t, err)

	reconciliation, err := ReconcileTotalMarks(db, assessment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reconciliation.Computed)
	assert.False(t, reconciliation.Matches)
}

func TestDeleteAssessmentCascades(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestUser(t, db, "teacher")
	lesson := createTestLesson(t, db, teacher)
	assessment, err := CreateAssessment(db, AssessmentInput{LessonID: lesson.ID, Title: "Quiz", TotalMarks: 3, CreatedBy: teacher.ID})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := AddQuestion(db, assessment.ID, QuestionInput{
			QuestionText:  "Q",
			OptionA:       "a",
			OptionB:       "b",
			CorrectOption: "B",
		})
		require.NoError(t, err)
	}

	require.NoError(t, DeleteAssessment(db, assessment.ID))

	var questionCount int64
	db.Model(&models.Question{}).Where("assessment_id = ?", assessment.ID).Count(&questionCount)
	assert.Zero(t, questionCount)

	found, err := GetAssessmentByLesson(db, lesson.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestDeleteAssessmentNotFound(t *testing.T) {
	db := setupTestDB(t)

	err := DeleteAssessment(db, uuid.New())
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestDeleteQuestionNotFound(t *testing.T) {
	db := setupTestDB(t)

	err := DeleteQuestion(db, uuid.New())
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestGetAssessmentByLessonLoadsQuestions(t *testing.T) {
	db := setupTestDB(t)
	teacher := createTestUser(t, db, "teacher")
	lesson := createTestLesson(t, db, teacher)
	assessment, err := CreateAssessment(db, AssessmentInput{LessonID: lesson.ID, Title: "Quiz", TotalMarks: 2, CreatedBy: teacher.ID})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := AddQuestion(db, assessment.ID, QuestionInput{
			QuestionText:  "Q",
			OptionA:       "a",
			OptionB:       "b",
			CorrectOption: "A",
		})
		require.NoError(t, err)
	}

	found, err := GetAssessmentByLesson(db, lesson.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Len(t, found.Questions, 2)
}
