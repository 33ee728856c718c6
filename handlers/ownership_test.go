package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Khaledrae/elimu_hub/database"
	"github.com/Khaledrae/elimu_hub/models"
	"github.com/Khaledrae/elimu_hub/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "handler-test-secret"

// setupApp wires the real routes and middleware over an in-memory database
// so requests exercise the same auth path production traffic does.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", testJWTSecret)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Lesson{},
		&models.Assessment{},
		&models.Question{},
		&models.Attempt{},
		&models.StudentResponse{},
		&models.LessonResource{},
	))

	previous := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = previous })

	app := fiber.New()
	routes.AuthRoutes(app)
	routes.LessonRoutes(app)
	routes.AssessmentRoutes(app)
	return app
}

func createUser(t *testing.T, role string) *models.User {
	t.Helper()
	user := models.User{
		FullName: "Test " + role,
		Email:    uuid.New().String() + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, database.DB.Create(&user).Error)
	return &user
}

func signToken(t *testing.T, user *models.User) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func jsonRequest(t *testing.T, method, target, token string, body interface{}) *http.Request {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func createOwnedAssessment(t *testing.T, owner *models.User) (*models.Lesson, *models.Assessment) {
	t.Helper()
	lesson := models.Lesson{Title: "Fractions", Subject: "Math", TeacherID: owner.ID}
	require.NoError(t, database.DB.Create(&lesson).Error)

	assessment := models.Assessment{
		LessonID:   lesson.ID,
		Title:      "Owner Quiz",
		Type:       models.AssessmentTypeQuiz,
		TotalMarks: 5,
		Status:     models.AssessmentStatusDraft,
		CreatedBy:  owner.ID,
	}
	require.NoError(t, database.DB.Create(&assessment).Error)
	return &lesson, &assessment
}

func TestUpdateAssessmentRejectsForeignTeacher(t *testing.T) {
	app := setupApp(t)
	owner := createUser(t, "teacher")
	intruder := createUser(t, "teacher")
	_, assessment := createOwnedAssessment(t, owner)

	body := fiber.Map{"title": "Hijacked", "total_marks": 1}

	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/api/v1/assessments/"+assessment.ID.String(), signToken(t, intruder), body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var reloaded models.Assessment
	require.NoError(t, database.DB.First(&reloaded, "id = ?", assessment.ID).Error)
	assert.Equal(t, "Owner Quiz", reloaded.Title)
	assert.Equal(t, 5, reloaded.TotalMarks)

	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/v1/assessments/"+assessment.ID.String(), signToken(t, owner), body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, database.DB.First(&reloaded, "id = ?", assessment.ID).Error)
	assert.Equal(t, "Hijacked", reloaded.Title)
}

func TestDeleteAssessmentRejectsForeignTeacher(t *testing.T) {
	app := setupApp(t)
	owner := createUser(t, "teacher")
	intruder := createUser(t, "teacher")
	admin := createUser(t, "admin")
	_, assessment := createOwnedAssessment(t, owner)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/api/v1/assessments/"+assessment.ID.String(), signToken(t, intruder), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var count int64
	database.DB.Model(&models.Assessment{}).Where("id = ?", assessment.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	// Admins may mutate any teacher's material.
	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/api/v1/assessments/"+assessment.ID.String(), signToken(t, admin), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	database.DB.Model(&models.Assessment{}).Where("id = ?", assessment.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCreateAssessmentRejectsForeignLesson(t *testing.T) {
	app := setupApp(t)
	owner := createUser(t, "teacher")
	intruder := createUser(t, "teacher")

	lesson := models.Lesson{Title: "Decimals", Subject: "Math", TeacherID: owner.ID}
	require.NoError(t, database.DB.Create(&lesson).Error)

	body := fiber.Map{"lesson_id": lesson.ID.String(), "title": "Sneaky Quiz", "total_marks": 5}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/assessments", signToken(t, intruder), body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/assessments", signToken(t, owner), body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestQuestionMutationRejectsForeignTeacher(t *testing.T) {
	app := setupApp(t)
	owner := createUser(t, "teacher")
	intruder := createUser(t, "teacher")
	_, assessment := createOwnedAssessment(t, owner)

	question := models.Question{
		AssessmentID:  assessment.ID,
		QuestionText:  "2 + 2?",
		Marks:         5,
		OptionA:       "4",
		OptionB:       "5",
		CorrectOption: "A",
	}
	require.NoError(t, database.DB.Create(&question).Error)

	createBody := fiber.Map{
		"assessment_id":  assessment.ID.String(),
		"question_text":  "3 + 3?",
		"option_a":       "6",
		"option_b":       "7",
		"correct_option": "A",
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/questions", signToken(t, intruder), createBody), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	updateBody := fiber.Map{
		"question_text":  "Rewritten",
		"option_a":       "1",
		"option_b":       "2",
		"correct_option": "B",
	}
	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/v1/questions/"+question.ID.String(), signToken(t, intruder), updateBody), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/api/v1/questions/"+question.ID.String(), signToken(t, intruder), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var reloaded models.Question
	require.NoError(t, database.DB.First(&reloaded, "id = ?", question.ID).Error)
	assert.Equal(t, "2 + 2?", reloaded.QuestionText)

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/api/v1/questions/"+question.ID.String(), signToken(t, owner), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestLessonMutationRejectsForeignTeacher(t *testing.T) {
	app := setupApp(t)
	owner := createUser(t, "teacher")
	intruder := createUser(t, "teacher")

	lesson := models.Lesson{Title: "Algebra", Subject: "Math", TeacherID: owner.ID}
	require.NoError(t, database.DB.Create(&lesson).Error)

	body := fiber.Map{"title": "Taken Over"}
	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/api/v1/lessons/"+lesson.ID.String(), signToken(t, intruder), body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/api/v1/lessons/"+lesson.ID.String(), signToken(t, intruder), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var reloaded models.Lesson
	require.NoError(t, database.DB.First(&reloaded, "id = ?", lesson.ID).Error)
	assert.Equal(t, "Algebra", reloaded.Title)

	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/v1/lessons/"+lesson.ID.String(), signToken(t, owner), body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	app := setupApp(t)

	body := fiber.Map{
		"full_name": "Asha Mwangi",
		"email":     "asha@example.com",
		"password":  "secret123",
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/auth/register", "", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/auth/register", "", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "Email already exists", payload["error"])
}
