package handlers

import (
	"github.com/Khaledrae/elimu_hub/database"
	"github.com/Khaledrae/elimu_hub/models"
	"github.com/Khaledrae/elimu_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AssessmentRequest struct {
	LessonID        string `json:"lesson_id"`
	Title           string `json:"title" validate:"required"`
	Instructions    string `json:"instructions"`
	Type            string `json:"type" validate:"omitempty,oneof=quiz assignment exam"`
	TotalMarks      int    `json:"total_marks" validate:"required,gt=0"`
	DurationMinutes *int   `json:"duration_minutes" validate:"omitempty,gt=0"`
	Status          string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

func CreateAssessment(c *fiber.Ctx) error {
	var req AssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	lessonID, err := uuid.Parse(req.LessonID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lesson_id"})
	}

	var lesson models.Lesson
	if err := database.DB.First(&lesson, "id = ?", lessonID).Error; err == nil && !canMutate(c, lesson.TeacherID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the teacher for this lesson."})
	}

	assessment, err := services.CreateAssessment(database.DB, services.AssessmentInput{
		LessonID:        lessonID,
		Title:           req.Title,
		Instructions:    req.Instructions,
		Type:            req.Type,
		TotalMarks:      req.TotalMarks,
		DurationMinutes: req.DurationMinutes,
		Status:          req.Status,
		CreatedBy:       currentUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err, "Failed to create assessment")
	}

	return c.Status(fiber.StatusCreated).JSON(assessment)
}

func UpdateAssessment(c *fiber.Ctx) error {
	assessmentID, err := uuid.Parse(c.Params("assessmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assessment id"})
	}

	var existing models.Assessment
	if err := database.DB.First(&existing, "id = ?", assessmentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}
	if !canMutate(c, existing.CreatedBy) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this assessment."})
	}

	var req AssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	assessment, err := services.UpdateAssessment(database.DB, assessmentID, services.AssessmentInput{
		Title:           req.Title,
		Instructions:    req.Instructions,
		Type:            req.Type,
		TotalMarks:      req.TotalMarks,
		DurationMinutes: req.DurationMinutes,
		Status:          req.Status,
	})
	if err != nil {
		return respondDomainError(c, err, "Failed to update assessment")
	}

	return c.JSON(assessment)
}

func DeleteAssessment(c *fiber.Ctx) error {
	assessmentID, err := uuid.Parse(c.Params("assessmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assessment id"})
	}

	var existing models.Assessment
	if err := database.DB.First(&existing, "id = ?", assessmentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}
	if !canMutate(c, existing.CreatedBy) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this assessment."})
	}

	if err := services.DeleteAssessment(database.DB, assessmentID); err != nil {
		return respondDomainError(c, err, "Failed to delete assessment")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReconcileAssessment reports whether the stated total still matches the sum
// of the question marks. The client prompts the teacher to pick one before
// saving or navigating away; adopting the computed total is a normal update.
func ReconcileAssessment(c *fiber.Ctx) error {
	assessmentID, err := uuid.Parse(c.Params("assessmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assessment id"})
	}

	reconciliation, err := services.ReconcileTotalMarks(database.DB, assessmentID)
	if err != nil {
		return respondDomainError(c, err, "Failed to reconcile total marks")
	}
	return c.JSON(reconciliation)
}

// GetLessonAssessment serves the lesson's assessment. Students get the
// question set with the answer key stripped; teachers and admins get the
// full records.
func GetLessonAssessment(c *fiber.Ctx) error {
	lessonID, err := uuid.Parse(c.Params("lessonId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lesson id"})
	}

	assessment, err := services.GetAssessmentByLesson(database.DB, lessonID)
	if err != nil {
		return respondDomainError(c, err, "Failed to fetch assessment")
	}
	if assessment == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No assessment for this lesson"})
	}

	role := currentUserRole(c)
	if role == "teacher" || role == "admin" {
		return c.JSON(assessment)
	}

	questions := make([]services.QuestionForStudent, len(assessment.Questions))
	for i, q := range assessment.Questions {
		questions[i] = services.QuestionForStudent{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Marks:        q.Marks,
			OptionA:      q.OptionA,
			OptionB:      q.OptionB,
			OptionC:      q.OptionC,
			OptionD:      q.OptionD,
		}
	}

	return c.JSON(fiber.Map{
		"id":               assessment.ID,
		"lesson_id":        assessment.LessonID,
		"title":            assessment.Title,
		"instructions":     assessment.Instructions,
		"type":             assessment.Type,
		"total_marks":      assessment.TotalMarks,
		"duration_minutes": assessment.DurationMinutes,
		"status":           assessment.Status,
		"questions":        questions,
	})
}
