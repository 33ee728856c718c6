package handlers

import (
	"github.com/Khaledrae/elimu_hub/database"
	"github.com/Khaledrae/elimu_hub/models"
	"github.com/Khaledrae/elimu_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func StartAttempt(c *fiber.Ctx) error {
	assessmentID, err := uuid.Parse(c.Params("assessmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assessment id"})
	}

	started, err := services.StartAttempt(database.DB, currentUserID(c), assessmentID)
	if err != nil {
		return respondDomainError(c, err, "Failed to start attempt")
	}
	return c.Status(fiber.StatusCreated).JSON(started)
}

type RecordAnswerRequest struct {
	QuestionID     string `json:"question_id" validate:"required"`
	SelectedOption string `json:"selected_option" validate:"required,oneof=A B C D"`
}

// RecordAnswer upserts a single response. The client retries this freely on
// network failure since re-answering a question overwrites.
func RecordAnswer(c *fiber.Ctx) error {
	attemptID, err := uuid.Parse(c.Params("attemptId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attempt id"})
	}

	var req RecordAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid question_id"})
	}

	response, err := services.RecordAnswer(database.DB, currentUserID(c), attemptID, questionID, req.SelectedOption)
	if err != nil {
		return respondDomainError(c, err, "Failed to record answer")
	}
	return c.JSON(response)
}

type SubmitAttemptRequest struct {
	AttemptID string `json:"attempt_id" validate:"required"`
	Responses []struct {
		QuestionID     string `json:"question_id" validate:"required"`
		SelectedOption string `json:"selected_option" validate:"required,oneof=A B C D"`
	} `json:"responses" validate:"dive"`
}

func SubmitAttempt(c *fiber.Ctx) error {
	var req SubmitAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	attemptID, err := uuid.Parse(req.AttemptID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attempt_id"})
	}

	late := make([]services.AnswerSubmission, 0, len(req.Responses))
	for _, r := range req.Responses {
		questionID, err := uuid.Parse(r.QuestionID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid question_id in responses"})
		}
		late = append(late, services.AnswerSubmission{
			QuestionID:     questionID,
			SelectedOption: r.SelectedOption,
		})
	}

	studentID := currentUserID(c)
	result, err := services.SubmitAttempt(database.DB, studentID, attemptID, late)
	if err != nil {
		return respondDomainError(c, err, "Failed to submit attempt")
	}

	services.NotifyGraded(database.DB, studentID, result)

	return c.JSON(result)
}

// GetAttemptResults serves the scored breakdown. Students only see their own
// attempts; teachers and admins can review any.
func GetAttemptResults(c *fiber.Ctx) error {
	attemptID, err := uuid.Parse(c.Params("attemptId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attempt id"})
	}

	if currentUserRole(c) == "student" {
		var count int64
		database.DB.Model(&models.Attempt{}).
			Where("id = ? AND student_id = ?", attemptID, currentUserID(c)).
			Count(&count)
		if count == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Attempt not found"})
		}
	}

	result, err := services.GetResults(database.DB, attemptID)
	if err != nil {
		return respondDomainError(c, err, "Failed to fetch results")
	}
	return c.JSON(result)
}
