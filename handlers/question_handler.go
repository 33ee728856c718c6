package handlers

import (
	"github.com/Khaledrae/elimu_hub/database"
	"github.com/Khaledrae/elimu_hub/models"
	"github.com/Khaledrae/elimu_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type QuestionRequest struct {
	AssessmentID  string `json:"assessment_id"`
	QuestionText  string `json:"question_text" validate:"required"`
	Marks         int    `json:"marks" validate:"omitempty,gte=1"`
	OptionA       string `json:"option_a" validate:"required"`
	OptionB       string `json:"option_b" validate:"required"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption string `json:"correct_option" validate:"required,oneof=A B C D"`
}

func (req *QuestionRequest) toInput() services.QuestionInput {
	return services.QuestionInput{
		QuestionText:  req.QuestionText,
		Marks:         req.Marks,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		CorrectOption: req.CorrectOption,
	}
}

func CreateQuestion(c *fiber.Ctx) error {
	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	assessmentID, err := uuid.Parse(req.AssessmentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assessment_id"})
	}

	var assessment models.Assessment
	if err := database.DB.First(&assessment, "id = ?", assessmentID).Error; err == nil && !canMutate(c, assessment.CreatedBy) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this assessment."})
	}

	question, err := services.AddQuestion(database.DB, assessmentID, req.toInput())
	if err != nil {
		return respondDomainError(c, err, "Failed to create question")
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

func UpdateQuestion(c *fiber.Ctx) error {
	questionID, err := uuid.Parse(c.Params("questionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid question id"})
	}

	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err == nil {
		var assessment models.Assessment
		if err := database.DB.First(&assessment, "id = ?", question.AssessmentID).Error; err == nil && !canMutate(c, assessment.CreatedBy) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this assessment."})
		}
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updated, err := services.UpdateQuestion(database.DB, questionID, req.toInput())
	if err != nil {
		return respondDomainError(c, err, "Failed to update question")
	}
	return c.JSON(updated)
}

func DeleteQuestion(c *fiber.Ctx) error {
	questionID, err := uuid.Parse(c.Params("questionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid question id"})
	}

	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err == nil {
		var assessment models.Assessment
		if err := database.DB.First(&assessment, "id = ?", question.AssessmentID).Error; err == nil && !canMutate(c, assessment.CreatedBy) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this assessment."})
		}
	}

	if err := services.DeleteQuestion(database.DB, questionID); err != nil {
		return respondDomainError(c, err, "Failed to delete question")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
