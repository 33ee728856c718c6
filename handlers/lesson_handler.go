package handlers

import (
	"github.com/Khaledrae/elimu_hub/database"
	"github.com/Khaledrae/elimu_hub/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonRequest struct {
	Title       string `json:"title" validate:"required"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

func CreateLesson(c *fiber.Ctx) error {
	var req LessonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	lesson := models.Lesson{
		Title:       req.Title,
		Subject:     req.Subject,
		Description: req.Description,
		TeacherID:   currentUserID(c),
	}
	if err := database.DB.Create(&lesson).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create lesson"})
	}
	return c.Status(fiber.StatusCreated).JSON(lesson)
}

func ListLessons(c *fiber.Ctx) error {
	var lessons []models.Lesson
	database.DB.Order("created_at DESC").Find(&lessons)
	return c.JSON(lessons)
}

func GetLesson(c *fiber.Ctx) error {
	lessonID := c.Params("lessonId")
	var lesson models.Lesson
	if err := database.DB.First(&lesson, "id = ?", lessonID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found"})
	}
	return c.JSON(lesson)
}

func UpdateLesson(c *fiber.Ctx) error {
	lessonID := c.Params("lessonId")
	var lesson models.Lesson
	if err := database.DB.First(&lesson, "id = ?", lessonID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found"})
	}
	if !canMutate(c, lesson.TeacherID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the teacher for this lesson."})
	}

	var req LessonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	lesson.Title = req.Title
	lesson.Subject = req.Subject
	lesson.Description = req.Description
	database.DB.Save(&lesson)

	return c.JSON(lesson)
}

// DeleteLesson removes a lesson along with its assessment, questions and
// resources.
func DeleteLesson(c *fiber.Ctx) error {
	lessonID, err := uuid.Parse(c.Params("lessonId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lesson id"})
	}

	var lesson models.Lesson
	if err := database.DB.First(&lesson, "id = ?", lessonID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found"})
	}
	if !canMutate(c, lesson.TeacherID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the teacher for this lesson."})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var assessment models.Assessment
		if err := tx.First(&assessment, "lesson_id = ?", lessonID).Error; err == nil {
			if err := tx.Where("assessment_id = ?", assessment.ID).Delete(&models.Question{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&assessment).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("lesson_id = ?", lessonID).Delete(&models.LessonResource{}).Error; err != nil {
			return err
		}
		return tx.Delete(&lesson).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete lesson"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
