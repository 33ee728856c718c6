package handlers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	config "github.com/Khaledrae/elimu_hub/configs"
	"github.com/Khaledrae/elimu_hub/database"
	"github.com/Khaledrae/elimu_hub/models"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GenerateUploadSignature creates a secure signature for a frontend upload.
func GenerateUploadSignature(c *fiber.Ctx) error {
	cloudinaryURL := config.Config("CLOUDINARY_URL")
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to initialize Cloudinary"})
	}

	parsedURL, err := url.Parse(cloudinaryURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to parse Cloudinary URL"})
	}
	secret, _ := parsedURL.User.Password()

	paramsToSign, err := api.StructToParams(uploader.UploadParams{
		Folder: "elimu_hub_lesson_resources",
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to prepare signature params"})
	}

	timestamp := time.Now().Unix()
	paramsToSign.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(paramsToSign, secret)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign upload params"})
	}

	apiKey := cld.Config.Cloud.APIKey

	return c.JSON(fiber.Map{
		"signature": signature,
		"timestamp": timestamp,
		"api_key":   apiKey,
		"folder":    "elimu_hub_lesson_resources",
	})
}

// UploadLessonResource attaches a study material file to a lesson.
func UploadLessonResource(c *fiber.Ctx) error {
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

	file, err := c.FormFile("resource")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Resource file is required."})
	}

	cld, _ := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadResult, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   "elimu_hub_lesson_resources",
		PublicID: fmt.Sprintf("lesson_%s_%s", lessonID, file.Filename),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload file."})
	}

	resource := models.LessonResource{
		LessonID:   lessonID,
		FileName:   file.Filename,
		FileURL:    uploadResult.SecureURL,
		UploadedAt: time.Now(),
	}
	database.DB.Create(&resource)

	return c.Status(fiber.StatusCreated).JSON(resource)
}

// GetLessonResources lists the study materials attached to a lesson.
func GetLessonResources(c *fiber.Ctx) error {
	lessonID := c.Params("lessonId")

	var resources []models.LessonResource
	database.DB.Where("lesson_id = ?", lessonID).Order("uploaded_at DESC").Find(&resources)
	return c.JSON(resources)
}
