package routes

import (
	"github.com/Khaledrae/elimu_hub/handlers"
	"github.com/Khaledrae/elimu_hub/middleware"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	uploads := api.Group("/uploads", middleware.Protected(), middleware.TeacherOrAdminRequired())
	uploads.Post("/signature", handlers.GenerateUploadSignature)
}
