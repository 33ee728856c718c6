package routes

import (
	"github.com/Khaledrae/elimu_hub/handlers"
	"github.com/Khaledrae/elimu_hub/middleware"
	"github.com/gofiber/fiber/v2"
)

func LessonRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	lessons := api.Group("/lessons", middleware.Protected())
	lessons.Get("", handlers.ListLessons)
	lessons.Get("/:lessonId", handlers.GetLesson)
	lessons.Get("/:lessonId/assessment", handlers.GetLessonAssessment)
	lessons.Get("/:lessonId/resources", handlers.GetLessonResources)

	lessons.Post("", middleware.TeacherOrAdminRequired(), handlers.CreateLesson)
	lessons.Put("/:lessonId", middleware.TeacherOrAdminRequired(), handlers.UpdateLesson)
	lessons.Delete("/:lessonId", middleware.TeacherOrAdminRequired(), handlers.DeleteLesson)
	lessons.Post("/:lessonId/resources", middleware.TeacherOrAdminRequired(), handlers.UploadLessonResource)
}
