package routes

import (
	"github.com/Khaledrae/elimu_hub/handlers"
	"github.com/Khaledrae/elimu_hub/middleware"
	"github.com/gofiber/fiber/v2"
)

// AssessmentRoutes mounts the authoring surface (teachers and admins) and
// the student attempt flow.
func AssessmentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	authoring := api.Group("/assessments", middleware.Protected(), middleware.TeacherOrAdminRequired())
	authoring.Post("", handlers.CreateAssessment)
	authoring.Put("/:assessmentId", handlers.UpdateAssessment)
	authoring.Delete("/:assessmentId", handlers.DeleteAssessment)
	authoring.Get("/:assessmentId/reconcile", handlers.ReconcileAssessment)

	questions := api.Group("/questions", middleware.Protected(), middleware.TeacherOrAdminRequired())
	questions.Post("", handlers.CreateQuestion)
	questions.Put("/:questionId", handlers.UpdateQuestion)
	questions.Delete("/:questionId", handlers.DeleteQuestion)

	attempts := api.Group("/assessments", middleware.Protected())
	attempts.Post("/:assessmentId/attempt/start", middleware.StudentRequired(), handlers.StartAttempt)
	attempts.Post("/:assessmentId/attempt/:attemptId/answer", middleware.StudentRequired(), handlers.RecordAnswer)
	attempts.Post("/:assessmentId/submit", middleware.StudentRequired(), handlers.SubmitAttempt)
	attempts.Get("/:assessmentId/attempts/:attemptId/results", handlers.GetAttemptResults)
}
