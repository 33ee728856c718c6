package services

import (
	"log"

	"github.com/Khaledrae/elimu_hub/models"
	"github.com/Khaledrae/elimu_hub/notifications"
	"github.com/Khaledrae/elimu_hub/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotifyGraded fires the post-grading side effects: result email to the
// student, a live event to the owning teacher, and the PDF result slip.
// Runs after a student submit and after the deadline sweep force-submits.
// All best effort; the grade is already persisted.
func NotifyGraded(db *gorm.DB, studentID uuid.UUID, result *AttemptResult) {
	var student models.User
	if err := db.First(&student, "id = ?", studentID).Error; err != nil {
		log.Printf("Warning: could not load student %s for notifications: %v", studentID, err)
	}

	var assessment models.Assessment
	if err := db.First(&assessment, "id = ?", result.AssessmentID).Error; err != nil {
		log.Printf("Warning: could not load assessment %s for notifications: %v", result.AssessmentID, err)
	}

	go notifications.SendResultEmail(
		student.FullName, student.Email, assessment.Title,
		result.TotalMarksScored, result.TotalMarksPossible, result.ScorePercentage,
	)
	go GenerateResultSlip(db, result.AttemptID)

	websocket.PublishSubmission(websocket.SubmissionEvent{
		AttemptID:       result.AttemptID,
		AssessmentID:    result.AssessmentID,
		AssessmentTitle: assessment.Title,
		TeacherID:       assessment.CreatedBy,
		StudentID:       studentID,
		StudentName:     student.FullName,
		ScorePercentage: result.ScorePercentage,
	})
}
