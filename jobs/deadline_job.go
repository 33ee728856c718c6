package jobs

import (
	"log"
	"time"

	"github.com/Khaledrae/elimu_hub/database"
	"github.com/Khaledrae/elimu_hub/models"
	"github.com/Khaledrae/elimu_hub/services"
)

// CloseExpiredAttempts force-submits in-progress attempts on timed
// assessments whose deadline has passed. Whatever responses the student
// recorded are scored as-is, and the usual post-grading notifications go
// out just like on a student submit.
func CloseExpiredAttempts() {
	log.Println("Running job: CloseExpiredAttempts...")

	now := time.Now()

	var attempts []models.Attempt
	err := database.DB.
		Preload("Assessment").
		Joins("JOIN assessments ON attempts.assessment_id = assessments.id").
		Where("attempts.status = ? AND assessments.duration_minutes IS NOT NULL", models.AttemptStatusInProgress).
		Find(&attempts).Error
	if err != nil {
		log.Printf("Error checking for expired attempts: %v", err)
		return
	}

	closed := 0
	for i := range attempts {
		deadline, timed := attempts[i].Deadline()
		if !timed || now.Before(deadline.Add(services.DeadlineGrace)) {
			continue
		}
		if err := services.ForceSubmitExpired(database.DB, &attempts[i]); err != nil {
			log.Printf("Error force-submitting attempt %s: %v", attempts[i].ID, err)
			continue
		}
		closed++

		result, err := services.GetResults(database.DB, attempts[i].ID)
		if err != nil {
			log.Printf("Error loading results for force-submitted attempt %s: %v", attempts[i].ID, err)
			continue
		}
		services.NotifyGraded(database.DB, attempts[i].StudentID, result)
	}

	if closed > 0 {
		log.Printf("Force-submitted %d expired attempt(s).", closed)
	}
}
