package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	config "github.com/Khaledrae/elimu_hub/configs"
	"github.com/Khaledrae/elimu_hub/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GenerateResultSlip renders a PDF result slip for a graded attempt and
// stores the upload URL on the attempt. Best effort: failures are logged and
// the attempt keeps its score either way.
func GenerateResultSlip(db *gorm.DB, attemptID uuid.UUID) {
	var attempt models.Attempt
	err := db.Preload("Student").Preload("Assessment").First(&attempt, "id = ?", attemptID).Error
	if err != nil {
		log.Printf("🔥 Failed to load attempt %s for result slip: %v", attemptID, err)
		return
	}

	if attempt.Status != models.AttemptStatusGraded {
		log.Printf("Skipping result slip for attempt %s: not graded yet", attemptID)
		return
	}

	htmlData, err := generateResultSlipHTML(&attempt)
	if err != nil {
		log.Printf("🔥 Failed to generate result slip HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate PDF: %v", err)
		return
	}

	uploadURL, err := uploadToCloudinary(pdfBytes, attempt.StudentID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload result slip to Cloudinary: %v", err)
		return
	}

	attempt.ResultSlipURL = &uploadURL
	if err := db.Save(&attempt).Error; err != nil {
		log.Printf("🔥 Failed to store result slip URL for attempt %s: %v", attemptID, err)
		return
	}

	log.Printf("✅ Generated result slip for attempt %s.", attemptID)
}

func generateResultSlipHTML(attempt *models.Attempt) (string, error) {
	tmpl, err := template.ParseFiles("templates/result_slip.html")
	if err != nil {
		return "", err
	}

	reference := ""
	if attempt.ResultReference != nil {
		reference = *attempt.ResultReference
	}

	data := struct {
		StudentName     string
		AssessmentTitle string
		AssessmentType  string
		Scored          int
		Possible        int
		Percentage      float64
		Reference       string
		GradedDate      string
	}{
		StudentName:     attempt.Student.FullName,
		AssessmentTitle: attempt.Assessment.Title,
		AssessmentType:  attempt.Assessment.Type,
		Scored:          attempt.TotalMarksScored,
		Possible:        attempt.TotalMarksPossible,
		Percentage:      DisplayPercentage(attempt.ScorePercentage),
		Reference:       reference,
		GradedDate:      time.Now().Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(fileBytes []byte, studentID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("result_slips/%s_%s", studentID, uuid.New().String()),
		Folder:       "elimu_hub_result_slips",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
