package services

import "fmt"

// ValidationError reports malformed input. Field may carry multiple entries
// separated upstream; one error per field keeps the payload mapping simple.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// InvalidStateError reports an operation attempted in a lifecycle state that
// forbids it, e.g. answering a question on a graded attempt.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

type AlreadyInProgressError struct {
	AttemptID string
}

func (e *AlreadyInProgressError) Error() string {
	return fmt.Sprintf("an attempt is already in progress: %s", e.AttemptID)
}

type NotPublishedError struct {
	Status string
}

func (e *NotPublishedError) Error() string {
	return fmt.Sprintf("assessment is not published (status: %s)", e.Status)
}

type UnknownQuestionError struct {
	QuestionID string
}

func (e *UnknownQuestionError) Error() string {
	return fmt.Sprintf("question does not belong to this assessment: %s", e.QuestionID)
}
