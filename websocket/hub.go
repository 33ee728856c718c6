package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// SubmissionEvent is pushed to the assessment's owning teacher when a
// student's attempt is graded.
type SubmissionEvent struct {
	AttemptID       uuid.UUID `json:"attempt_id"`
	AssessmentID    uuid.UUID `json:"assessment_id"`
	AssessmentTitle string    `json:"assessment_title"`
	TeacherID       uuid.UUID `json:"-"`
	StudentID       uuid.UUID `json:"student_id"`
	StudentName     string    `json:"student_name"`
	ScorePercentage float64   `json:"score_percentage"`
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan SubmissionEvent, 16)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case event := <-Broadcast:
			clientsMu.RLock()
			conn, ok := clients[event.TeacherID]
			clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("Error pushing submission event to teacher %s: %v", event.TeacherID, err)
			}
		}
	}
}

// PublishSubmission queues an event without blocking the request path; if the
// hub is backed up the event is dropped.
func PublishSubmission(event SubmissionEvent) {
	select {
	case Broadcast <- event:
	default:
		log.Printf("Warning: submission event dropped for attempt %s", event.AttemptID)
	}
}
