package handlers

import (
	"fmt"
	"log"

	config "github.com/Khaledrae/elimu_hub/configs"
	"github.com/Khaledrae/elimu_hub/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ServeEvents keeps a teacher's live-event socket open. Clients authenticate
// with a first {"type":"auth","token":...} frame, then receive submission
// events for their assessments until they disconnect.
func ServeEvents(c *websocketcontrib.Conn) {
	type AuthMessage struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	claims, err := parseToken(authMsg.Token)
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	role, _ := claims["role"].(string)
	if role != "teacher" && role != "admin" {
		_ = c.WriteJSON(fiber.Map{"error": "Only teachers can subscribe to submission events"})
		c.Close()
		return
	}

	userID, err := uuid.Parse(claims["user_id"].(string))
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
		c.Close()
		return
	}

	client := &websocket.Client{UserID: userID, Conn: c}
	websocket.Register <- client
	defer func() {
		websocket.Unregister <- client
		c.Close()
	}()

	// The socket is push-only; the read loop just notices the close.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if !websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
				log.Printf("WebSocket read error for client %s: %v", userID, err)
			}
			break
		}
	}
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}
