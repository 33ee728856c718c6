package routes

import (
	"github.com/Khaledrae/elimu_hub/handlers"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func EventsRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws/events", websocket.New(handlers.ServeEvents))
}
