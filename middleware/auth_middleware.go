package middleware

import (
	config "github.com/Khaledrae/elimu_hub/configs"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.Config("JWT_SECRET")),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

func claimRole(c *fiber.Ctx) string {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	role, _ := claims["role"].(string)
	return role
}

func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claimRole(c) != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Admin access required",
			})
		}
		return c.Next()
	}
}

// TeacherOrAdminRequired guards the authoring surface: assessments, questions
// and lesson management.
func TeacherOrAdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := claimRole(c)
		if role != "teacher" && role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Teacher or admin access required",
			})
		}
		return c.Next()
	}
}

func StudentRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claimRole(c) != "student" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Student access required",
			})
		}
		return c.Next()
	}
}
