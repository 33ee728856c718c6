package handlers

import (
	"errors"
	"log"

	"github.com/Khaledrae/elimu_hub/services"
	"github.com/gofiber/fiber/v2"
)

// respondDomainError is the single place domain errors become HTTP responses.
// Validation failures use the field-keyed payload the mobile client flattens;
// everything else is {"error": message}. fallback covers unexpected errors.
func respondDomainError(c *fiber.Ctx, err error, fallback string) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": map[string][]string{validationErr.Field: {validationErr.Message}},
		})
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFoundErr.Error()})
	}

	var invalidStateErr *services.InvalidStateError
	if errors.As(err, &invalidStateErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": invalidStateErr.Error()})
	}

	var inProgressErr *services.AlreadyInProgressError
	if errors.As(err, &inProgressErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": inProgressErr.Error()})
	}

	var notPublishedErr *services.NotPublishedError
	if errors.As(err, &notPublishedErr) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": notPublishedErr.Error()})
	}

	var unknownQuestionErr *services.UnknownQuestionError
	if errors.As(err, &unknownQuestionErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": unknownQuestionErr.Error()})
	}

	log.Printf("🔥 %s: %v", fallback, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
}
