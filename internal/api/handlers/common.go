package handlers

import (
	"errors"

	"bizbooks/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals("userID").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

// failureResponse maps the pipeline's typed failures onto HTTP statuses.
// Every failure surfaces as a single JSON error message; nothing propagates
// as an unhandled fault and nothing retries automatically.
func failureResponse(c *fiber.Ctx, err error) error {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Error(),
		})
	}

	var configErr *service.ConfigurationError
	if errors.As(err, &configErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": configErr.Error(),
		})
	}

	var upstreamErr *service.UpstreamError
	if errors.As(err, &upstreamErr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": upstreamErr.Error(),
		})
	}

	var parseErr *service.ParseError
	if errors.As(err, &parseErr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": parseErr.Error(),
		})
	}

	var persistenceErr *service.PersistenceError
	if errors.As(err, &persistenceErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": persistenceErr.Error(),
		})
	}

	switch {
	case errors.Is(err, service.ErrDraftNotFound), errors.Is(err, service.ErrBillNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, service.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
