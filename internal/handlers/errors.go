package handlers

import (
	"errors"
	"log"

	"vaidya/internal/models"
	"vaidya/internal/repositories"
	"vaidya/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogPath is where an empty-cart checkout is redirected.
const CatalogPath = "/api/v1/products"

// respondError maps service and repository errors to a status and the JSON error body.
func respondError(c *fiber.Ctx, err error, message string) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErr.Fields,
		})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, models.ErrItemNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, repositories.ErrDuplicate), errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrIdempotencyKeyInUse):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrCheckoutNotStarted):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		status = fiber.StatusUnauthorized
	case errors.Is(err, models.ErrInvalidQuantity), errors.Is(err, services.ErrInvalidStatus):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrPaymentDeclined):
		status = fiber.StatusPaymentRequired
	}
	if status == fiber.StatusInternalServerError {
		log.Printf("%s: %v", message, err)
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func badBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
