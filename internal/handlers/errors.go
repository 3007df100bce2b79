package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/repositories"
	"storefront/internal/services"
)

// respondError maps service errors onto HTTP statuses.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	var buyerErr *services.BuyerInfoError
	switch {
	case errors.As(err, &buyerErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Buyer information is incomplete",
			"errors":  buyerErr.Fields,
		})
	case errors.Is(err, services.ErrOutOfStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "No stock available",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrEmptyCart):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "The cart is empty",
		})
	case errors.Is(err, repositories.ErrProductNotFound), errors.Is(err, repositories.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
	logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal error",
		"error":   err.Error(),
	})
}

// respondInvalid reports a malformed request body.
func respondInvalid(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
