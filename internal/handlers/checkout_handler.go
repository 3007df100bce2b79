package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/services"
)

// CheckoutHandler drives the two-step checkout: confirm, then finalize.
type CheckoutHandler struct {
	service *services.CheckoutService
	logger  *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the checkout routes.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkoutRoutes := router.Group("/checkout")
	checkoutRoutes.Get("/buyer", h.HandleSuggestedBuyer)
	checkoutRoutes.Post("/confirm", h.HandleConfirm)
	checkoutRoutes.Post("/", h.HandleFinalize)
}

// HandleSuggestedBuyer returns the values the checkout form starts with.
func (h *CheckoutHandler) HandleSuggestedBuyer(c *fiber.Ctx) error {
	return c.JSON(services.SuggestedBuyer())
}

// HandleConfirm returns the amount to pay without placing the order.
func (h *CheckoutHandler) HandleConfirm(c *fiber.Ctx) error {
	var buyer models.Buyer
	if err := c.BodyParser(&buyer); err != nil {
		return respondInvalid(c, err)
	}
	confirmation, err := h.service.RequestConfirmation(buyer)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(confirmation)
}

// HandleFinalize places the order.
func (h *CheckoutHandler) HandleFinalize(c *fiber.Ctx) error {
	var buyer models.Buyer
	if err := c.BodyParser(&buyer); err != nil {
		return respondInvalid(c, err)
	}
	order, err := h.service.Finalize(buyer)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order":          order,
		"formattedTotal": services.FormatPrice(order.Total),
	})
}
