package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/services"
)

// CartHandler exposes the cart store.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: models.NewValidator(),
		logger:   logger,
	}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:id", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
}

// AddItemRequest is the body of POST /cart/items.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest is the body of PATCH /cart/items/:id. Either Action or
// Quantity must be given.
type UpdateItemRequest struct {
	Quantity *int   `json:"quantity" validate:"required_without=Action"`
	Action   string `json:"action" validate:"omitempty,oneof=increment decrement"`
}

type cartView struct {
	Lines          []services.PricedLine `json:"lines"`
	Total          decimal.Decimal       `json:"total"`
	FormattedTotal string                `json:"formattedTotal"`
	ItemCount      int                   `json:"itemCount"`
}

func (h *CartHandler) view() cartView {
	summary := h.service.Summary()
	return cartView{
		Lines:          summary.Lines,
		Total:          summary.Total,
		FormattedTotal: services.FormatPrice(summary.Total),
		ItemCount:      summary.ItemCount,
	}
}

// HandleGetCart returns the priced cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	return c.JSON(h.view())
}

// HandleAddItem adds a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	req := AddItemRequest{Quantity: 1}
	if err := c.BodyParser(&req); err != nil {
		return respondInvalid(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondInvalid(c, err)
	}

	line, err := h.service.AddItem(req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if line == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %s not found", req.ProductID),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(h.view())
}

// HandleUpdateItem sets or steps a line quantity.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	productID := c.Params("id")
	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondInvalid(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondInvalid(c, err)
	}

	var err error
	switch req.Action {
	case "increment":
		_, err = h.service.IncrementQuantity(productID)
	case "decrement":
		_, err = h.service.DecrementQuantity(productID)
	default:
		_, err = h.service.SetQuantity(productID, *req.Quantity)
	}
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(h.view())
}

// HandleRemoveItem removes a line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	h.service.RemoveItem(c.Params("id"))
	return c.JSON(h.view())
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	h.service.Clear()
	return c.JSON(h.view())
}
