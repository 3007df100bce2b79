package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/services"
)

// ProductHandler serves the catalog.
type ProductHandler struct {
	service *services.CatalogService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

type productView struct {
	models.Product
	FormattedPrice string `json:"formattedPrice"`
}

func newProductView(p models.Product) productView {
	return productView{Product: p, FormattedPrice: services.FormatPrice(p.Price)}
}

// HandleGetProducts lists the catalog. An empty list means the catalog is
// still loading or could not be loaded.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.Products()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = newProductView(p)
	}
	return c.JSON(views)
}

// HandleGetProductByID returns a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.Product(c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(newProductView(*product))
}
