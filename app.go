package main

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

// Dependencies are the storage and integration points the storefront runs on.
type Dependencies struct {
	Products  repositories.ProductRepository
	Slots     repositories.SlotStore
	Source    services.CatalogSource
	Publisher services.OrderEventPublisher // optional
	Logger    *zap.Logger
}

// App owns the session state (catalog, cart, order history) and the HTTP
// surface that renders it.
type App struct {
	Fiber    *fiber.App
	Catalog  *services.CatalogService
	Cart     *services.CartService
	Checkout *services.CheckoutService
	logger   *zap.Logger
}

// NewApp wires services and handlers. The catalog starts empty until Start.
func NewApp(deps Dependencies) *App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog := services.NewCatalogService(deps.Source, deps.Products, logger)
	cart := services.NewCartService(deps.Products, repositories.NewSlotCartRepository(deps.Slots), logger)
	orders := repositories.NewSlotOrderRepository(deps.Slots)
	checkout := services.NewCheckoutService(cart, deps.Products, orders, deps.Publisher, logger)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(middleware.RequestLogger(logger))

	apiV1 := app.Group("/api/v1")
	handlers.NewProductHandler(catalog, logger).RegisterRoutes(apiV1)
	handlers.NewCartHandler(cart, logger).RegisterRoutes(apiV1)
	handlers.NewCheckoutHandler(checkout, logger).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(checkout, logger).RegisterRoutes(apiV1)

	app.Get("/health", func(c *fiber.Ctx) error {
		products, err := catalog.Products()
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"products": len(products),
		})
	})

	return &App{
		Fiber:    app,
		Catalog:  catalog,
		Cart:     cart,
		Checkout: checkout,
		logger:   logger,
	}
}

// Start loads the catalog once and then restores the saved cart against it.
// A catalog failure is logged and degrades to the built-in list or an empty
// catalog; it is never fatal.
func (a *App) Start(useDefaultCatalog bool) error {
	if _, err := a.Catalog.LoadOrFallback(useDefaultCatalog); err != nil {
		a.logger.Warn("catalog degraded", zap.Error(err))
	}
	return a.Cart.RestoreFromStorage()
}
