package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storefront/internal/handlers"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

type testEnv struct {
	app      *fiber.App
	products repositories.ProductRepository
	cart     *services.CartService
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	// Each test gets its own in-memory database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err, "failed to connect to in-memory database")
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Slot{}), "failed to auto-migrate database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	// Initialize Repositories
	productRepo := repositories.NewGORMProductRepository(db)
	slots := repositories.NewGORMSlotStore(db)
	cartRepo := repositories.NewSlotCartRepository(slots)
	orderRepo := repositories.NewSlotOrderRepository(slots)
	logger := zap.NewNop()

	// Initialize Services
	catalogService := services.NewCatalogService(nil, productRepo, logger)
	cartService := services.NewCartService(productRepo, cartRepo, logger)
	checkoutService := services.NewCheckoutService(cartService, productRepo, orderRepo, nil, logger)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewProductHandler(catalogService, logger).RegisterRoutes(apiV1)
	handlers.NewCartHandler(cartService, logger).RegisterRoutes(apiV1)
	handlers.NewCheckoutHandler(checkoutService, logger).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(checkoutService, logger).RegisterRoutes(apiV1)

	seedProductsForTest(t, productRepo)

	return &testEnv{app: app, products: productRepo, cart: cartService}
}

// seedProductsForTest populates the product repository for tests.
func seedProductsForTest(t *testing.T, repo repositories.ProductRepository) {
	products := []models.Product{
		{ID: "1", Title: "Mate", Description: "Calabaza", Price: decimal.NewFromInt(3500), Stock: 5},
		{ID: "2", Title: "Bombilla", Description: "Acero", Price: decimal.NewFromInt(1500), Stock: 2},
		{ID: "3", Title: "Termo", Price: decimal.RequireFromString("15750.50"), Stock: 0},
	}
	require.NoError(t, repo.ReplaceAll(products), "failed to seed products")
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var result map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &result))
	}
	return resp, result
}

func TestProductEndpoints(t *testing.T) {
	env := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var products []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	require.Len(t, products, 3)
	assert.Equal(t, "Mate", products[0]["title"])
	assert.Equal(t, "$3.500", products[0]["formattedPrice"])
	assert.Equal(t, "$15.750,5", products[2]["formattedPrice"])

	resp, product := doJSON(t, env.app, http.MethodGet, "/api/v1/products/2", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bombilla", product["title"])
	assert.Equal(t, float64(2), product["stock"])

	resp, _ = doJSON(t, env.app, http.MethodGet, "/api/v1/products/99", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCartEndpoints(t *testing.T) {
	env := setupApp(t)

	// Add with default quantity
	resp, cart := doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": "1"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(1), cart["itemCount"])

	// Merge clamps to stock
	resp, cart = doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": "1", "quantity": 10})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(5), cart["itemCount"])
	assert.Equal(t, "$17.500", cart["formattedTotal"])

	// Cart already holds all stock
	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": "1"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "No stock available", body["message"])

	// Product without stock
	resp, _ = doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": "3"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Unknown product
	resp, _ = doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": "404"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Missing product id
	resp, body = doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"quantity": 1})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["message"])

	// Set quantity
	resp, cart = doJSON(t, env.app, http.MethodPatch, "/api/v1/cart/items/1", map[string]interface{}{"quantity": 2})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), cart["itemCount"])

	// Stepper
	resp, cart = doJSON(t, env.app, http.MethodPatch, "/api/v1/cart/items/1", map[string]interface{}{"action": "increment"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), cart["itemCount"])

	resp, _ = doJSON(t, env.app, http.MethodPatch, "/api/v1/cart/items/1", map[string]interface{}{"action": "explode"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, env.app, http.MethodPatch, "/api/v1/cart/items/1", map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Second line, then read the cart
	doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": "2", "quantity": 1})
	resp, cart = doJSON(t, env.app, http.MethodGet, "/api/v1/cart", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	lines := cart["lines"].([]interface{})
	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[0].(map[string]interface{})["productId"])
	assert.Equal(t, "Bombilla", lines[1].(map[string]interface{})["title"])
	assert.Equal(t, "$12.000", cart["formattedTotal"])

	// Set to zero removes
	resp, cart = doJSON(t, env.app, http.MethodPatch, "/api/v1/cart/items/2", map[string]interface{}{"quantity": 0})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, cart["lines"], 1)

	// Remove and clear
	resp, cart = doJSON(t, env.app, http.MethodDelete, "/api/v1/cart/items/1", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, cart["lines"])

	doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": "2"})
	resp, cart = doJSON(t, env.app, http.MethodDelete, "/api/v1/cart", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), cart["itemCount"])
}

func TestCheckoutFlow(t *testing.T) {
	env := setupApp(t)
	buyer := map[string]string{"name": "Ana", "email": "ana@example.com", "address": "Calle 1"}

	// Empty cart
	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/checkout", buyer)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "The cart is empty", body["message"])

	doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": "1", "quantity": 2})
	doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": "2", "quantity": 1})

	// Suggested buyer
	resp, suggested := doJSON(t, env.app, http.MethodGet, "/api/v1/checkout/buyer", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "juan.perez@example.com", suggested["email"])

	// Missing buyer info
	resp, body = doJSON(t, env.app, http.MethodPost, "/api/v1/checkout", map[string]string{"name": "Ana"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	fields := body["errors"].([]interface{})
	require.Len(t, fields, 1)
	assert.Equal(t, "email", fields[0].(map[string]interface{})["field"])

	// Confirmation does not place the order
	resp, confirmation := doJSON(t, env.app, http.MethodPost, "/api/v1/checkout/confirm", buyer)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "$8.500", confirmation["formattedTotal"])
	assert.Equal(t, float64(3), confirmation["itemCount"])

	// Finalize
	resp, body = doJSON(t, env.app, http.MethodPost, "/api/v1/checkout", buyer)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "$8.500", body["formattedTotal"])
	order := body["order"].(map[string]interface{})
	orderID := order["id"].(string)
	assert.True(t, strings.HasPrefix(orderID, "ORD-"))
	assert.Len(t, order["items"], 2)

	// Stock decremented, cart cleared
	mate, err := env.products.GetByID("1")
	require.NoError(t, err)
	assert.Equal(t, 3, mate.Stock)
	bombilla, err := env.products.GetByID("2")
	require.NoError(t, err)
	assert.Equal(t, 1, bombilla.Stock)
	assert.Empty(t, env.cart.Lines())

	// Order history
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var orders []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	require.Len(t, orders, 1)
	assert.Equal(t, orderID, orders[0]["id"])

	resp, stored := doJSON(t, env.app, http.MethodGet, "/api/v1/orders/"+orderID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ana", stored["buyer"].(map[string]interface{})["name"])

	resp, _ = doJSON(t, env.app, http.MethodGet, "/api/v1/orders/ORD-missing", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCheckoutConfirmEmptyCart(t *testing.T) {
	env := setupApp(t)

	resp, _ := doJSON(t, env.app, http.MethodPost, "/api/v1/checkout/confirm", map[string]string{"name": "Ana", "email": "ana@example.com"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}
