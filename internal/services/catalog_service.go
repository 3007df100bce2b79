package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CatalogService loads the product list and serves read access to it.
type CatalogService struct {
	source   CatalogSource
	repo     repositories.ProductRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCatalogService creates a new CatalogService. source may be nil, in
// which case every Load fails.
func NewCatalogService(source CatalogSource, repo repositories.ProductRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		source:   source,
		repo:     repo,
		validate: models.NewValidator(),
		logger:   logger,
	}
}

// Load fetches, decodes and validates the catalog, then installs it.
// Every failure wraps ErrLoadFailure and leaves the current catalog as is.
func (s *CatalogService) Load() ([]models.Product, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: no catalog source configured", ErrLoadFailure)
	}
	raw, err := s.source.Fetch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}
	products, err := decodeCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}
	for i := range products {
		if err := s.validate.Struct(products[i]); err != nil {
			return nil, fmt.Errorf("%w: product %d: %v", ErrLoadFailure, i, err)
		}
	}
	if err := s.repo.ReplaceAll(products); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}
	s.logger.Info("catalog loaded", zap.Int("products", len(products)))
	return products, nil
}

// LoadOrFallback runs Load and, when it fails, installs DefaultProducts if
// useDefault is set or leaves the catalog empty otherwise. The load error is
// returned alongside whatever catalog ended up installed.
func (s *CatalogService) LoadOrFallback(useDefault bool) ([]models.Product, error) {
	products, err := s.Load()
	if err == nil {
		return products, nil
	}
	if !useDefault {
		s.logger.Warn("catalog unavailable, showing empty catalog", zap.Error(err))
		return []models.Product{}, err
	}
	s.logger.Warn("catalog unavailable, using built-in products", zap.Error(err))
	fallback := DefaultProducts()
	if replaceErr := s.repo.ReplaceAll(fallback); replaceErr != nil {
		return nil, errors.Join(err, replaceErr)
	}
	return fallback, err
}

// Products returns the current catalog in display order.
func (s *CatalogService) Products() ([]models.Product, error) {
	return s.repo.GetAll()
}

// Product returns a single product.
func (s *CatalogService) Product(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// DefaultProducts is the built-in catalog used when the resource cannot be loaded.
func DefaultProducts() []models.Product {
	return []models.Product{
		{ID: "1", Title: "Mate", Price: decimal.NewFromInt(3500), Stock: 10, Description: "Mate de calabaza curado"},
		{ID: "2", Title: "Bombilla", Price: decimal.NewFromInt(1500), Stock: 10, Description: "Bombilla de acero inoxidable"},
		{ID: "3", Title: "Termo", Price: decimal.NewFromInt(9500), Stock: 10, Description: "Termo de 1 litro"},
		{ID: "4", Title: "Bolso Matero", Price: decimal.NewFromInt(7000), Stock: 10, Description: "Bolso para llevar el equipo de mate"},
		{ID: "5", Title: "Yerbera", Price: decimal.NewFromInt(2000), Stock: 10, Description: "Yerbera con azucarera"},
	}
}

// priceScale matches the decimal(12,2) price column.
const priceScale = 2

// catalogRecord is the wire shape of one catalog entry. Older documents use
// name/image instead of title/imageRef and numeric ids.
type catalogRecord struct {
	ID          flexibleID      `json:"id"`
	Title       string          `json:"title"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	ImageRef    string          `json:"imageRef"`
}

func decodeCatalog(raw []byte) ([]models.Product, error) {
	var records []catalogRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(records))
	products := make([]models.Product, 0, len(records))
	for _, r := range records {
		id := string(r.ID)
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate product id %q", id)
		}
		seen[id] = struct{}{}
		if !r.Price.Equal(r.Price.Round(priceScale)) {
			return nil, fmt.Errorf("price %s of product %q has more than %d decimal places", r.Price, id, priceScale)
		}

		p := models.Product{
			ID:          id,
			Title:       r.Title,
			Price:       r.Price,
			Stock:       r.Stock,
			Description: r.Description,
			ImageRef:    r.ImageRef,
		}
		if p.Title == "" {
			p.Title = r.Name
		}
		if p.ImageRef == "" {
			p.ImageRef = r.Image
		}
		products = append(products, p)
	}
	return products, nil
}

// flexibleID accepts both "7" and 7.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*f = flexibleID(n.String())
	return nil
}
