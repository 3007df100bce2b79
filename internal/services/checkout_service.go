package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// OrderEventPublisher announces completed orders to other systems.
type OrderEventPublisher interface {
	PublishOrderPlaced(event models.OrderPlacedEvent) error
}

// Confirmation is what the buyer is asked to approve before Finalize.
type Confirmation struct {
	Total          decimal.Decimal `json:"total"`
	FormattedTotal string          `json:"formattedTotal"`
	ItemCount      int             `json:"itemCount"`
	Lines          []PricedLine    `json:"lines"`
}

// CheckoutService turns the cart into an order.
type CheckoutService struct {
	cart      *CartService
	products  repositories.ProductRepository
	orders    repositories.OrderRepository
	publisher OrderEventPublisher
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCheckoutService creates a new CheckoutService. publisher may be nil.
func NewCheckoutService(cart *CartService, products repositories.ProductRepository, orders repositories.OrderRepository, publisher OrderEventPublisher, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		cart:      cart,
		products:  products,
		orders:    orders,
		publisher: publisher,
		validate:  models.NewValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock replaces the time source used for order timestamps.
func (s *CheckoutService) SetClock(now func() time.Time) {
	s.now = now
}

// RequestConfirmation checks the same preconditions as Finalize and returns
// the amount to pay. It changes nothing.
func (s *CheckoutService) RequestConfirmation(buyer models.Buyer) (*Confirmation, error) {
	// Only resolved lines are purchasable; Finalize skips the rest.
	confirmation := &Confirmation{Total: decimal.Zero}
	for _, l := range s.cart.Summary().Lines {
		if !l.Resolved {
			continue
		}
		confirmation.Lines = append(confirmation.Lines, l)
		confirmation.Total = confirmation.Total.Add(l.Subtotal)
		confirmation.ItemCount += l.Quantity
	}
	if len(confirmation.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	if err := s.validateBuyer(&buyer); err != nil {
		return nil, err
	}
	confirmation.FormattedTotal = FormatPrice(confirmation.Total)
	return confirmation, nil
}

// Finalize records an order for the current cart: it snapshots titles and
// prices, appends the order to the history, decrements stock and clears the
// cart. On any precondition or storage failure nothing is changed.
func (s *CheckoutService) Finalize(buyer models.Buyer) (*models.Order, error) {
	var order *models.Order

	err := s.cart.Drain(func(lines []models.CartLine) error {
		if len(lines) == 0 {
			return ErrEmptyCart
		}
		if err := s.validateBuyer(&buyer); err != nil {
			return err
		}

		snapshots, total := s.snapshot(lines)
		if len(snapshots) == 0 {
			return ErrEmptyCart
		}

		order = &models.Order{
			ID:        "ORD-" + uuid.New().String(),
			Buyer:     buyer,
			Lines:     snapshots,
			Total:     total,
			CreatedAt: s.now().UTC(),
		}
		if err := s.orders.Create(order); err != nil {
			return fmt.Errorf("failed to record order: %w", err)
		}

		for _, l := range snapshots {
			if err := s.products.DecrementStock(l.ProductID, l.Quantity); err != nil {
				s.logger.Warn("failed to decrement stock",
					zap.String("order_id", order.ID),
					zap.String("product_id", l.ProductID),
					zap.Error(err))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("total", order.Total.String()),
		zap.Int("lines", len(order.Lines)))
	s.publish(order)
	return order, nil
}

// Orders returns the order history oldest first.
func (s *CheckoutService) Orders() ([]models.Order, error) {
	orders, err := s.orders.GetAll()
	if errors.Is(err, repositories.ErrPersistenceCorrupt) {
		s.logger.Warn("order history unreadable, treating as empty", zap.Error(err))
		return orders, nil
	}
	return orders, err
}

// Order returns a single order from the history.
func (s *CheckoutService) Order(id string) (*models.Order, error) {
	return s.orders.GetByID(id)
}

// SuggestedBuyer is the data the checkout form is prefilled with.
func SuggestedBuyer() models.Buyer {
	return models.Buyer{
		Name:    "Juan Pérez",
		Email:   "juan.perez@example.com",
		Address: "Calle Falsa 123, Ciudad",
	}
}

func (s *CheckoutService) snapshot(lines []models.CartLine) ([]models.LineSnapshot, decimal.Decimal) {
	snapshots := make([]models.LineSnapshot, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		p, err := s.products.GetByID(l.ProductID)
		if err != nil {
			s.logger.Warn("skipping cart line without product", zap.String("product_id", l.ProductID), zap.Error(err))
			continue
		}
		snap := models.LineSnapshot{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			TitleAtPurchase: p.Title,
			PriceAtPurchase: p.Price,
		}
		snapshots = append(snapshots, snap)
		total = total.Add(snap.Subtotal())
	}
	return snapshots, total
}

func (s *CheckoutService) validateBuyer(buyer *models.Buyer) error {
	buyer.Name = strings.TrimSpace(buyer.Name)
	buyer.Email = strings.TrimSpace(buyer.Email)
	buyer.Address = strings.TrimSpace(buyer.Address)
	buyer.PaymentMethod = strings.TrimSpace(buyer.PaymentMethod)

	err := s.validate.Struct(buyer)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate buyer: %w", err)
	}
	out := &BuyerInfoError{}
	for _, e := range verrs {
		reason := "is invalid"
		switch e.Tag() {
		case "required":
			reason = "is required"
		case "email":
			reason = "must be a valid email address"
		}
		out.Fields = append(out.Fields, FieldError{Field: e.Field(), Reason: reason})
	}
	return out
}

func (s *CheckoutService) publish(order *models.Order) {
	if s.publisher == nil {
		return
	}
	count := 0
	for _, l := range order.Lines {
		count += l.Quantity
	}
	event := models.OrderPlacedEvent{
		OrderID:   order.ID,
		Email:     order.Buyer.Email,
		ItemCount: count,
		Total:     order.Total,
		CreatedAt: order.CreatedAt,
	}
	if err := s.publisher.PublishOrderPlaced(event); err != nil {
		s.logger.Warn("failed to publish order placed event", zap.String("order_id", order.ID), zap.Error(err))
	}
}
