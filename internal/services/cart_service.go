package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// maxStepperQuantity caps the "+" control of the cart view before the stock clamp.
const maxStepperQuantity = 999

// CartService is the session cart. Lines keep insertion order, there is at
// most one line per product, and every quantity stays within [1, stock].
// Each mutation rewrites the cart slot.
type CartService struct {
	products repositories.ProductRepository
	repo     repositories.CartRepository
	logger   *zap.Logger

	mu    sync.Mutex
	lines []models.CartLine
}

// NewCartService creates an empty cart over the given catalog and storage.
func NewCartService(products repositories.ProductRepository, repo repositories.CartRepository, logger *zap.Logger) *CartService {
	return &CartService{
		products: products,
		repo:     repo,
		logger:   logger,
	}
}

// AddItem puts quantity units of a product into the cart, merging with an
// existing line. Unknown products are ignored and yield a nil line. When the
// cart already holds all available stock it fails with ErrOutOfStock and
// nothing changes; otherwise the added amount is clamped to what is left.
func (s *CartService) AddItem(productID string, quantity int) (*models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.lookup(productID)
	if err != nil || product == nil {
		return nil, err
	}
	quantity = max(1, quantity)

	i := s.indexOf(productID)
	inCart := 0
	if i >= 0 {
		inCart = s.lines[i].Quantity
	}
	available := product.Available(inCart)
	if available <= 0 {
		return nil, fmt.Errorf("%w: %s (stock %d, in cart %d)", ErrOutOfStock, product.Title, product.Stock, inCart)
	}

	if i >= 0 {
		s.lines[i].Quantity += min(quantity, available)
	} else {
		s.lines = append(s.lines, models.CartLine{ProductID: productID, Quantity: min(quantity, product.Stock)})
		i = len(s.lines) - 1
	}
	s.persist()

	line := s.lines[i]
	return &line, nil
}

// RemoveItem deletes the line for productID if there is one.
func (s *CartService) RemoveItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removeLocked(productID) {
		s.persist()
	}
}

// SetQuantity replaces a line's quantity. A quantity of zero or less removes
// the line; anything else is clamped to [1, stock]. Missing lines and lines
// whose product left the catalog are not touched. The returned line is nil
// when nothing remains in the cart for productID.
func (s *CartService) SetQuantity(productID string, quantity int) (*models.CartLine, error) {
	return s.step(productID, func(int) int { return quantity })
}

// IncrementQuantity raises a line by one, capped by stock.
func (s *CartService) IncrementQuantity(productID string) (*models.CartLine, error) {
	return s.step(productID, func(q int) int { return min(maxStepperQuantity, q+1) })
}

// DecrementQuantity lowers a line by one but never below one unit.
func (s *CartService) DecrementQuantity(productID string) (*models.CartLine, error) {
	return s.step(productID, func(q int) int { return max(1, q-1) })
}

// Clear empties the cart.
func (s *CartService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.persist()
}

// Lines returns a copy of the cart lines in insertion order.
func (s *CartService) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Total is the sum of live price * quantity over resolvable lines.
func (s *CartService) Total() decimal.Decimal {
	return s.Summary().Total
}

// ItemCount is the sum of quantities across all lines.
func (s *CartService) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}

// Summary prices the current cart against the live catalog.
func (s *CartService) Summary() Summary {
	return Summarize(s.products, s.Lines())
}

// Serialize returns the persisted form of the cart.
func (s *CartService) Serialize() []models.CartLine {
	return s.Lines()
}

// Restore rebuilds the cart from serialized lines. Entries for products that
// are not in the current catalog are dropped silently; duplicate entries are
// merged and quantities are clamped to the current stock.
func (s *CartService) Restore(data []models.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored := make([]models.CartLine, 0, len(data))
	stock := make(map[string]int, len(data))
	pos := make(map[string]int, len(data))
	dropped := 0

	for _, l := range data {
		i, ok := pos[l.ProductID]
		if !ok {
			p, err := s.products.GetByID(l.ProductID)
			if err != nil {
				dropped++
				continue
			}
			stock[l.ProductID] = p.Stock
			i = len(restored)
			pos[l.ProductID] = i
			restored = append(restored, models.CartLine{ProductID: l.ProductID})
		}
		// Each addend is within [0, stock], so the sum cannot overflow.
		limit := stock[l.ProductID]
		restored[i].Quantity = min(restored[i].Quantity+max(0, min(l.Quantity, limit)), limit)
	}

	lines := restored[:0]
	for _, l := range restored {
		if l.Quantity < 1 {
			dropped++
			continue
		}
		lines = append(lines, l)
	}

	s.lines = lines
	s.persist()

	if dropped > 0 {
		s.logger.Info("dropped cart entries not in catalog", zap.Int("dropped", dropped))
	}
}

// RestoreFromStorage reloads the cart from its slot. Corrupt data is logged
// and treated as an empty cart.
func (s *CartService) RestoreFromStorage() error {
	lines, err := s.repo.Load()
	if err != nil {
		if errors.Is(err, repositories.ErrPersistenceCorrupt) {
			s.logger.Warn("discarding unreadable cart", zap.Error(err))
			s.Restore(nil)
			return nil
		}
		return fmt.Errorf("failed to restore cart: %w", err)
	}
	s.Restore(lines)
	return nil
}

// Drain runs fn with the current lines while holding the cart, and clears
// the cart only if fn succeeds. No other cart operation interleaves with fn.
func (s *CartService) Drain(fn func(lines []models.CartLine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.snapshotLocked()); err != nil {
		return err
	}
	s.lines = nil
	s.persist()
	return nil
}

func (s *CartService) step(productID string, next func(int) int) (*models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.lookup(productID)
	if err != nil {
		return nil, err
	}
	return s.setQuantityLocked(product, productID, next), nil
}

// setQuantityLocked applies next to the current quantity of the line.
// The caller holds s.mu and read product under it.
// product is nil when the id no longer resolves.
func (s *CartService) setQuantityLocked(product *models.Product, productID string, next func(int) int) *models.CartLine {
	i := s.indexOf(productID)
	if i < 0 {
		return nil
	}
	if product == nil {
		line := s.lines[i]
		return &line
	}

	quantity := next(s.lines[i].Quantity)
	if quantity <= 0 || product.Stock <= 0 {
		s.removeLocked(productID)
		s.persist()
		return nil
	}
	s.lines[i].Quantity = min(quantity, product.Stock)
	s.persist()

	line := s.lines[i]
	return &line
}

// lookup returns nil, nil for ids that are not in the catalog. Callers hold
// s.mu so the stock read cannot interleave with Drain.
func (s *CartService) lookup(productID string) (*models.Product, error) {
	product, err := s.products.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return product, nil
}

func (s *CartService) indexOf(productID string) int {
	for i, l := range s.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *CartService) removeLocked(productID string) bool {
	i := s.indexOf(productID)
	if i < 0 {
		return false
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	return true
}

func (s *CartService) snapshotLocked() []models.CartLine {
	lines := make([]models.CartLine, len(s.lines))
	copy(lines, s.lines)
	return lines
}

// persist writes the cart slot. A failed write is logged; the in-memory
// cart stays authoritative.
func (s *CartService) persist() {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(s.snapshotLocked()); err != nil {
		s.logger.Warn("failed to persist cart", zap.Error(err))
	}
}
