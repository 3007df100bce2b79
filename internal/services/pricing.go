package services

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"storefront/internal/models"
)

// ProductLookup resolves a product by ID.
type ProductLookup interface {
	GetByID(id string) (*models.Product, error)
}

// PricedLine is a cart line joined with live catalog data.
type PricedLine struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	ImageRef  string          `json:"imageRef"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Resolved  bool            `json:"resolved"`
}

// Summary is the derived view of a cart. It is computed on demand and never stored.
type Summary struct {
	Lines     []PricedLine    `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// LineSubtotal returns price * quantity.
func LineSubtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Summarize prices lines against the current catalog. Lines whose product
// no longer resolves are kept with a zero subtotal.
func Summarize(lookup ProductLookup, lines []models.CartLine) Summary {
	summary := Summary{
		Lines: make([]PricedLine, 0, len(lines)),
		Total: decimal.Zero,
	}
	for _, line := range lines {
		priced := PricedLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: decimal.Zero,
			Subtotal:  decimal.Zero,
		}
		if p, err := lookup.GetByID(line.ProductID); err == nil {
			priced.Title = p.Title
			priced.ImageRef = p.ImageRef
			priced.UnitPrice = p.Price
			priced.Subtotal = LineSubtotal(p.Price, line.Quantity)
			priced.Resolved = true
		}
		summary.Lines = append(summary.Lines, priced)
		summary.Total = summary.Total.Add(priced.Subtotal)
		summary.ItemCount += line.Quantity
	}
	return summary
}

// FormatPrice renders an amount the way the storefront displays it: "$"
// followed by the es-AR grouping with up to three fraction digits.
func FormatPrice(amount decimal.Decimal) string {
	p := message.NewPrinter(displayLocale)
	return "$" + p.Sprint(number.Decimal(amount.InexactFloat64(), number.MaxFractionDigits(3)))
}

var displayLocale = language.MustParse("es-AR")
