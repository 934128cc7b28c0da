package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Discount bounds, in whole percent.
const (
	MinDiscount = 0
	MaxDiscount = 100
)

var hundred = decimal.NewFromInt(100)

// Quote is an itemized, discountable price proposal.
// Totals are derived from the items and never stored.
type Quote struct {
	ID          uint
	OwnerID     uint
	ProjectID   *uint
	Items       []QuoteItem
	Discount    int
	LogoURL     string
	Description string
	CreatedAt   time.Time
}

// QuoteItem is one line of a quote. Article is resolved when the quote is
// loaded for pricing or rendering.
type QuoteItem struct {
	ID        uint
	QuoteID   uint
	ArticleID uint
	Article   *Article
	Quantity  int
}

// LineTotal is quantity times the article's unit price.
// An unresolved article contributes zero.
func (i *QuoteItem) LineTotal() decimal.Decimal {
	if i.Article == nil {
		return decimal.Zero
	}

	return i.Article.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal is the sum of all line totals, before discount.
func (q *Quote) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for i := range q.Items {
		sum = sum.Add(q.Items[i].LineTotal())
	}

	return sum
}

// HasDiscount reports whether a positive discount applies.
func (q *Quote) HasDiscount() bool {
	return q.Discount > 0
}

// Total is the subtotal reduced by the discount percentage.
func (q *Quote) Total() decimal.Decimal {
	subtotal := q.Subtotal()
	if !q.HasDiscount() {
		return subtotal
	}

	return subtotal.Mul(decimal.NewFromInt(int64(MaxDiscount - q.Discount))).Div(hundred)
}

// ValidateDiscount checks that a discount is a whole percentage in range.
func ValidateDiscount(discount int) error {
	if discount < MinDiscount || discount > MaxDiscount {
		return NewValidationErrorWithValue("discount", "must be between 0 and 100", discount)
	}

	return nil
}

// ValidateQuantity checks that an item quantity is positive.
func ValidateQuantity(quantity int) error {
	if quantity <= 0 {
		return NewValidationErrorWithValue("quantity", "must be greater than zero", quantity)
	}

	return nil
}
