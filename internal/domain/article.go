package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ArticleConflictMessage is returned when an article name is already taken.
const ArticleConflictMessage = "This item already exists. Please choose a different name."

// Article is a priced catalog entry that quotes are assembled from.
type Article struct {
	ID          uint
	Name        string
	Category    WorkArea
	Price       decimal.Decimal
	Description string
	MeasureUnit MeasureUnit
}

// Validate checks the article's own invariants.
func (a *Article) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return NewValidationError("name", "is required")
	}

	if a.Price.IsNegative() {
		return NewValidationErrorWithValue("price", "must not be negative", a.Price.String())
	}

	return nil
}

// SameName reports whether name matches the article's name, ignoring case.
func (a *Article) SameName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(a.Name), strings.TrimSpace(name))
}
