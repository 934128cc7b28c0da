package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

// QuoteRepository implements ports.QuoteRepository.
type QuoteRepository struct {
	db *gorm.DB
}

var _ ports.QuoteRepository = (*QuoteRepository)(nil)

// NewQuoteRepository creates a QuoteRepository.
func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create inserts the quote and its items in one transaction and copies the
// generated IDs back onto quote.
func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	rec := newQuoteRecord(quote)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(rec).Error
	})
	if err != nil {
		return fmt.Errorf("creating quote: %w", err)
	}

	quote.ID = rec.ID
	quote.CreatedAt = rec.CreatedAt
	for i := range quote.Items {
		quote.Items[i].ID = rec.Items[i].ID
		quote.Items[i].QuoteID = rec.ID
	}
	return nil
}

// GetByID loads the quote with its items in insertion order.
func (r *QuoteRepository) GetByID(ctx context.Context, id uint) (*domain.Quote, error) {
	var rec quoteRecord
	if err := r.db.WithContext(ctx).Preload("Items", orderByID).First(&rec, id).Error; err != nil {
		return nil, translateError(err, "quote", idString(id))
	}
	return rec.toDomain(), nil
}

// ListByOwner returns the owner's quotes, newest first.
func (r *QuoteRepository) ListByOwner(ctx context.Context, ownerID uint) ([]*domain.Quote, error) {
	var recs []quoteRecord
	err := r.db.WithContext(ctx).
		Preload("Items", orderByID).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}

	quotes := make([]*domain.Quote, len(recs))
	for i := range recs {
		quotes[i] = recs[i].toDomain()
	}
	return quotes, nil
}

// Delete removes the quote with its items and detaches calendar events.
func (r *QuoteRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&calendarEventRecord{}).Where("quote_id = ?", id).
			Update("quote_id", nil).Error; err != nil {
			return fmt.Errorf("detaching events from quote %d: %w", id, err)
		}
		if err := tx.Where("quote_id = ?", id).Delete(&quoteItemRecord{}).Error; err != nil {
			return fmt.Errorf("deleting items of quote %d: %w", id, err)
		}

		result := tx.Delete(&quoteRecord{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting quote %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("quote", idString(id))
		}
		return nil
	})
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
