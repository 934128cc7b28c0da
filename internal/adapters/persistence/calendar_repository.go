package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

// CalendarEventRepository implements ports.CalendarEventRepository.
type CalendarEventRepository struct {
	db *gorm.DB
}

var _ ports.CalendarEventRepository = (*CalendarEventRepository)(nil)

// NewCalendarEventRepository creates a CalendarEventRepository.
func NewCalendarEventRepository(db *gorm.DB) *CalendarEventRepository {
	return &CalendarEventRepository{db: db}
}

func (r *CalendarEventRepository) Create(ctx context.Context, event *domain.CalendarEvent) error {
	rec := newCalendarEventRecord(event)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("creating calendar event: %w", err)
	}
	event.ID = rec.ID
	event.Date = rec.Date
	return nil
}

func (r *CalendarEventRepository) GetByID(ctx context.Context, id uint) (*domain.CalendarEvent, error) {
	var rec calendarEventRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translateError(err, "calendar event", idString(id))
	}
	return rec.toDomain(), nil
}

func (r *CalendarEventRepository) ListByOwner(ctx context.Context, ownerID uint) ([]*domain.CalendarEvent, error) {
	var recs []calendarEventRecord
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("date ASC").Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("listing calendar events: %w", err)
	}

	events := make([]*domain.CalendarEvent, len(recs))
	for i := range recs {
		events[i] = recs[i].toDomain()
	}
	return events, nil
}

func (r *CalendarEventRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&calendarEventRecord{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting calendar event %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("calendar event", idString(id))
	}
	return nil
}
