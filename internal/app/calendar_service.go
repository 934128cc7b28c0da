package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

// CalendarEventInput carries a new event. Date is YYYY-MM-DD.
type CalendarEventInput struct {
	Title     string
	Date      string
	QuoteID   *uint
	ProjectID *uint
}

// CalendarService manages the actor's calendar events.
type CalendarService struct {
	events   ports.CalendarEventRepository
	quotes   ports.QuoteRepository
	projects ports.ProjectRepository
}

// CalendarServiceConfig contains the dependencies of the calendar service.
type CalendarServiceConfig struct {
	Events   ports.CalendarEventRepository
	Quotes   ports.QuoteRepository
	Projects ports.ProjectRepository
}

// NewCalendarService creates a calendar service. Panics if a dependency is missing.
func NewCalendarService(cfg CalendarServiceConfig) *CalendarService {
	if cfg.Events == nil || cfg.Quotes == nil || cfg.Projects == nil {
		panic("CalendarService: event, quote and project repositories are required")
	}

	return &CalendarService{
		events:   cfg.Events,
		quotes:   cfg.Quotes,
		projects: cfg.Projects,
	}
}

// Create stores an event owned by the actor. A referenced quote or project
// must exist and belong to the actor.
func (s *CalendarService) Create(ctx context.Context, actor domain.Actor, in CalendarEventInput) (*domain.CalendarEvent, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.NewValidationError("title", "is required")
	}
	date, err := domain.ParseDate("date", in.Date)
	if err != nil {
		return nil, err
	}

	if in.QuoteID != nil {
		quote, err := s.quotes.GetByID(ctx, *in.QuoteID)
		if err != nil {
			return nil, fmt.Errorf("loading quote %d: %w", *in.QuoteID, err)
		}
		if err := actor.Authorize("create calendar event", "quote", quote.OwnerID); err != nil {
			return nil, err
		}
	}
	if in.ProjectID != nil {
		project, err := s.projects.GetByID(ctx, *in.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("loading project %d: %w", *in.ProjectID, err)
		}
		if err := actor.Authorize("create calendar event", "project", project.OwnerID); err != nil {
			return nil, err
		}
	}

	event := &domain.CalendarEvent{
		OwnerID:   actor.UserID,
		Title:     title,
		Date:      date,
		QuoteID:   in.QuoteID,
		ProjectID: in.ProjectID,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("creating calendar event: %w", err)
	}

	loggerFor(ctx, "app.CalendarService").InfoContext(ctx, "calendar event created",
		slog.Uint64("event_id", uint64(event.ID)))

	return event, nil
}

// List returns the actor's events by date, earliest first.
func (s *CalendarService) List(ctx context.Context, actor domain.Actor) ([]*domain.CalendarEvent, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	events, err := s.events.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing calendar events: %w", err)
	}
	return events, nil
}

// Get returns an event owned by the actor.
func (s *CalendarService) Get(ctx context.Context, actor domain.Actor, id uint) (*domain.CalendarEvent, error) {
	return s.owned(ctx, actor, "read calendar event", id)
}

// Delete removes an event owned by the actor.
func (s *CalendarService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	if _, err := s.owned(ctx, actor, "delete calendar event", id); err != nil {
		return err
	}

	if err := s.events.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting calendar event: %w", err)
	}
	return nil
}

func (s *CalendarService) owned(ctx context.Context, actor domain.Actor, operation string, id uint) (*domain.CalendarEvent, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading calendar event %d: %w", id, err)
	}
	if err := actor.Authorize(operation, "calendar event", event.OwnerID); err != nil {
		return nil, err
	}
	return event, nil
}
