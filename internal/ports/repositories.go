package ports

import (
	"context"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// Create inserts a user and sets its ID.
	// Returns domain.ErrConflict if the email is already registered.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns domain.ErrNotFound if no user has the ID.
	GetByID(ctx context.Context, id uint) (*domain.User, error)

	// GetByEmail matches case-insensitively.
	// Returns domain.ErrNotFound if no user has the email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update saves all mutable fields.
	Update(ctx context.Context, user *domain.User) error
}

// PasswordResetTokenRepository persists password reset tokens.
type PasswordResetTokenRepository interface {
	// Replace removes any tokens held by the token's user and stores the new one.
	Replace(ctx context.Context, token *domain.PasswordResetToken) error

	// GetByToken returns domain.ErrNotFound for unknown tokens.
	GetByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error)

	Delete(ctx context.Context, id uint) error
}

// ArticleFilter selects a page of catalog articles.
type ArticleFilter struct {
	// Search matches article names case-insensitively by substring.
	Search string
	Offset int
	Limit  int
}

// ArticleRepository persists catalog articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	Update(ctx context.Context, article *domain.Article) error

	// GetByID returns domain.ErrNotFound if the article does not exist.
	GetByID(ctx context.Context, id uint) (*domain.Article, error)

	// GetByIDs returns the articles that exist among ids, keyed by ID.
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*domain.Article, error)

	// FindByName matches case-insensitively.
	// Returns domain.ErrNotFound if no article has the name.
	FindByName(ctx context.Context, name string) (*domain.Article, error)

	// List returns one page of articles ordered by name, plus the total match count.
	List(ctx context.Context, filter ArticleFilter) ([]*domain.Article, int64, error)
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error

	// GetByID returns domain.ErrNotFound if the project does not exist.
	GetByID(ctx context.Context, id uint) (*domain.Project, error)

	// ListByOwner returns the owner's projects ordered by name.
	ListByOwner(ctx context.Context, ownerID uint) ([]*domain.Project, error)

	// Delete removes a project and detaches its quotes and calendar events
	// in one transaction.
	Delete(ctx context.Context, id uint) error
}

// QuoteRepository persists quotes with their items.
type QuoteRepository interface {
	// Create inserts the quote and all of its items in one transaction.
	Create(ctx context.Context, quote *domain.Quote) error

	// GetByID loads the quote with items in insertion order. Item articles are
	// left unresolved; see ArticleRepository.GetByIDs.
	// Returns domain.ErrNotFound if the quote does not exist.
	GetByID(ctx context.Context, id uint) (*domain.Quote, error)

	// ListByOwner returns the owner's quotes with their items, newest first.
	ListByOwner(ctx context.Context, ownerID uint) ([]*domain.Quote, error)

	// Delete removes the quote and its items, and detaches calendar events.
	Delete(ctx context.Context, id uint) error
}

// CalendarEventRepository persists calendar events.
type CalendarEventRepository interface {
	Create(ctx context.Context, event *domain.CalendarEvent) error

	// GetByID returns domain.ErrNotFound if the event does not exist.
	GetByID(ctx context.Context, id uint) (*domain.CalendarEvent, error)

	// ListByOwner returns the owner's events ordered by date.
	ListByOwner(ctx context.Context, ownerID uint) ([]*domain.CalendarEvent, error)

	Delete(ctx context.Context, id uint) error
}
