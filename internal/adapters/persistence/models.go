package persistence

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
)

type userRecord struct {
	ID                uint   `gorm:"primaryKey"`
	Email             string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash      string `gorm:"size:255;not null"`
	FirstName         string `gorm:"size:100"`
	LastName          string `gorm:"size:100"`
	PrimaryAreaOfWork string `gorm:"size:32"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (userRecord) TableName() string { return "users" }

type passwordResetTokenRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Token     string    `gorm:"size:64;not null;uniqueIndex"`
	UserID    uint      `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
}

func (passwordResetTokenRecord) TableName() string { return "password_reset_tokens" }

// articleRecord keeps a lower-cased copy of the name so the unique index
// enforces case-insensitive uniqueness on every driver.
type articleRecord struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:255;not null"`
	NameKey     string          `gorm:"size:255;not null;uniqueIndex"`
	Category    string          `gorm:"size:32"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Description string          `gorm:"type:text"`
	MeasureUnit string          `gorm:"size:8"`
}

func (articleRecord) TableName() string { return "articles" }

type projectRecord struct {
	ID        uint   `gorm:"primaryKey"`
	OwnerID   uint   `gorm:"not null;index"`
	Name      string `gorm:"size:255;not null"`
	Address   string `gorm:"size:255"`
	Status    string `gorm:"size:32"`
	ImageURL  string `gorm:"size:1024"`
	Notes     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (projectRecord) TableName() string { return "projects" }

type quoteRecord struct {
	ID          uint   `gorm:"primaryKey"`
	OwnerID     uint   `gorm:"not null;index"`
	ProjectID   *uint  `gorm:"index"`
	Discount    int    `gorm:"not null;default:0"`
	LogoURL     string `gorm:"size:1024"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	Items       []quoteItemRecord `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
}

func (quoteRecord) TableName() string { return "quotes" }

type quoteItemRecord struct {
	ID        uint `gorm:"primaryKey"`
	QuoteID   uint `gorm:"not null;index"`
	ArticleID uint `gorm:"not null;index"`
	Quantity  int  `gorm:"not null"`
}

func (quoteItemRecord) TableName() string { return "quote_items" }

type calendarEventRecord struct {
	ID        uint      `gorm:"primaryKey"`
	OwnerID   uint      `gorm:"not null;index"`
	Title     string    `gorm:"size:255;not null"`
	Date      time.Time `gorm:"not null;index"`
	QuoteID   *uint     `gorm:"index"`
	ProjectID *uint     `gorm:"index"`
}

func (calendarEventRecord) TableName() string { return "calendar_events" }

func allModels() []any {
	return []any{
		&userRecord{},
		&passwordResetTokenRecord{},
		&articleRecord{},
		&projectRecord{},
		&quoteRecord{},
		&quoteItemRecord{},
		&calendarEventRecord{},
	}
}

func newUserRecord(u *domain.User) *userRecord {
	return &userRecord{
		ID:                u.ID,
		Email:             domain.NormalizeEmail(u.Email),
		PasswordHash:      u.PasswordHash,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		PrimaryAreaOfWork: string(u.PrimaryAreaOfWork),
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:                r.ID,
		Email:             r.Email,
		PasswordHash:      r.PasswordHash,
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		PrimaryAreaOfWork: domain.WorkArea(r.PrimaryAreaOfWork),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func (r *passwordResetTokenRecord) toDomain() *domain.PasswordResetToken {
	return &domain.PasswordResetToken{
		ID:        r.ID,
		Token:     r.Token,
		UserID:    r.UserID,
		ExpiresAt: r.ExpiresAt,
	}
}

func newArticleRecord(a *domain.Article) *articleRecord {
	return &articleRecord{
		ID:          a.ID,
		Name:        a.Name,
		NameKey:     nameKey(a.Name),
		Category:    string(a.Category),
		Price:       a.Price,
		Description: a.Description,
		MeasureUnit: string(a.MeasureUnit),
	}
}

func (r *articleRecord) toDomain() *domain.Article {
	return &domain.Article{
		ID:          r.ID,
		Name:        r.Name,
		Category:    domain.WorkArea(r.Category),
		Price:       r.Price,
		Description: r.Description,
		MeasureUnit: domain.MeasureUnit(r.MeasureUnit),
	}
}

func newProjectRecord(p *domain.Project) *projectRecord {
	return &projectRecord{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		Address:   p.Address,
		Status:    string(p.Status),
		ImageURL:  p.ImageURL,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (r *projectRecord) toDomain() *domain.Project {
	return &domain.Project{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		Address:   r.Address,
		Status:    domain.ProjectStatus(r.Status),
		ImageURL:  r.ImageURL,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newQuoteRecord(q *domain.Quote) *quoteRecord {
	rec := &quoteRecord{
		ID:          q.ID,
		OwnerID:     q.OwnerID,
		ProjectID:   q.ProjectID,
		Discount:    q.Discount,
		LogoURL:     q.LogoURL,
		Description: q.Description,
		CreatedAt:   q.CreatedAt,
		Items:       make([]quoteItemRecord, len(q.Items)),
	}
	for i, item := range q.Items {
		rec.Items[i] = quoteItemRecord{ArticleID: item.ArticleID, Quantity: item.Quantity}
	}
	return rec
}

func (r *quoteRecord) toDomain() *domain.Quote {
	q := &domain.Quote{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		ProjectID:   r.ProjectID,
		Discount:    r.Discount,
		LogoURL:     r.LogoURL,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		Items:       make([]domain.QuoteItem, len(r.Items)),
	}
	for i, item := range r.Items {
		q.Items[i] = domain.QuoteItem{
			ID:        item.ID,
			QuoteID:   item.QuoteID,
			ArticleID: item.ArticleID,
			Quantity:  item.Quantity,
		}
	}
	return q
}

func newCalendarEventRecord(e *domain.CalendarEvent) *calendarEventRecord {
	return &calendarEventRecord{
		ID:        e.ID,
		OwnerID:   e.OwnerID,
		Title:     e.Title,
		Date:      truncateToDate(e.Date),
		QuoteID:   e.QuoteID,
		ProjectID: e.ProjectID,
	}
}

func (r *calendarEventRecord) toDomain() *domain.CalendarEvent {
	return &domain.CalendarEvent{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Title:     r.Title,
		Date:      truncateToDate(r.Date),
		QuoteID:   r.QuoteID,
		ProjectID: r.ProjectID,
	}
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func notFound(entity, id string) error {
	return domain.NewNotFoundError(entity, id)
}
