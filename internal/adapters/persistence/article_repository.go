package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

// ArticleRepository implements ports.ArticleRepository.
type ArticleRepository struct {
	db *gorm.DB
}

var _ ports.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates an ArticleRepository.
func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Create inserts the article. A case-insensitive name clash is a conflict.
func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	rec := newArticleRecord(article)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return articleWriteError(err, "creating article")
	}
	article.ID = rec.ID
	return nil
}

// Update saves every article field.
func (r *ArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	rec := newArticleRecord(article)
	result := r.db.WithContext(ctx).Model(rec).Select("*").Omit("id").Updates(rec)
	if result.Error != nil {
		return articleWriteError(result.Error, fmt.Sprintf("updating article %d", article.ID))
	}
	if result.RowsAffected == 0 {
		return notFound("article", idString(article.ID))
	}
	return nil
}

// GetByID loads an article.
func (r *ArticleRepository) GetByID(ctx context.Context, id uint) (*domain.Article, error) {
	var rec articleRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translateError(err, "article", idString(id))
	}
	return rec.toDomain(), nil
}

// GetByIDs loads the existing articles among ids.
func (r *ArticleRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*domain.Article, error) {
	found := make(map[uint]*domain.Article, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var recs []articleRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("loading articles: %w", err)
	}
	for i := range recs {
		found[recs[i].ID] = recs[i].toDomain()
	}
	return found, nil
}

// FindByName looks an article up by case-insensitive name.
func (r *ArticleRepository) FindByName(ctx context.Context, name string) (*domain.Article, error) {
	var rec articleRecord
	if err := r.db.WithContext(ctx).Where("name_key = ?", nameKey(name)).First(&rec).Error; err != nil {
		return nil, translateError(err, "article", "")
	}
	return rec.toDomain(), nil
}

// List returns one page of articles ordered by name.
func (r *ArticleRepository) List(ctx context.Context, filter ports.ArticleFilter) ([]*domain.Article, int64, error) {
	matching := func(db *gorm.DB) *gorm.DB {
		if search := nameKey(filter.Search); search != "" {
			return db.Where("name_key LIKE ? ESCAPE '\\'", "%"+escapeLike(search)+"%")
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&articleRecord{}).Scopes(matching).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting articles: %w", err)
	}

	var recs []articleRecord
	err := r.db.WithContext(ctx).Scopes(matching).
		Order("name_key ASC").Order("id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&recs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing articles: %w", err)
	}

	articles := make([]*domain.Article, len(recs))
	for i := range recs {
		articles[i] = recs[i].toDomain()
	}
	return articles, total, nil
}

func articleWriteError(err error, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.NewConflictError("article", domain.ArticleConflictMessage)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
