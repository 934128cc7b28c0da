package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

// Article paging limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ArticleQuery selects a page of the catalog. Page is zero-based.
type ArticleQuery struct {
	Page   int
	Size   int
	Search string
}

// ArticlePage is one page of the catalog.
type ArticlePage struct {
	Items []*domain.Article
	Total int64
	Page  int
	Size  int
}

// ArticleInput carries a new or replacement catalog entry.
type ArticleInput struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Description string
	MeasureUnit string
}

// ArticleService manages the shared article catalog.
type ArticleService struct {
	articles ports.ArticleRepository
}

// NewArticleService creates an article service. Panics if articles is nil.
func NewArticleService(articles ports.ArticleRepository) *ArticleService {
	if articles == nil {
		panic("ArticleService: article repository is required")
	}
	return &ArticleService{articles: articles}
}

// List returns one page of articles ordered by name.
func (s *ArticleService) List(ctx context.Context, q ArticleQuery) (*ArticlePage, error) {
	page := max(q.Page, 0)
	size := q.Size
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}

	items, total, err := s.articles.List(ctx, ports.ArticleFilter{
		Search: strings.TrimSpace(q.Search),
		Offset: page * size,
		Limit:  size,
	})
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}

	return &ArticlePage{Items: items, Total: total, Page: page, Size: size}, nil
}

// Get returns an article by ID.
func (s *ArticleService) Get(ctx context.Context, id uint) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading article: %w", err)
	}
	return article, nil
}

// Create adds an article. Names are unique regardless of case.
func (s *ArticleService) Create(ctx context.Context, in ArticleInput) (*domain.Article, error) {
	article, err := buildArticle(in)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNameFree(ctx, article.Name, 0); err != nil {
		return nil, err
	}

	if err := s.articles.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("creating article: %w", err)
	}

	loggerFor(ctx, "app.ArticleService").InfoContext(ctx, "article created",
		slog.Uint64("article_id", uint64(article.ID)))

	return article, nil
}

// Update replaces an article. Keeping the current name, in any case, is allowed.
func (s *ArticleService) Update(ctx context.Context, id uint, in ArticleInput) (*domain.Article, error) {
	current, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading article: %w", err)
	}

	article, err := buildArticle(in)
	if err != nil {
		return nil, err
	}
	article.ID = current.ID

	if !current.SameName(article.Name) {
		if err := s.ensureNameFree(ctx, article.Name, current.ID); err != nil {
			return nil, err
		}
	}

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("updating article: %w", err)
	}
	return article, nil
}

// ensureNameFree fails with a conflict when another article already uses name.
func (s *ArticleService) ensureNameFree(ctx context.Context, name string, self uint) error {
	existing, err := s.articles.FindByName(ctx, name)
	switch {
	case domain.IsNotFound(err):
		return nil
	case err != nil:
		return fmt.Errorf("checking article name: %w", err)
	case existing.ID == self:
		return nil
	default:
		return domain.NewConflictErrorWithDetails("article", domain.ArticleConflictMessage,
			"existing id "+strconv.FormatUint(uint64(existing.ID), 10))
	}
}

func buildArticle(in ArticleInput) (*domain.Article, error) {
	category, err := domain.ParseWorkArea("category", in.Category)
	if err != nil {
		return nil, err
	}
	unit, err := domain.ParseMeasureUnit("measureUnit", in.MeasureUnit)
	if err != nil {
		return nil, err
	}

	article := &domain.Article{
		Name:        strings.TrimSpace(in.Name),
		Category:    category,
		Price:       in.Price,
		Description: strings.TrimSpace(in.Description),
		MeasureUnit: unit,
	}
	if err := article.Validate(); err != nil {
		return nil, err
	}
	return article, nil
}
