package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	appctx "github.com/jsamuelsen/offermaster-service/internal/app/context"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/platform/metrics"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

const (
	logoPrefix         = "logos"
	defaultLogoTimeout = 5 * time.Second
	pdfContentType     = "application/pdf"
	renderFailedReason = "quote PDF could not be generated"
)

// QuoteItemInput is one requested line of a new quote.
type QuoteItemInput struct {
	ArticleID uint
	Quantity  int
}

// CreateQuoteInput carries a new quote. Logo is an optional base64 payload;
// a nil Discount means no discount.
type CreateQuoteInput struct {
	Items       []QuoteItemInput
	Logo        string
	Discount    *int
	ProjectID   *uint
	Description string
}

// Document is a rendered file ready for download or mailing.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

// QuoteService orchestrates quote use cases: creation with logo upload,
// reads with priced items, PDF rendering and mailing.
// It depends on port interfaces, not concrete implementations.
type QuoteService struct {
	quotes      ports.QuoteRepository
	articles    ports.ArticleRepository
	projects    ports.ProjectRepository
	storage     ports.ObjectStorage
	fetcher     ports.ImageFetcher
	renderer    ports.DocumentRenderer
	mailer      ports.Mailer
	executor    *Executor
	bucket      string
	logoTimeout time.Duration
	metrics     *metrics.Recorder
	now         func() time.Time
}

// QuoteServiceConfig contains the dependencies of the quote service.
type QuoteServiceConfig struct {
	Quotes   ports.QuoteRepository
	Articles ports.ArticleRepository
	Projects ports.ProjectRepository
	Storage  ports.ObjectStorage
	Fetcher  ports.ImageFetcher
	Renderer ports.DocumentRenderer
	Mailer   ports.Mailer

	// Bucket receives quote logos.
	Bucket string

	// LogoTimeout bounds the logo download while rendering. Defaults to 5s.
	LogoTimeout time.Duration

	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// NewQuoteService creates a quote service. Panics if a dependency is missing.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Quotes == nil || cfg.Articles == nil || cfg.Projects == nil {
		panic("QuoteService: quote, article and project repositories are required")
	}
	if cfg.Storage == nil || cfg.Fetcher == nil || cfg.Renderer == nil || cfg.Mailer == nil {
		panic("QuoteService: storage, fetcher, renderer and mailer are required")
	}
	if cfg.Bucket == "" {
		panic("QuoteService: bucket is required")
	}

	timeout := cfg.LogoTimeout
	if timeout <= 0 {
		timeout = defaultLogoTimeout
	}

	return &QuoteService{
		quotes:      cfg.Quotes,
		articles:    cfg.Articles,
		projects:    cfg.Projects,
		storage:     cfg.Storage,
		fetcher:     cfg.Fetcher,
		renderer:    cfg.Renderer,
		mailer:      cfg.Mailer,
		executor:    NewExecutor(cfg.Logger),
		bucket:      cfg.Bucket,
		logoTimeout: timeout,
		metrics:     cfg.Metrics,
		now:         time.Now,
	}
}

// quoteDraft is the state a quote creation accumulates between steps.
type quoteDraft struct {
	actor domain.Actor
	input CreateQuoteInput
	rc    *appctx.RequestContext

	discount int
	items    []domain.QuoteItem
	logo     *image
}

// Create validates, uploads the logo, and persists a quote owned by the actor.
// The logo is uploaded before the insert; a failed insert deletes it again.
func (s *QuoteService) Create(ctx context.Context, actor domain.Actor, in CreateQuoteInput) (id uint, err error) {
	defer func() { s.metrics.QuoteCreated(err) }()

	if err := requireActor(actor); err != nil {
		return 0, err
	}

	rc := appctx.New(ctx)
	defer compensate(ctx, rc, &err)

	op := Operation[*quoteDraft, string, *domain.Quote, uint]{
		Name:     "create_quote",
		Validate: s.validateDraft,
		Perform:  s.uploadLogo,
		Verify:   s.verifyDraft,
		Archive: func(ctx context.Context, _ *quoteDraft, quote *domain.Quote) error {
			return s.quotes.Create(ctx, quote)
		},
		Respond: func(ctx context.Context, _ *quoteDraft, quote *domain.Quote) (uint, error) {
			loggerFor(ctx, "app.QuoteService").InfoContext(ctx, "quote created",
				slog.Uint64("quote_id", uint64(quote.ID)),
				slog.Int("items", len(quote.Items)))
			return quote.ID, nil
		},
	}

	return Execute(ctx, s.executor, op, &quoteDraft{actor: actor, input: in, rc: rc})
}

func (s *QuoteService) validateDraft(ctx context.Context, d *quoteDraft) error {
	if len(d.input.Items) == 0 {
		return domain.NewValidationError("items", "must contain at least one item")
	}

	if d.input.Discount != nil {
		d.discount = *d.input.Discount
	}
	if err := domain.ValidateDiscount(d.discount); err != nil {
		return err
	}

	d.items = make([]domain.QuoteItem, 0, len(d.input.Items))
	for _, item := range d.input.Items {
		if err := domain.ValidateQuantity(item.Quantity); err != nil {
			return err
		}

		article, err := s.article(d.rc, item.ArticleID)
		if err != nil {
			return err
		}
		d.items = append(d.items, domain.QuoteItem{ArticleID: article.ID, Article: article, Quantity: item.Quantity})
	}

	if d.input.ProjectID != nil {
		project, err := s.projects.GetByID(ctx, *d.input.ProjectID)
		if err != nil {
			return fmt.Errorf("loading project %d: %w", *d.input.ProjectID, err)
		}
		if err := d.actor.Authorize("create quote", "project", project.OwnerID); err != nil {
			return err
		}
	}

	if strings.TrimSpace(d.input.Logo) != "" {
		logo, err := decodeLogo(d.input.Logo)
		if err != nil {
			return err
		}
		d.logo = logo
	}

	return nil
}

// article loads an article once per request, however many items reference it.
func (s *QuoteService) article(rc *appctx.RequestContext, id uint) (*domain.Article, error) {
	article, err := appctx.Get(rc, "article:"+strconv.FormatUint(uint64(id), 10),
		func(ctx context.Context) (*domain.Article, error) {
			return s.articles.GetByID(ctx, id)
		})
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewValidationErrorWithValue("items", fmt.Sprintf("article %d not found", id), id)
		}
		return nil, fmt.Errorf("loading article %d: %w", id, err)
	}
	return article, nil
}

func (s *QuoteService) uploadLogo(ctx context.Context, d *quoteDraft) (string, error) {
	if d.logo == nil {
		return "", nil
	}
	return upload(ctx, d.rc, s.storage, s.bucket, logoPrefix, d.logo, s.now())
}

func (s *QuoteService) verifyDraft(_ context.Context, d *quoteDraft, logoURL string) (*domain.Quote, error) {
	if d.logo != nil && logoURL == "" {
		return nil, domain.NewInternalError("upload logo", "object storage returned no public URL")
	}

	return &domain.Quote{
		OwnerID:     d.actor.UserID,
		ProjectID:   d.input.ProjectID,
		Items:       d.items,
		Discount:    d.discount,
		LogoURL:     logoURL,
		Description: strings.TrimSpace(d.input.Description),
	}, nil
}

// List returns the actor's quotes, newest first, with priced items.
func (s *QuoteService) List(ctx context.Context, actor domain.Actor) ([]*domain.Quote, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	quotes, err := s.quotes.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}

	articles, err := s.resolveArticles(ctx, quotes...)
	if err != nil {
		return nil, err
	}
	for _, quote := range quotes {
		attachArticles(quote, articles)
	}
	return quotes, nil
}

// Get returns a quote owned by the actor with priced items.
func (s *QuoteService) Get(ctx context.Context, actor domain.Actor, id uint) (*domain.Quote, error) {
	quote, err := s.owned(ctx, actor, "read quote", id)
	if err != nil {
		return nil, err
	}

	articles, err := s.resolveArticles(ctx, quote)
	if err != nil {
		return nil, err
	}
	attachArticles(quote, articles)
	return quote, nil
}

// Delete removes a quote owned by the actor. Linked calendar events are detached.
func (s *QuoteService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	if _, err := s.owned(ctx, actor, "delete quote", id); err != nil {
		return err
	}

	if err := s.quotes.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting quote: %w", err)
	}

	loggerFor(ctx, "app.QuoteService").InfoContext(ctx, "quote deleted", slog.Uint64("quote_id", uint64(id)))
	return nil
}

// RenderPDF renders a quote owned by the actor. Articles and the logo are
// loaded concurrently. Fetch and render failures surface as a generic
// internal error; the cause is logged.
func (s *QuoteService) RenderPDF(ctx context.Context, actor domain.Actor, id uint) (*Document, error) {
	quote, err := s.owned(ctx, actor, "render quote", id)
	if err != nil {
		return nil, err
	}

	logger := loggerFor(ctx, "app.QuoteService").With(slog.Uint64("quote_id", uint64(id)))
	start := time.Now()

	articles, logo, err := Parallel2(ctx,
		func(ctx context.Context) (map[uint]*domain.Article, error) {
			return s.resolveArticles(ctx, quote)
		},
		func(ctx context.Context) (*ports.Image, error) {
			return s.fetchLogo(ctx, quote.LogoURL)
		},
	)
	if err != nil {
		logger.ErrorContext(ctx, "loading quote assets failed", slog.Any("error", err))
		return nil, domain.NewInternalError("render quote", renderFailedReason)
	}
	attachArticles(quote, articles)

	content, err := s.renderer.RenderQuote(ctx, quote, logo)
	if err != nil {
		logger.ErrorContext(ctx, "rendering quote failed", slog.Any("error", err))
		return nil, domain.NewInternalError("render quote", renderFailedReason)
	}

	s.metrics.PDFRendered(time.Since(start))
	logger.DebugContext(ctx, "quote PDF rendered", slog.Int("bytes", len(content)))

	return &Document{
		Filename:    "ponuda-" + strconv.FormatUint(uint64(id), 10) + ".pdf",
		ContentType: pdfContentType,
		Content:     content,
	}, nil
}

// Email renders a quote owned by the actor and mails it to the recipient.
// An empty recipientName falls back to a generic greeting.
func (s *QuoteService) Email(ctx context.Context, actor domain.Actor, id uint, recipientEmail, recipientName string) (err error) {
	defer func() { s.metrics.QuoteEmailed(err) }()

	recipientEmail = strings.TrimSpace(recipientEmail)
	if recipientEmail == "" {
		return domain.NewValidationError("recipientEmail", "is required")
	}

	doc, err := s.RenderPDF(ctx, actor, id)
	if err != nil {
		return err
	}

	err = s.mailer.SendQuote(ctx, ports.QuoteEmail{
		QuoteID:        id,
		RecipientEmail: recipientEmail,
		RecipientName:  strings.TrimSpace(recipientName),
		PDF:            doc.Content,
	})
	if err != nil {
		return fmt.Errorf("mailing quote %d: %w", id, err)
	}

	loggerFor(ctx, "app.QuoteService").InfoContext(ctx, "quote emailed", slog.Uint64("quote_id", uint64(id)))
	return nil
}

func (s *QuoteService) owned(ctx context.Context, actor domain.Actor, operation string, id uint) (*domain.Quote, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	quote, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading quote %d: %w", id, err)
	}
	if err := actor.Authorize(operation, "quote", quote.OwnerID); err != nil {
		return nil, err
	}
	return quote, nil
}

// resolveArticles loads every article the quotes reference in one query.
func (s *QuoteService) resolveArticles(ctx context.Context, quotes ...*domain.Quote) (map[uint]*domain.Article, error) {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, quote := range quotes {
		for _, item := range quote.Items {
			if _, ok := seen[item.ArticleID]; !ok {
				seen[item.ArticleID] = struct{}{}
				ids = append(ids, item.ArticleID)
			}
		}
	}
	if len(ids) == 0 {
		return map[uint]*domain.Article{}, nil
	}

	articles, err := s.articles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading quote articles: %w", err)
	}
	return articles, nil
}

func (s *QuoteService) fetchLogo(ctx context.Context, url string) (*ports.Image, error) {
	if url == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.logoTimeout)
	defer cancel()

	logo, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching logo: %w", err)
	}
	return logo, nil
}

func attachArticles(quote *domain.Quote, articles map[uint]*domain.Article) {
	for i := range quote.Items {
		quote.Items[i].Article = articles[quote.Items[i].ArticleID]
	}
}
