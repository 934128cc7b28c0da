package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/offermaster-service/internal/app"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
)

// ArticleHandler handles the shared article catalog.
type ArticleHandler struct {
	service *app.ArticleService
}

// NewArticleHandler creates a new article handler.
func NewArticleHandler(service *app.ArticleService) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// ArticleListRequest holds the query parameters of GET /articles.
type ArticleListRequest struct {
	dto.PageRequest
	Search string `form:"search"`
}

// ArticleRequest is the body of POST /articles and PUT /articles/{id}.
// Price accepts a JSON number or a decimal string.
type ArticleRequest struct {
	Name        string          `json:"name" validate:"required,notempty"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Description string          `json:"description"`
	MeasureUnit string          `json:"measureUnit" validate:"required"`
}

// ArticleResponse is the HTTP view of an article.
type ArticleResponse struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Category    EnumResponse `json:"category"`
	Price       string       `json:"price"`
	Description string       `json:"description,omitempty"`
	MeasureUnit EnumResponse `json:"measureUnit"`
}

// ArticlePageResponse is one page of the catalog.
type ArticlePageResponse = dto.Page[*ArticleResponse]

func toArticleResponse(a *domain.Article) *ArticleResponse {
	return &ArticleResponse{
		ID:          a.ID,
		Name:        a.Name,
		Category:    EnumResponse{Code: string(a.Category), Label: a.Category.Label()},
		Price:       a.Price.StringFixed(moneyPlaces),
		Description: a.Description,
		MeasureUnit: EnumResponse{Code: string(a.MeasureUnit), Label: a.MeasureUnit.Label()},
	}
}

func toArticlePageResponse(p *app.ArticlePage) *ArticlePageResponse {
	return dto.MapPage(p.Items, p.Page, p.Size, p.Total, toArticleResponse)
}

func (r *ArticleRequest) input() app.ArticleInput {
	return app.ArticleInput{
		Name:        r.Name,
		Category:    r.Category,
		Price:       r.Price,
		Description: r.Description,
		MeasureUnit: r.MeasureUnit,
	}
}

// List handles GET /articles
//
// @Summary List articles
// @Description Zero-based page of articles ordered by name, optionally filtered by a case-insensitive name search.
// @Tags articles
// @Produce json
// @Param page query int false "Page, zero-based"
// @Param size query int false "Page size, max 100"
// @Param search query string false "Name contains"
// @Success 200 {object} ArticlePageResponse
// @Router /articles [get]
func (h *ArticleHandler) List(c *gin.Context) {
	var req ArticleListRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), app.ArticleQuery{
		Page:   req.Page,
		Size:   req.Size,
		Search: req.Search,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toArticlePageResponse(page))
}

// Get handles GET /articles/:id
//
// @Summary Get an article
// @Tags articles
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} ArticleResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /articles/{id} [get]
func (h *ArticleHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	article, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toArticleResponse(article))
}

// Create handles POST /articles
//
// @Summary Create an article
// @Tags articles
// @Accept json
// @Produce json
// @Param request body ArticleRequest true "Article"
// @Success 201 {object} ArticleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /articles [post]
func (h *ArticleHandler) Create(c *gin.Context) {
	var req ArticleRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	article, err := h.service.Create(c.Request.Context(), req.input())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toArticleResponse(article))
}

// Update handles PUT /articles/:id
//
// @Summary Replace an article
// @Tags articles
// @Accept json
// @Produce json
// @Param id path int true "Article ID"
// @Param request body ArticleRequest true "Article"
// @Success 200 {object} ArticleResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /articles/{id} [put]
func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ArticleRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	article, err := h.service.Update(c.Request.Context(), id, req.input())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toArticleResponse(article))
}

// RegisterArticleRoutes registers the catalog routes on rg.
func (h *ArticleHandler) RegisterArticleRoutes(rg gin.IRoutes) {
	rg.GET("/articles", h.List)
	rg.GET("/articles/:id", h.Get)
	rg.POST("/articles", h.Create)
	rg.PUT("/articles/:id", h.Update)
}
