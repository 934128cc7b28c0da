package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/offermaster-service/internal/app"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
)

// QuoteHandler handles quote-related HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// QuoteItemRequest is one requested line of a new quote.
type QuoteItemRequest struct {
	ArticleID uint `json:"articleId" validate:"required"`
	Quantity  int  `json:"quantity"`
}

// CreateQuoteRequest is the body of POST /api/quotes.
// Logo is an optional base64 image; a missing discount means none.
type CreateQuoteRequest struct {
	Items       []QuoteItemRequest `json:"items" validate:"required,dive"`
	Logo        string             `json:"logo"`
	Discount    *int               `json:"discount"`
	ProjectID   *uint              `json:"projectId"`
	Description string             `json:"description"`
}

// EmailQuoteRequest holds the query parameters of POST /api/quotes/{id}/email.
type EmailQuoteRequest struct {
	RecipientEmail string `form:"recipientEmail" validate:"required,email"`
	RecipientName  string `form:"recipientName"`
}

// CreateQuoteResponse carries the ID of a new quote.
type CreateQuoteResponse struct {
	ID uint `json:"id"`
}

// QuoteItemResponse is one priced line. Article is null when the article
// no longer resolves.
type QuoteItemResponse struct {
	ID        uint             `json:"id"`
	Article   *ArticleResponse `json:"article"`
	Quantity  int              `json:"quantity"`
	LineTotal string           `json:"lineTotal"`
}

// QuoteResponse is the HTTP view of a priced quote. Money is rendered with
// two decimals.
type QuoteResponse struct {
	ID          uint                 `json:"id"`
	Items       []*QuoteItemResponse `json:"items"`
	Subtotal    string               `json:"subtotal"`
	Discount    int                  `json:"discount"`
	Total       string               `json:"total"`
	LogoURL     string               `json:"logoUrl,omitempty"`
	ProjectID   *uint                `json:"projectId"`
	Description string               `json:"description,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// toQuoteResponse converts a domain Quote to an HTTP response.
func toQuoteResponse(q *domain.Quote) *QuoteResponse {
	resp := &QuoteResponse{
		ID:          q.ID,
		Items:       make([]*QuoteItemResponse, 0, len(q.Items)),
		Subtotal:    q.Subtotal().StringFixed(moneyPlaces),
		Discount:    q.Discount,
		Total:       q.Total().StringFixed(moneyPlaces),
		LogoURL:     q.LogoURL,
		ProjectID:   q.ProjectID,
		Description: q.Description,
		CreatedAt:   q.CreatedAt,
	}

	for i := range q.Items {
		item := &q.Items[i]
		line := &QuoteItemResponse{
			ID:        item.ID,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal().StringFixed(moneyPlaces),
		}
		if item.Article != nil {
			line.Article = toArticleResponse(item.Article)
		}
		resp.Items = append(resp.Items, line)
	}

	return resp
}

func (r *CreateQuoteRequest) input() app.CreateQuoteInput {
	items := make([]app.QuoteItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, app.QuoteItemInput{ArticleID: it.ArticleID, Quantity: it.Quantity})
	}

	return app.CreateQuoteInput{
		Items:       items,
		Logo:        r.Logo,
		Discount:    r.Discount,
		ProjectID:   r.ProjectID,
		Description: r.Description,
	}
}

// Create handles POST /api/quotes
//
// @Summary Create a quote
// @Description Validates the items, uploads the optional logo and saves the quote.
// @Tags quotes
// @Accept json
// @Produce json
// @Param request body CreateQuoteRequest true "Quote"
// @Success 200 {object} CreateQuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	var req CreateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	id, err := h.service.Create(c.Request.Context(), middleware.CurrentActor(c), req.input())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, CreateQuoteResponse{ID: id})
}

// List handles GET /api/quotes
//
// @Summary List own quotes
// @Tags quotes
// @Produce json
// @Success 200 {array} QuoteResponse
// @Router /api/quotes [get]
func (h *QuoteHandler) List(c *gin.Context) {
	quotes, err := h.service.List(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp := make([]*QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		resp = append(resp, toQuoteResponse(q))
	}

	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/quotes/:id
//
// @Summary Get a quote
// @Tags quotes
// @Produce json
// @Param id path int true "Quote ID"
// @Success 200 {object} QuoteResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/quotes/{id} [get]
func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	quote, err := h.service.Get(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// Delete handles DELETE /api/quotes/:id
//
// @Summary Delete a quote
// @Tags quotes
// @Param id path int true "Quote ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/quotes/{id} [delete]
func (h *QuoteHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// PDF handles GET /api/quotes/:id/pdf
//
// @Summary Download a quote as PDF
// @Tags quotes
// @Produce application/pdf
// @Param id path int true "Quote ID"
// @Success 200 {file} binary
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/quotes/{id}/pdf [get]
func (h *QuoteHandler) PDF(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	doc, err := h.service.RenderPDF(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

// Email handles POST /api/quotes/:id/email
//
// @Summary Email a quote
// @Tags quotes
// @Produce json
// @Param id path int true "Quote ID"
// @Param recipientEmail query string true "Recipient address"
// @Param recipientName query string false "Recipient name"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/quotes/{id}/email [post]
func (h *QuoteHandler) Email(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req EmailQuoteRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	err := h.service.Email(c.Request.Context(), middleware.CurrentActor(c), id, req.RecipientEmail, req.RecipientName)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Quote sent to " + req.RecipientEmail})
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.POST("", h.Create)
	quotes.GET("", h.List)
	quotes.GET("/:id", h.Get)
	quotes.DELETE("/:id", h.Delete)
	quotes.GET("/:id/pdf", h.PDF)
	quotes.POST("/:id/email", h.Email)
}
