package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

func (e *testEnv) createArticle(t *testing.T, token, name, price string) uint {
	t.Helper()

	w := e.do(t, http.MethodPost, "/articles", token, ArticleRequest{
		Name:        name,
		Category:    "GRUBI_RADOVI",
		Price:       decimal.RequireFromString(price),
		MeasureUnit: "M2",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var article ArticleResponse
	decode(t, w, &article)
	return article.ID
}

func (e *testEnv) createQuote(t *testing.T, token string, req CreateQuoteRequest) uint {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/quotes", token, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp CreateQuoteResponse
	decode(t, w, &resp)
	return resp.ID
}

func intPtr(i int) *int { return &i }

func TestToQuoteResponse(t *testing.T) {
	projectID := uint(4)
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	plaster := &domain.Article{ID: 1, Name: "Žbukanje", Category: domain.WorkAreaStructural, Price: decimal.RequireFromString("25"), MeasureUnit: domain.MeasureUnitSquareMeter}
	socket := &domain.Article{ID: 2, Name: "Utičnica", Category: domain.WorkAreaElectrical, Price: decimal.RequireFromString("50"), MeasureUnit: domain.MeasureUnitPiece}

	tests := []struct {
		name         string
		quote        *domain.Quote
		wantSubtotal string
		wantTotal    string
		wantLines    []string
	}{
		{
			name: "discounted",
			quote: &domain.Quote{
				ID:        9,
				ProjectID: &projectID,
				Discount:  10,
				CreatedAt: created,
				Items: []domain.QuoteItem{
					{ID: 1, ArticleID: 1, Article: plaster, Quantity: 100},
					{ID: 2, ArticleID: 2, Article: socket, Quantity: 8},
				},
			},
			wantSubtotal: "2900.00",
			wantTotal:    "2610.00",
			wantLines:    []string{"2500.00", "400.00"},
		},
		{
			name: "unresolved article prices at zero",
			quote: &domain.Quote{
				ID:    10,
				Items: []domain.QuoteItem{{ID: 3, ArticleID: 77, Quantity: 2}},
			},
			wantSubtotal: "0.00",
			wantTotal:    "0.00",
			wantLines:    []string{"0.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := toQuoteResponse(tt.quote)

			assert.Equal(t, tt.quote.ID, resp.ID)
			assert.Equal(t, tt.wantSubtotal, resp.Subtotal)
			assert.Equal(t, tt.wantTotal, resp.Total)
			assert.Equal(t, tt.quote.ProjectID, resp.ProjectID)
			require.Len(t, resp.Items, len(tt.wantLines))
			for i, want := range tt.wantLines {
				assert.Equal(t, want, resp.Items[i].LineTotal)
				assert.Equal(t, tt.quote.Items[i].Article == nil, resp.Items[i].Article == nil)
			}
		})
	}
}

func TestQuoteHandler_CreateAndRead(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ana@example.com")
	plaster := env.createArticle(t, token, "Žbukanje zidova", "25.00")
	socket := env.createArticle(t, token, "Utičnica", "50.00")

	env.storage.EXPECT().
		Upload(mock.Anything, testLogoBucket, mock.MatchedBy(func(path string) bool {
			return strings.HasPrefix(path, "logos/") && strings.HasSuffix(path, ".png")
		}), pngBytes, "image/png").
		Return("https://storage.example.com/public/logo.png", nil).
		Once()

	id := env.createQuote(t, token, CreateQuoteRequest{
		Items: []QuoteItemRequest{
			{ArticleID: plaster, Quantity: 100},
			{ArticleID: socket, Quantity: 8},
		},
		Discount:    intPtr(10),
		Logo:        pngDataURL(),
		Description: "Kupaonica",
	})
	require.NotZero(t, id)

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/quotes/%d", id), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var quote QuoteResponse
	decode(t, w, &quote)
	assert.Equal(t, "2900.00", quote.Subtotal)
	assert.Equal(t, "2610.00", quote.Total)
	assert.Equal(t, 10, quote.Discount)
	assert.Equal(t, "https://storage.example.com/public/logo.png", quote.LogoURL)
	require.Len(t, quote.Items, 2)
	assert.Equal(t, "Žbukanje zidova", quote.Items[0].Article.Name)

	w = env.do(t, http.MethodGet, "/api/quotes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []QuoteResponse
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
}

func TestQuoteHandler_Create_Rejects(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "ana@example.com")
	intruder := env.register(t, "ivo@example.com")
	article := env.createArticle(t, owner, "Beton", "10.00")

	w := env.do(t, http.MethodPost, "/api/projects", intruder, CreateProjectRequest{Name: "Tuđi"})
	require.Equal(t, http.StatusCreated, w.Code)
	var foreign ProjectResponse
	decode(t, w, &foreign)
	missingProject := uint(999)

	tests := []struct {
		name       string
		body       CreateQuoteRequest
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown article",
			body:       CreateQuoteRequest{Items: []QuoteItemRequest{{ArticleID: 404, Quantity: 1}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
		{
			name:       "no items",
			body:       CreateQuoteRequest{Items: []QuoteItemRequest{}},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
		{
			name:       "discount above 100",
			body:       CreateQuoteRequest{Items: []QuoteItemRequest{{ArticleID: article, Quantity: 1}}, Discount: intPtr(101)},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
		{
			name:       "zero quantity",
			body:       CreateQuoteRequest{Items: []QuoteItemRequest{{ArticleID: article, Quantity: 0}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
		{
			name:       "missing project",
			body:       CreateQuoteRequest{Items: []QuoteItemRequest{{ArticleID: article, Quantity: 1}}, ProjectID: &missingProject},
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrorCodeNotFound,
		},
		{
			name:       "foreign project",
			body:       CreateQuoteRequest{Items: []QuoteItemRequest{{ArticleID: article, Quantity: 1}}, ProjectID: &foreign.ID},
			wantStatus: http.StatusForbidden,
			wantCode:   dto.ErrorCodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/quotes", owner, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}

	w = env.do(t, http.MethodGet, "/api/quotes", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String(), "rejected quotes are not stored")
}

func TestQuoteHandler_Create_StorageFailure(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ana@example.com")
	article := env.createArticle(t, token, "Beton", "10.00")

	env.storage.EXPECT().Upload(mock.Anything, testLogoBucket, mock.Anything, mock.Anything, mock.Anything).
		Return("", domain.NewInternalError("upload logo", "logo upload failed")).
		Once()

	w := env.do(t, http.MethodPost, "/api/quotes", token, CreateQuoteRequest{
		Items: []QuoteItemRequest{{ArticleID: article, Quantity: 1}},
		Logo:  pngDataURL(),
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp dto.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, dto.ErrorCodeInternal, resp.Error.Code)
	assert.Equal(t, "logo upload failed", resp.Error.Message)
}

func TestQuoteHandler_OwnershipAndDelete(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "ana@example.com")
	intruder := env.register(t, "ivo@example.com")
	article := env.createArticle(t, owner, "Beton", "10.00")
	id := env.createQuote(t, owner, CreateQuoteRequest{Items: []QuoteItemRequest{{ArticleID: article, Quantity: 3}}})
	target := fmt.Sprintf("/api/quotes/%d", id)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w := env.do(t, method, target, intruder, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, method)
	}
	w := env.do(t, http.MethodGet, target+"/pdf", intruder, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, target, owner, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, target, owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuoteHandler_PDF(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ana@example.com")
	article := env.createArticle(t, token, "Beton", "10.00")
	id := env.createQuote(t, token, CreateQuoteRequest{Items: []QuoteItemRequest{{ArticleID: article, Quantity: 3}}})

	env.renderer.EXPECT().
		RenderQuote(mock.Anything, mock.MatchedBy(func(q *domain.Quote) bool {
			return q.ID == id && q.Total().Equal(decimal.NewFromInt(30))
		}), (*ports.Image)(nil)).
		Return([]byte("%PDF-1.3 test"), nil).
		Once()

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/quotes/%d/pdf", id), token, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, fmt.Sprintf(`attachment; filename="ponuda-%d.pdf"`, id), w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3 test", w.Body.String())

	env.renderer.EXPECT().RenderQuote(mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("font missing")).
		Once()

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/quotes/%d/pdf", id), token, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "font missing")
}

func TestQuoteHandler_Email(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ana@example.com")
	article := env.createArticle(t, token, "Beton", "10.00")
	id := env.createQuote(t, token, CreateQuoteRequest{Items: []QuoteItemRequest{{ArticleID: article, Quantity: 1}}})
	base := fmt.Sprintf("/api/quotes/%d/email", id)

	env.renderer.EXPECT().RenderQuote(mock.Anything, mock.Anything, mock.Anything).
		Return([]byte("%PDF"), nil)
	env.mailer.EXPECT().
		SendQuote(mock.Anything, mock.MatchedBy(func(msg ports.QuoteEmail) bool {
			return msg.QuoteID == id && msg.RecipientEmail == "kupac@example.com" && msg.RecipientName == "Marko"
		})).
		Return(nil).
		Once()

	w := env.do(t, http.MethodPost, base+"?recipientEmail=kupac@example.com&recipientName=Marko", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, base, token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.mailer.EXPECT().SendQuote(mock.Anything, mock.Anything).
		RunAndReturn(func(context.Context, ports.QuoteEmail) error { return errors.New("smtp: 550") }).
		Once()

	w = env.do(t, http.MethodPost, base+"?recipientEmail=kupac@example.com", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
