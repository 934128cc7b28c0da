package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
)

func TestToArticleResponse(t *testing.T) {
	resp := toArticleResponse(&domain.Article{
		ID:          3,
		Name:        "Pločice 30x30",
		Category:    domain.WorkAreaTiling,
		Price:       decimal.RequireFromString("12.5"),
		MeasureUnit: domain.MeasureUnitSquareMeter,
	})

	assert.Equal(t, &ArticleResponse{
		ID:          3,
		Name:        "Pločice 30x30",
		Category:    EnumResponse{Code: "KERAMIKA", Label: "Keramika"},
		Price:       "12.50",
		MeasureUnit: EnumResponse{Code: "M2", Label: "m²"},
	}, resp)
}

func TestArticleHandler_CRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ana@example.com")

	w := env.do(t, http.MethodPost, "/articles", "", ArticleRequest{Name: "Beton"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/articles", token, map[string]any{
		"name":        "Beton C25",
		"category":    "GRUBI_RADOVI",
		"price":       "95.5",
		"measureUnit": "m³",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created ArticleResponse
	decode(t, w, &created)
	assert.Equal(t, "95.50", created.Price)
	assert.Equal(t, "M3", created.MeasureUnit.Code)

	w = env.do(t, http.MethodPost, "/articles", token, map[string]any{
		"name":        "beton c25",
		"category":    "GRUBI_RADOVI",
		"price":       1,
		"measureUnit": "M3",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	var conflict dto.ErrorResponse
	decode(t, w, &conflict)
	assert.Equal(t, domain.ArticleConflictMessage, conflict.Error.Message)

	target := fmt.Sprintf("/articles/%d", created.ID)

	w = env.do(t, http.MethodPut, target, token, map[string]any{
		"name":        "BETON C25",
		"category":    "GRUBI_RADOVI",
		"price":       99,
		"measureUnit": "M3",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, target, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got ArticleResponse
	decode(t, w, &got)
	assert.Equal(t, "BETON C25", got.Name)
	assert.Equal(t, "99.00", got.Price)

	w = env.do(t, http.MethodGet, "/articles/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/articles/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArticleHandler_List(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ana@example.com")

	for i := range 12 {
		w := env.do(t, http.MethodPost, "/articles", token, ArticleRequest{
			Name:        fmt.Sprintf("Kabel %02d", i),
			Category:    "ELEKTRIKA",
			Price:       decimal.NewFromInt(int64(i + 1)),
			MeasureUnit: "KOM",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantItems  int
		wantTotal  int64
		wantPages  int64
	}{
		{name: "defaults", query: "", wantStatus: http.StatusOK, wantItems: 12, wantTotal: 12, wantPages: 1},
		{name: "second page", query: "?page=1&size=5", wantStatus: http.StatusOK, wantItems: 5, wantTotal: 12, wantPages: 3},
		{name: "search", query: "?search=kabel%201", wantStatus: http.StatusOK, wantItems: 2, wantTotal: 2, wantPages: 1},
		{name: "negative size", query: "?size=-1", wantStatus: http.StatusBadRequest},
		{name: "non numeric page", query: "?page=x", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/articles"+tt.query, token, nil)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			var page ArticlePageResponse
			decode(t, w, &page)
			assert.Len(t, page.Content, tt.wantItems)
			assert.Equal(t, tt.wantTotal, page.TotalElements)
			assert.Equal(t, tt.wantPages, page.TotalPages)
		})
	}
}
