package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"birthdayclub/internal/domain"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  domain.PaginationParams
	}{
		{"", domain.PaginationParams{Page: 1, PageSize: 20}},
		{"page=3&page_size=50", domain.PaginationParams{Page: 3, PageSize: 50}},
		{"page=0&page_size=0", domain.PaginationParams{Page: 1, PageSize: 20}},
		{"page=x&page_size=1000", domain.PaginationParams{Page: 1, PageSize: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/events/feed?"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePagination(req))
		})
	}
}

func TestNewPaginationMeta(t *testing.T) {
	assert.Equal(t, PaginationMeta{Page: 2, PageSize: 20, Total: 41, TotalPages: 3}, NewPaginationMeta(domain.PaginationParams{Page: 2, PageSize: 20}, 41))
	assert.Equal(t, 0, NewPaginationMeta(domain.PaginationParams{Page: 1, PageSize: 20}, 0).TotalPages)
	assert.Equal(t, 0, NewPaginationMeta(domain.PaginationParams{}, 5).TotalPages)
}
