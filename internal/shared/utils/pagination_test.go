package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tierworks/sellertiers/internal/shared/constants"
)

func TestValidatePagination(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"valid values", 2, 20, 2, 20},
		{"zero page", 0, 20, constants.DefaultPage, 20},
		{"negative page", -1, 20, constants.DefaultPage, 20},
		{"zero page size", 1, 0, 1, constants.DefaultPageSize},
		{"page size over max", 1, 500, 1, constants.MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePagination(tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantPageSize, got.PageSize)
		})
	}
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		query string
		want  Pagination
	}{
		{"defaults", "", Pagination{Page: 1, PageSize: constants.DefaultPageSize}},
		{"explicit", "?page=3&page_size=5", Pagination{Page: 3, PageSize: 5}},
		{"garbage", "?page=abc&page_size=-2", Pagination{Page: 1, PageSize: constants.DefaultPageSize}},
		{"capped", "?page_size=1000", Pagination{Page: 1, PageSize: constants.MaxPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/transactions"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePagination(c))
		})
	}
}

func TestPaginationOffsetAndTotalPages(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Pagination{Page: 3, PageSize: 20}.Offset())

	assert.Equal(t, 1, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
}
