package common

import "github.com/gin-gonic/gin"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PaginationQuery is the page/page_size pair accepted by list endpoints.
type PaginationQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Normalized returns a copy with defaults applied and the page size capped.
func (pq PaginationQuery) Normalized() PaginationQuery {
	if pq.Page <= 0 {
		pq.Page = DefaultPage
	}
	switch {
	case pq.PageSize <= 0:
		pq.PageSize = DefaultPageSize
	case pq.PageSize > MaxPageSize:
		pq.PageSize = MaxPageSize
	}
	return pq
}

// Limit is the normalized page size.
func (pq PaginationQuery) Limit() int {
	return pq.Normalized().PageSize
}

// Offset is the number of rows preceding the normalized page.
func (pq PaginationQuery) Offset() int {
	n := pq.Normalized()
	return (n.Page - 1) * n.PageSize
}

// GetPaginationParams reads page and page_size from the query string.
// Malformed values fall back to the defaults instead of failing the request.
func GetPaginationParams(c *gin.Context) (page, pageSize int) {
	var pq PaginationQuery
	if err := c.ShouldBindQuery(&pq); err != nil {
		pq = PaginationQuery{}
	}
	pq = pq.Normalized()
	return pq.Page, pq.PageSize
}
