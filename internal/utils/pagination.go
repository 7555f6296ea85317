package utils

import (
	"strconv" // String conversion

	"github.com/gin-gonic/gin" // Gin web framework
)

// Pagination defaults
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page holds validated pagination parameters
type Page struct {
	Page     int `json:"page"`      // Current page, 1-based
	PageSize int `json:"page_size"` // Items per page
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns the number of pages needed for total rows
func (p Page) TotalPages(total int64) int {
	return (int(total) + p.PageSize - 1) / p.PageSize
}

// ParsePage reads page and page_size from the query string, falling back to defaults on bad input
func ParsePage(c *gin.Context) Page {
	p := Page{Page: DefaultPage, PageSize: DefaultPageSize} // Defaults
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v // Set page if valid
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 && v <= MaxPageSize {
		p.PageSize = v // Set page size within limits
	}
	return p
}
