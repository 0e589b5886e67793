package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit inside int32 on every driver
	MaxPage = math.MaxInt32 / MaxLimit
)

// Pagination holds the page window parsed from a list request
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageMeta is the pagination block returned with list responses
type PageMeta struct {
	TotalCount  int64 `json:"totalCount"`
	TotalPages  int64 `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

// ParsePagination reads page and limit query parameters.
// Missing or invalid values fall back to defaults and limit is capped at MaxLimit.
func ParsePagination(c *gin.Context) Pagination {
	return NewPagination(c.Query("page"), c.Query("limit"))
}

// NewPagination normalizes raw page and limit values
func NewPagination(rawPage, rawLimit string) Pagination {
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	limit, err := strconv.Atoi(rawLimit)
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// Meta computes the pagination block for a total row count
func (p Pagination) Meta(total int64) PageMeta {
	return PageMeta{
		TotalCount:  total,
		TotalPages:  TotalPages(total, p.Limit),
		CurrentPage: p.Page,
		Limit:       p.Limit,
	}
}

// TotalPages returns ceil(total/limit)
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 || total <= 0 {
		return 0
	}
	l := int64(limit)
	return (total + l - 1) / l
}
