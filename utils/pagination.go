package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 500
)

// Pagination is read from the page and pageSize query parameters
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
	Pages    int   `json:"totalPages"`
}

// GetPagination parses the paging query parameters, clamping invalid values
func GetPagination(c *gin.Context) Pagination {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(DefaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// Offset is the number of rows to skip for the current page
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Scope applies limit and offset to a query
func (p Pagination) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.PageSize)
}

// WithTotal records the total row count and computes the page count
func (p Pagination) WithTotal(total int64) Pagination {
	p.Total = total
	p.Pages = int(math.Ceil(float64(total) / float64(p.PageSize)))
	return p
}
