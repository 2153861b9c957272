package pagination

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PageParams paging query parameters
type PageParams struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// PageInfo paging metadata returned with lists
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ParsePageParams reads page / page_size from the query string
func ParsePageParams(c *gin.Context) *PageParams {
	return NewPageParams(c.DefaultQuery("page", "1"), c.DefaultQuery("page_size", "10"))
}

// NewPageParams clamps raw values into a valid page window
func NewPageParams(pageStr, pageSizeStr string) *PageParams {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = DefaultPage
	}

	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil || pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return &PageParams{
		Page:     page,
		PageSize: pageSize,
	}
}

// NewPageInfo computes totals for a page
func NewPageInfo(page, pageSize int, total int64) *PageInfo {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}

	return &PageInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

func (p *PageParams) GetOffset() int {
	return (p.Page - 1) * p.PageSize
}

func (p *PageParams) GetLimit() int {
	return p.PageSize
}

// Scope gorm scope applying offset/limit
func (p *PageParams) Scope() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.GetOffset()).Limit(p.GetLimit())
	}
}
