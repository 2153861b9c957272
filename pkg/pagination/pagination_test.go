package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageParamsClamps(t *testing.T) {
	tests := []struct {
		name         string
		page, size   string
		wantPage     int
		wantPageSize int
	}{
		{"defaults on garbage", "x", "y", DefaultPage, DefaultPageSize},
		{"negative page", "-3", "20", DefaultPage, 20},
		{"size capped", "2", "1000", 2, MaxPageSize},
		{"zero size", "1", "0", 1, DefaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPageParams(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPageSize, p.PageSize)
		})
	}
}

func TestNewPageInfo(t *testing.T) {
	info := NewPageInfo(2, 10, 25)
	assert.Equal(t, 3, info.TotalPages)
	assert.True(t, info.HasNext)
	assert.True(t, info.HasPrev)

	last := NewPageInfo(3, 10, 25)
	assert.False(t, last.HasNext)
	assert.Equal(t, 20, (&PageParams{Page: 3, PageSize: 10}).GetOffset())
}
