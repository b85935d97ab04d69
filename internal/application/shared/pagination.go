// Package shared 各用例共用的小工具
package shared

import (
	"github.com/xiebiao/library/internal/infrastructure/config"
)

// Pager 分页参数规范化
type Pager struct {
	DefaultPageSize int
	MaxPageSize     int
}

// NewPager 从配置创建
func NewPager(cfg *config.Config) Pager {
	return Pager{
		DefaultPageSize: cfg.Pagination.DefaultPageSize,
		MaxPageSize:     cfg.Pagination.MaxPageSize,
	}
}

// Normalize page<1取1；page_size<1取默认值，超过上限取上限
func (p Pager) Normalize(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = p.DefaultPageSize
	}
	if p.MaxPageSize > 0 && pageSize > p.MaxPageSize {
		pageSize = p.MaxPageSize
	}
	return page, pageSize
}

// Page 分页结果
type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}
