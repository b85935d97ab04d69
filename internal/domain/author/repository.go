package author

import (
	"context"
)

// Repository 作者仓储接口
type Repository interface {
	Create(ctx context.Context, a *Author) error
	FindByID(ctx context.Context, id uint) (*Author, error)
	FindViewByID(ctx context.Context, id uint) (*View, error)
	// FindByName 姓名精确匹配（不区分大小写），不存在返回ErrAuthorNotFound
	FindByName(ctx context.Context, firstName, lastName string) (*Author, error)
	Update(ctx context.Context, a *Author) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params ListParams) ([]*Author, int64, error)
}

// SortField 排序字段
type SortField string

const (
	SortByLastName  SortField = "last_name"
	SortByFirstName SortField = "first_name"
	SortByBirthDate SortField = "birth_date"
)

// ListParams 列表参数
type ListParams struct {
	Search      string // 姓或名包含
	Nationality string
	SortBy      SortField
	Desc        bool
	Page        int
	PageSize    int
}
