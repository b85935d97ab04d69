package dto

import (
	"time"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// DateLayout 日期参数格式
const DateLayout = "2006-01-02"

// CreateAuthorRequest 新建作者
type CreateAuthorRequest struct {
	FirstName   string  `json:"first_name" binding:"required,max=100" example:"Albert"`
	LastName    string  `json:"last_name" binding:"required,max=100" example:"Camus"`
	BirthDate   string  `json:"birth_date" binding:"required,datetime=2006-01-02" example:"1913-11-07"`
	Nationality string  `json:"nationality" binding:"required,iso2" example:"FR"`
	Biography   string  `json:"biography" binding:"max=5000"`
	DeathDate   *string `json:"death_date" binding:"omitempty,datetime=2006-01-02" example:"1960-01-04"`
	Website     string  `json:"website" binding:"omitempty,url,max=300"`
}

// UpdateAuthorRequest 部分更新
type UpdateAuthorRequest struct {
	FirstName   *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName    *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	BirthDate   *string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	Nationality *string `json:"nationality" binding:"omitempty,iso2"`
	Biography   *string `json:"biography" binding:"omitempty,max=5000"`
	DeathDate   *string `json:"death_date" binding:"omitempty,datetime=2006-01-02"`
	Website     *string `json:"website" binding:"omitempty,url,max=300"`
}

// ListAuthorsQuery 作者列表参数
type ListAuthorsQuery struct {
	Search      string `form:"search" binding:"max=100"`
	Nationality string `form:"nationality" binding:"omitempty,iso2"`
	SortBy      string `form:"sort_by" example:"last_name"`
	Order       string `form:"order" binding:"omitempty,oneof=asc desc" example:"asc"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1"`
}

// ParseDate 解析YYYY-MM-DD（UTC）
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, apperrors.InvalidParams("日期格式应为YYYY-MM-DD: %s", s)
	}
	return t, nil
}

// ParseDatePtr nil保持nil
func ParseDatePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
