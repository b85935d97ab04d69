package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

// GetBookUseCase 图书详情（Cache-Aside）
type GetBookUseCase struct {
	bookService book.Service
	cache       book.Cache
}

// NewGetBookUseCase 创建详情用例
func NewGetBookUseCase(bookService book.Service, cache book.Cache) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService, cache: cache}
}

func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookDetails, error) {
	if v, ok := uc.cache.Get(ctx, id); ok {
		return newBookDetails(v), nil
	}

	v, err := uc.bookService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.cache.Set(ctx, v)
	return newBookDetails(v), nil
}
