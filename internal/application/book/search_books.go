package book

import (
	"context"

	"github.com/xiebiao/library/internal/application/shared"
	"github.com/xiebiao/library/internal/domain/book"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// SearchBooksUseCase 图书检索（书名/作者/分类/年份/ISBN/语言）
type SearchBooksUseCase struct {
	bookService book.Service
	pager       shared.Pager
}

// NewSearchBooksUseCase 创建检索用例
func NewSearchBooksUseCase(bookService book.Service, pager shared.Pager) *SearchBooksUseCase {
	return &SearchBooksUseCase{bookService: bookService, pager: pager}
}

// SearchBooksRequest 组合条件检索
type SearchBooksRequest struct {
	Title         string
	AuthorName    string
	Category      string
	AvailableOnly bool
	Page          int
	PageSize      int
}

// Execute 组合条件分页检索，按书名排序
func (uc *SearchBooksUseCase) Execute(ctx context.Context, req SearchBooksRequest) (*shared.Page[*BookDetails], error) {
	page, pageSize := uc.pager.Normalize(req.Page, req.PageSize)
	return uc.search(ctx, book.SearchParams{
		Title:         req.Title,
		AuthorName:    req.AuthorName,
		Category:      book.Category(req.Category),
		AvailableOnly: req.AvailableOnly,
		Page:          page,
		PageSize:      pageSize,
	})
}

// SearchByYearRequest year与year_min/year_max二选一
type SearchByYearRequest struct {
	Year     *int
	YearMin  *int
	YearMax  *int
	Page     int
	PageSize int
}

func (uc *SearchBooksUseCase) ByYear(ctx context.Context, req SearchByYearRequest) (*shared.Page[*BookDetails], error) {
	switch {
	case req.Year == nil && req.YearMin == nil && req.YearMax == nil:
		return nil, apperrors.InvalidParams("需要提供year或year_min/year_max")
	case req.Year != nil && (req.YearMin != nil || req.YearMax != nil):
		return nil, apperrors.InvalidParams("year不能与year_min/year_max同时使用")
	case req.YearMin != nil && req.YearMax != nil && *req.YearMin > *req.YearMax:
		return nil, apperrors.InvalidParams("year_min不能大于year_max")
	}

	page, pageSize := uc.pager.Normalize(req.Page, req.PageSize)
	return uc.search(ctx, book.SearchParams{
		YearExact: req.Year,
		YearMin:   req.YearMin,
		YearMax:   req.YearMax,
		Page:      page,
		PageSize:  pageSize,
	})
}

// ByISBN 规范化后精确查找
func (uc *SearchBooksUseCase) ByISBN(ctx context.Context, isbn string) (*BookDetails, error) {
	v, err := uc.bookService.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	return newBookDetails(v), nil
}

// ByLanguage 某语言的全部图书，为空时返回NotFound
func (uc *SearchBooksUseCase) ByLanguage(ctx context.Context, iso string) ([]*BookDetails, error) {
	views, err := uc.bookService.ListByLanguage(ctx, iso)
	if err != nil {
		return nil, err
	}
	return newBookDetailsList(views), nil
}

func (uc *SearchBooksUseCase) search(ctx context.Context, params book.SearchParams) (*shared.Page[*BookDetails], error) {
	views, total, err := uc.bookService.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &shared.Page[*BookDetails]{
		Items:    newBookDetailsList(views),
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}
