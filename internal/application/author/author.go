package author

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/application/shared"
	"github.com/xiebiao/library/internal/domain/author"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/logger"
)

// AuthorDetails 作者DTO
type AuthorDetails struct {
	ID          uint       `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	BirthDate   time.Time  `json:"birth_date"`
	DeathDate   *time.Time `json:"death_date,omitempty"`
	Nationality string     `json:"nationality"`
	Biography   string     `json:"biography,omitempty"`
	Website     string     `json:"website,omitempty"`
	BooksCount  *int64     `json:"books_count,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newAuthorDetails(a *author.Author) *AuthorDetails {
	return &AuthorDetails{
		ID:          a.ID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		FullName:    a.FullName(),
		BirthDate:   a.BirthDate,
		DeathDate:   a.DeathDate,
		Nationality: a.Nationality,
		Biography:   a.Biography,
		Website:     a.Website,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AuthorUseCase 作者管理（增删改查）
// 作者的规则都在领域服务里，这里只做编排与删除前的关联检查
type AuthorUseCase struct {
	service  author.Service
	repo     author.Repository
	bookRepo book.Repository
	pager    shared.Pager
}

// NewAuthorUseCase 创建作者用例
func NewAuthorUseCase(service author.Service, repo author.Repository, bookRepo book.Repository, pager shared.Pager) *AuthorUseCase {
	return &AuthorUseCase{service: service, repo: repo, bookRepo: bookRepo, pager: pager}
}

func (uc *AuthorUseCase) Create(ctx context.Context, d author.Draft) (*AuthorDetails, error) {
	a, err := uc.service.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	logger.L().Info("作者已创建", zap.Uint("author_id", a.ID), zap.String("name", a.FullName()))
	return newAuthorDetails(a), nil
}

// Get 带图书数量
func (uc *AuthorUseCase) Get(ctx context.Context, id uint) (*AuthorDetails, error) {
	v, err := uc.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d := newAuthorDetails(&v.Author)
	d.BooksCount = &v.BooksCount
	return d, nil
}

func (uc *AuthorUseCase) Update(ctx context.Context, id uint, p author.Patch) (*AuthorDetails, error) {
	a, err := uc.service.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	return newAuthorDetails(a), nil
}

// Delete 名下仍有图书时拒绝
func (uc *AuthorUseCase) Delete(ctx context.Context, id uint) error {
	if _, err := uc.repo.FindByID(ctx, id); err != nil {
		return err
	}
	n, err := uc.bookRepo.CountByAuthor(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return author.ErrAuthorHasBooks.WithMessage("作者名下仍有%d本图书，无法删除", n)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.L().Info("作者已删除", zap.Uint("author_id", id))
	return nil
}

// ListAuthorsRequest 列表参数
type ListAuthorsRequest struct {
	Search      string
	Nationality string
	SortBy      string
	Order       string // asc | desc
	Page        int
	PageSize    int
}

func (uc *AuthorUseCase) List(ctx context.Context, req ListAuthorsRequest) (*shared.Page[*AuthorDetails], error) {
	page, pageSize := uc.pager.Normalize(req.Page, req.PageSize)
	authors, total, err := uc.service.List(ctx, author.ListParams{
		Search:      req.Search,
		Nationality: req.Nationality,
		SortBy:      author.SortField(req.SortBy),
		Desc:        req.Order == "desc",
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]*AuthorDetails, len(authors))
	for i, a := range authors {
		items[i] = newAuthorDetails(a)
	}
	return &shared.Page[*AuthorDetails]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}
