package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/author"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/logger"
)

// PublishBookUseCase 图书入库用例
// 应用层负责编排：先确认作者存在，再交给领域服务校验并落库
type PublishBookUseCase struct {
	bookService book.Service
	authorRepo  author.Repository
}

// NewPublishBookUseCase 创建入库用例
func NewPublishBookUseCase(bookService book.Service, authorRepo author.Repository) *PublishBookUseCase {
	return &PublishBookUseCase{
		bookService: bookService,
		authorRepo:  authorRepo,
	}
}

// PublishBookRequest 入库请求
type PublishBookRequest struct {
	Title           string
	ISBN            string // 允许带连字符
	PublicationYear int
	AuthorID        uint
	TotalCopies     int
	AvailableCopies *int // 缺省等于TotalCopies
	Category        string
	Language        string
	Pages           int
	Publisher       string
	Description     string
}

func (uc *PublishBookUseCase) Execute(ctx context.Context, req PublishBookRequest) (*BookDetails, error) {
	a, err := uc.authorRepo.FindByID(ctx, req.AuthorID)
	if err != nil {
		return nil, err
	}

	b, err := uc.bookService.Publish(ctx, book.Draft{
		Title:           req.Title,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		AuthorID:        req.AuthorID,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.AvailableCopies,
		Category:        req.Category,
		Language:        req.Language,
		Pages:           req.Pages,
		Publisher:       req.Publisher,
		Description:     req.Description,
	})
	if err != nil {
		return nil, err
	}

	logger.L().Info("图书入库",
		zap.Uint("book_id", b.ID),
		zap.String("isbn", b.ISBN),
		zap.Int("total_copies", b.TotalCopies))

	return newBookDetails(&book.View{Book: *b, AuthorName: a.FullName()}), nil
}
