package book

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/author"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/pkg/logger"
)

// UpdateBookUseCase 修改图书
// 锁定图书行后应用补丁；总数变化时可借数同步平移，并写一条ADJUST流水
type UpdateBookUseCase struct {
	bookRepo    book.Repository
	bookService book.Service
	authorRepo  author.Repository
	txManager   *rdb.TxManager
	cache       book.Cache
	now         func() time.Time
}

// NewUpdateBookUseCase 创建修改用例
func NewUpdateBookUseCase(
	bookRepo book.Repository,
	bookService book.Service,
	authorRepo author.Repository,
	txManager *rdb.TxManager,
	cache book.Cache,
) *UpdateBookUseCase {
	return &UpdateBookUseCase{
		bookRepo:    bookRepo,
		bookService: bookService,
		authorRepo:  authorRepo,
		txManager:   txManager,
		cache:       cache,
		now:         time.Now,
	}
}

// UpdateBookRequest 部分更新，nil字段不变；可借数不允许直接修改
type UpdateBookRequest struct {
	ID    uint
	Patch book.Patch
}

func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookDetails, error) {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		b, err := uc.bookRepo.LockByID(txCtx, req.ID)
		if err != nil {
			return err
		}

		prevISBN, prevAuthor, before := b.ISBN, b.AuthorID, b.AvailableCopies
		delta, err := b.Apply(req.Patch, uc.now())
		if err != nil {
			return err
		}

		if b.ISBN != prevISBN {
			if err := uc.bookService.EnsureISBNAvailable(txCtx, b.ISBN, b.ID); err != nil {
				return err
			}
		}
		if b.AuthorID != prevAuthor {
			if _, err := uc.authorRepo.FindByID(txCtx, b.AuthorID); err != nil {
				return err
			}
		}

		if err := uc.bookRepo.Update(txCtx, b); err != nil {
			return err
		}
		if delta == 0 {
			return nil
		}

		if err := uc.bookRepo.UpdateAvailableCopies(txCtx, b.ID, delta); err != nil {
			return err
		}
		remark := fmt.Sprintf("馆藏总数调整为%d", b.TotalCopies)
		if err := uc.bookRepo.AppendMovement(txCtx, book.NewAdjustMovement(b.ID, before, delta, remark)); err != nil {
			return err
		}
		logger.L().Info("馆藏调整",
			zap.Uint("book_id", b.ID),
			zap.Int("delta", delta),
			zap.Int("total_copies", b.TotalCopies))
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, req.ID)

	v, err := uc.bookService.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return newBookDetails(v), nil
}
