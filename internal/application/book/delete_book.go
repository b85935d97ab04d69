package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/pkg/logger"
)

// DeleteBookUseCase 删除图书，有未归还借阅时拒绝
// 与借出用例锁同一图书行，检查与删除之间不会插入新借阅
type DeleteBookUseCase struct {
	bookRepo  book.Repository
	loanRepo  loan.Repository
	txManager *rdb.TxManager
	cache     book.Cache
}

// NewDeleteBookUseCase 创建删除用例
func NewDeleteBookUseCase(bookRepo book.Repository, loanRepo loan.Repository, txManager *rdb.TxManager, cache book.Cache) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookRepo: bookRepo, loanRepo: loanRepo, txManager: txManager, cache: cache}
}

func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) error {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.bookRepo.LockByID(txCtx, id); err != nil {
			return err
		}
		open, err := uc.loanRepo.CountOpenByBook(txCtx, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return book.ErrBookHasOpenLoans.WithMessage("图书仍有%d笔未归还的借阅，无法删除", open)
		}
		return uc.bookRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	uc.cache.Invalidate(ctx, id)
	logger.L().Info("图书已删除", zap.Uint("book_id", id))
	return nil
}
