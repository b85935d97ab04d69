package loan

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/logger"
)

// GetLoanUseCase 借阅详情
type GetLoanUseCase struct {
	loanRepo loan.Repository
	bookRepo book.Repository
	policy   loan.Policy
	now      func() time.Time
}

// NewGetLoanUseCase 创建借阅详情用例
func NewGetLoanUseCase(loanRepo loan.Repository, bookRepo book.Repository, policy loan.Policy) *GetLoanUseCase {
	return &GetLoanUseCase{loanRepo: loanRepo, bookRepo: bookRepo, policy: policy, now: time.Now}
}

func (uc *GetLoanUseCase) Execute(ctx context.Context, loanID uint) (*LoanDetails, error) {
	l, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return newLoanDetails(l, bookTitle(ctx, uc.bookRepo, l.BookID), uc.now().UTC(), uc.policy), nil
}

// bookTitle 查询书名；图书已删除时返回空串
func bookTitle(ctx context.Context, repo book.Repository, bookID uint) string {
	b, err := repo.FindByID(ctx, bookID)
	if err != nil {
		if !errors.Is(err, book.ErrBookNotFound) {
			logger.L().Warn("查询书名失败", zap.Uint("book_id", bookID), zap.Error(err))
		}
		return ""
	}
	return b.Title
}
