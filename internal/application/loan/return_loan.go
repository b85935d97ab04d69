package loan

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// ReturnLoanUseCase 归还用例
// 同一事务内锁定借阅行与图书行，归还只能成功一次，可借数不会重复增加
type ReturnLoanUseCase struct {
	loanRepo  loan.Repository
	bookRepo  book.Repository
	txManager *rdb.TxManager
	cache     book.Cache
	policy    loan.Policy
	events    loan.EventPublisher
	now       func() time.Time
}

// NewReturnLoanUseCase 创建归还用例
func NewReturnLoanUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	txManager *rdb.TxManager,
	cache book.Cache,
	policy loan.Policy,
	events loan.EventPublisher,
) *ReturnLoanUseCase {
	return &ReturnLoanUseCase{
		loanRepo:  loanRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		cache:     cache,
		policy:    policy,
		events:    events,
		now:       time.Now,
	}
}

// ReturnLoanRequest 归还请求，ReturnDate为空时取当前时间
type ReturnLoanRequest struct {
	LoanID     uint
	ReturnDate *time.Time
	Comments   string
}

// Execute 执行归还，返回的详情中罚金按实际归还时间计算
func (uc *ReturnLoanUseCase) Execute(ctx context.Context, req ReturnLoanRequest) (_ *LoanDetails, err error) {
	ctx, span := tracing.StartSpan(ctx, "loan.return")
	defer span.End()
	span.SetAttributes(attribute.Int64("loan_id", int64(req.LoanID)))
	defer func() {
		if err != nil {
			tracing.RecordError(span, err)
			metrics.RecordLoanFailure(failureReason(err))
		}
	}()

	now := uc.now().UTC()
	var (
		returned *loan.Loan
		title    string
	)
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		l, err := uc.loanRepo.LockByID(txCtx, req.LoanID)
		if err != nil {
			return err
		}
		if err := l.Return(req.ReturnDate, req.Comments, now); err != nil {
			return err
		}

		b, err := uc.bookRepo.LockByID(txCtx, l.BookID)
		if err != nil {
			return err
		}
		before := b.AvailableCopies
		if err := b.ReleaseCopy(); err != nil {
			return err
		}
		if err := uc.bookRepo.UpdateAvailableCopies(txCtx, b.ID, 1); err != nil {
			return err
		}
		if err := uc.loanRepo.Update(txCtx, l); err != nil {
			return err
		}
		if err := uc.bookRepo.AppendMovement(txCtx, book.NewReleaseMovement(b.ID, l.ID, before)); err != nil {
			return err
		}

		returned, title = l, b.Title
		return nil
	})
	if err != nil {
		if errors.Is(err, book.ErrConsistencyViolation) {
			logger.L().Error("归还时库存账本不一致", zap.Uint("loan_id", req.LoanID), zap.Error(err))
		}
		return nil, err
	}

	details := newLoanDetails(returned, title, now, uc.policy)
	uc.cache.Invalidate(ctx, returned.BookID)
	event := loan.NewEvent(loan.EventReturned, returned, now)
	event.Penalty, event.DaysLate = details.Penalty, details.DaysLate
	uc.events.Publish(ctx, event)
	metrics.RecordLoanReturned(details.Penalty)
	span.SetAttributes(
		attribute.Int64("book_id", int64(returned.BookID)),
		attribute.Float64("penalty", details.Penalty),
	)
	logger.L().Info("借阅已归还",
		zap.Uint("loan_id", returned.ID),
		zap.Uint("book_id", returned.BookID),
		zap.Int("days_late", details.DaysLate),
		zap.Float64("penalty", details.Penalty))

	return details, nil
}
