package loan

import (
	"context"
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

// RenewLoanUseCase 续借用例
// 到期日顺延一个借期，只能续借一次；不涉及库存
type RenewLoanUseCase struct {
	loanRepo  loan.Repository
	bookRepo  book.Repository
	txManager *rdb.TxManager
	policy    loan.Policy
	events    loan.EventPublisher
	now       func() time.Time
}

// NewRenewLoanUseCase 创建续借用例
func NewRenewLoanUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	txManager *rdb.TxManager,
	policy loan.Policy,
	events loan.EventPublisher,
) *RenewLoanUseCase {
	return &RenewLoanUseCase{
		loanRepo:  loanRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		policy:    policy,
		events:    events,
		now:       time.Now,
	}
}

func (uc *RenewLoanUseCase) Execute(ctx context.Context, loanID uint) (_ *LoanDetails, err error) {
	ctx, span := tracing.StartSpan(ctx, "loan.renew")
	defer span.End()
	span.SetAttributes(attribute.Int64("loan_id", int64(loanID)))
	defer func() {
		if err != nil {
			tracing.RecordError(span, err)
			metrics.RecordLoanFailure(failureReason(err))
		}
	}()

	now := uc.now().UTC()
	var (
		renewed *loan.Loan
		title   string
	)
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		l, err := uc.loanRepo.LockByID(txCtx, loanID)
		if err != nil {
			return err
		}
		if err := l.Renew(now, uc.policy); err != nil {
			return err
		}
		if err := uc.loanRepo.Update(txCtx, l); err != nil {
			return err
		}
		title = bookTitle(txCtx, uc.bookRepo, l.BookID)
		renewed = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.events.Publish(ctx, loan.NewEvent(loan.EventRenewed, renewed, now))
	metrics.RecordLoanRenewed()
	logger.L().Info("借阅已续借",
		zap.Uint("loan_id", renewed.ID),
		zap.Time("due_date", renewed.DueDate),
		zap.String("status", string(renewed.Status)))

	return newLoanDetails(renewed, title, now, uc.policy), nil
}
