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

// CreateLoanUseCase 借出用例
//
// 并发控制分两层：
//  1. 借阅人锁：同一邮箱的"统计未还数 → 插入"串行执行，防止并发突破借阅上限
//  2. 图书行锁：SELECT ... FOR UPDATE + 条件UPDATE，防止可借数变成负数
//
// 借阅人锁在事务开始前获取，事务提交后释放
type CreateLoanUseCase struct {
	loanRepo  loan.Repository
	bookRepo  book.Repository
	txManager *rdb.TxManager
	locker    loan.Locker
	cache     book.Cache
	policy    loan.Policy
	events    loan.EventPublisher
	now       func() time.Time
}

// NewCreateLoanUseCase 创建借出用例
func NewCreateLoanUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	txManager *rdb.TxManager,
	locker loan.Locker,
	cache book.Cache,
	policy loan.Policy,
	events loan.EventPublisher,
) *CreateLoanUseCase {
	return &CreateLoanUseCase{
		loanRepo:  loanRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		locker:    locker,
		cache:     cache,
		policy:    policy,
		events:    events,
		now:       time.Now,
	}
}

// CreateLoanRequest 借出请求
type CreateLoanRequest struct {
	BookID            uint
	BorrowerName      string
	BorrowerEmail     string
	LibraryCardNumber string
	Comments          string
}

// Execute 执行借出
// 前置条件按顺序检查：图书存在 → 有可借副本 → 借阅人未达上限
func (uc *CreateLoanUseCase) Execute(ctx context.Context, req CreateLoanRequest) (_ *LoanDetails, err error) {
	ctx, span := tracing.StartSpan(ctx, "loan.create")
	defer span.End()
	span.SetAttributes(attribute.Int64("book_id", int64(req.BookID)))
	defer func() {
		if err != nil {
			tracing.RecordError(span, err)
			metrics.RecordLoanFailure(failureReason(err))
		}
	}()

	unlock, err := uc.locker.Lock(ctx, loan.BorrowerKey(req.BorrowerEmail))
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := uc.now().UTC()
	var (
		created *loan.Loan
		title   string
	)
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定图书行
		b, err := uc.bookRepo.LockByID(txCtx, req.BookID)
		if err != nil {
			return err
		}
		if b.AvailableCopies < 1 {
			return book.ErrBookUnavailable
		}

		// 2. 借阅上限（ACTIVE + LATE）
		open, err := uc.loanRepo.CountOpenByBorrower(txCtx, req.BorrowerEmail)
		if err != nil {
			return err
		}
		if open >= int64(uc.policy.MaxLoansPerUser) {
			return loan.ErrLimitExceeded.WithMessage("借阅人%s已有%d本未还，达到上限%d",
				loan.NormalizeEmail(req.BorrowerEmail), open, uc.policy.MaxLoansPerUser)
		}

		// 3. 创建借阅
		l := loan.NewLoan(req.BookID, req.BorrowerName, req.BorrowerEmail, req.LibraryCardNumber, req.Comments, now, uc.policy)
		if err := uc.loanRepo.Create(txCtx, l); err != nil {
			return err
		}

		// 4. 扣减可借数并记流水
		before := b.AvailableCopies
		if err := b.ReserveCopy(); err != nil {
			return err
		}
		if err := uc.bookRepo.UpdateAvailableCopies(txCtx, b.ID, -1); err != nil {
			return err
		}
		if err := uc.bookRepo.AppendMovement(txCtx, book.NewReserveMovement(b.ID, l.ID, before)); err != nil {
			return err
		}

		created, title = l, b.Title
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, req.BookID)
	uc.events.Publish(ctx, loan.NewEvent(loan.EventCreated, created, now))
	metrics.RecordLoanCreated()
	span.SetAttributes(attribute.Int64("loan_id", int64(created.ID)))
	logger.L().Info("借阅创建成功",
		zap.Uint("loan_id", created.ID),
		zap.Uint("book_id", created.BookID),
		zap.String("borrower_email", created.BorrowerEmail),
		zap.Time("due_date", created.DueDate))

	return newLoanDetails(created, title, now, uc.policy), nil
}
