package loan

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/application/shared"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/logger"
)

// ListLoansUseCase 借阅列表
// 过滤按推导状态进行；读取时发现status缓存过期会尽力写回，失败只记日志
type ListLoansUseCase struct {
	loanRepo loan.Repository
	pager    shared.Pager
	policy   loan.Policy
	now      func() time.Time
}

// NewListLoansUseCase 创建借阅列表用例
func NewListLoansUseCase(loanRepo loan.Repository, pager shared.Pager, policy loan.Policy) *ListLoansUseCase {
	return &ListLoansUseCase{loanRepo: loanRepo, pager: pager, policy: policy, now: time.Now}
}

// ListLoansRequest 列表过滤条件
type ListLoansRequest struct {
	Status        string // ACTIVE | LATE | RETURNED，为空不过滤
	BorrowerEmail string
	BookID        *uint
	ActiveOnly    bool
	LateOnly      bool
	Page          int
	PageSize      int
}

func (uc *ListLoansUseCase) Execute(ctx context.Context, req ListLoansRequest) (*shared.Page[*LoanDetails], error) {
	now := uc.now().UTC()
	page, pageSize := uc.pager.Normalize(req.Page, req.PageSize)

	filter := loan.ListFilter{
		BorrowerEmail: req.BorrowerEmail,
		BookID:        req.BookID,
		ActiveOnly:    req.ActiveOnly,
		LateOnly:      req.LateOnly,
		Now:           now,
		Page:          page,
		PageSize:      pageSize,
	}
	if req.Status != "" {
		st, err := loan.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &st
	}

	views, total, err := uc.loanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*LoanDetails, len(views))
	for i, v := range views {
		if v.Refresh(now) {
			if err := uc.loanRepo.UpdateStatus(ctx, v.ID, v.Status); err != nil {
				logger.L().Warn("写回借阅状态失败", zap.Uint("loan_id", v.ID), zap.Error(err))
			}
		}
		items[i] = newLoanDetails(&v.Loan, v.BookTitle, now, uc.policy)
	}

	return &shared.Page[*LoanDetails]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}
