package loan

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 借阅领域错误（全部是可映射到HTTP响应的命名错误，不做内部重试）
var (
	ErrLoanNotFound    = apperrors.ErrLoanNotFound
	ErrLimitExceeded   = apperrors.ErrLoanLimitExceeded
	ErrAlreadyReturned = apperrors.ErrLoanAlreadyReturned
	ErrAlreadyRenewed  = apperrors.ErrLoanAlreadyRenewed

	// ErrReturnBeforeLoan 归还时间早于借出时间
	ErrReturnBeforeLoan = apperrors.InvalidParams("归还时间不能早于借出时间")
	// ErrInvalidStatus 状态过滤参数非法
	ErrInvalidStatus = apperrors.InvalidParams("借阅状态只能是ACTIVE、LATE或RETURNED")
)
