package book

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 图书领域错误定义
var (
	ErrBookNotFound         = apperrors.ErrBookNotFound
	ErrISBNDuplicate        = apperrors.ErrISBNDuplicate
	ErrInvalidISBN          = apperrors.ErrInvalidISBN
	ErrBookUnavailable      = apperrors.ErrBookUnavailable
	ErrBookHasOpenLoans     = apperrors.ErrBookHasOpenLoans
	ErrConsistencyViolation = apperrors.ErrConsistencyViolation

	ErrInvalidCopies  = apperrors.InvalidParams("馆藏数量必须大于0，且可借数量在0到总数之间")
	ErrCopiesOnLoan   = apperrors.InvalidParams("馆藏总数不能少于已借出的数量")
	ErrInvalidYear    = apperrors.InvalidParams("出版年份必须在1450到今年之间")
	ErrInvalidTitle   = apperrors.InvalidParams("书名不能为空")
	ErrInvalidLang    = apperrors.InvalidParams("语言必须是两位ISO 639-1代码")
	ErrInvalidCatalog = apperrors.InvalidParams("图书分类不合法")
	ErrInvalidPages   = apperrors.InvalidParams("页数必须大于0")
)
