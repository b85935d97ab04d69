package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 应用错误
// 设计说明：
// 1. Code是业务错误码，客户端据此区分错误类型
// 2. Message是面向调用方的提示信息
// 3. Err是内部原因，只进日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，预定义错误被WithMessage派生后仍能errors.Is命中
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithMessage 复制错误并替换提示信息（保留错误码）
func (e *AppError) WithMessage(format string, args ...interface{}) *AppError {
	return &AppError{Code: e.Code, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

// WithCause 复制错误并附带内部原因
func (e *AppError) WithCause(err error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Err: err}
}

// HTTPStatus 按错误码段映射HTTP状态码
func (e *AppError) HTTPStatus() int {
	switch {
	case e.Code == ErrCodeForbidden:
		return http.StatusForbidden
	case e.Code >= 40100 && e.Code < 40200:
		return http.StatusUnauthorized
	case e.Code >= 40400 && e.Code < 40500:
		return http.StatusNotFound
	case e.Code >= 40900 && e.Code < 41000:
		return http.StatusUnprocessableEntity
	case e.Code >= 40000 && e.Code < 40100:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（数据库、Redis等），隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 400xx: 业务规则校验失败
// - 401xx: 认证授权
// - 404xx: 资源不存在
// - 409xx: 参数错误
// - 500xx: 服务端错误

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal             = 50000
	ErrCodeDatabaseError        = 50001
	ErrCodeRedisError           = 50002
	ErrCodeConsistencyViolation = 50003 // 库存账本不变量被破坏

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized    = 40100
	ErrCodeInvalidToken    = 40101
	ErrCodeTokenExpired    = 40102
	ErrCodeInvalidPassword = 40103
	ErrCodeForbidden       = 40104

	// 资源错误（40400-40499）
	ErrCodeNotFound       = 40400
	ErrCodeStaffNotFound  = 40401
	ErrCodeBookNotFound   = 40402
	ErrCodeAuthorNotFound = 40404
	ErrCodeLoanNotFound   = 40405

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError       = 40000
	ErrCodeEmailDuplicate      = 40003
	ErrCodeISBNDuplicate       = 40004
	ErrCodeWeakPassword        = 40005
	ErrCodeDuplicateEntry      = 40009
	ErrCodeBookUnavailable     = 40010
	ErrCodeLoanLimitExceeded   = 40011
	ErrCodeLoanAlreadyReturned = 40012
	ErrCodeLoanAlreadyRenewed  = 40013
	ErrCodeBookHasOpenLoans    = 40014
	ErrCodeAuthorHasBooks      = 40015
	ErrCodeAuthorDuplicate     = 40016

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900
	ErrCodeBindError     = 40901
	ErrCodeInvalidISBN   = 40902
)

// =========================================
// 预定义错误
// =========================================

var (
	ErrInternal             = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError        = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError           = New(ErrCodeRedisError, "缓存服务错误")
	ErrConsistencyViolation = New(ErrCodeConsistencyViolation, "库存数据不一致")

	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	ErrNotFound       = New(ErrCodeNotFound, "资源不存在")
	ErrStaffNotFound  = New(ErrCodeStaffNotFound, "馆员账号不存在")
	ErrBookNotFound   = New(ErrCodeBookNotFound, "图书不存在")
	ErrAuthorNotFound = New(ErrCodeAuthorNotFound, "作者不存在")
	ErrLoanNotFound   = New(ErrCodeLoanNotFound, "借阅记录不存在")

	ErrEmailDuplicate      = New(ErrCodeEmailDuplicate, "邮箱已被注册")
	ErrISBNDuplicate       = New(ErrCodeISBNDuplicate, "ISBN号已存在")
	ErrWeakPassword        = New(ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")
	ErrBookUnavailable     = New(ErrCodeBookUnavailable, "图书暂无可借副本")
	ErrLoanLimitExceeded   = New(ErrCodeLoanLimitExceeded, "借阅数量已达上限")
	ErrLoanAlreadyReturned = New(ErrCodeLoanAlreadyReturned, "该借阅已归还")
	ErrLoanAlreadyRenewed  = New(ErrCodeLoanAlreadyRenewed, "该借阅已续借过一次")
	ErrBookHasOpenLoans    = New(ErrCodeBookHasOpenLoans, "图书存在未归还的借阅，无法删除")
	ErrAuthorHasBooks      = New(ErrCodeAuthorHasBooks, "作者名下仍有图书，无法删除")
	ErrAuthorDuplicate     = New(ErrCodeAuthorDuplicate, "同名作者已存在")

	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
	ErrInvalidISBN   = New(ErrCodeInvalidISBN, "ISBN-13格式或校验位错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// InvalidParams 构造参数错误
func InvalidParams(format string, args ...interface{}) *AppError {
	return ErrInvalidParams.WithMessage(format, args...)
}
