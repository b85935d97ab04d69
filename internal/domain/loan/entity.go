package loan

import (
	"strings"
	"time"
)

// Status 借阅状态
// 状态流转：
//
//	ACTIVE → LATE（到期未还，随时间自动发生）
//	ACTIVE/LATE → RETURNED（归还，终态）
//	LATE → ACTIVE（续借后新到期日在未来）
//
// 状态由 (return_date, due_date, now) 推导，数据库中的status列只是缓存
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusLate     Status = "LATE"
	StatusReturned Status = "RETURNED"
)

// ParseStatus 解析状态字符串（大小写不敏感）
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusActive, StatusLate, StatusReturned:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

// DeriveStatus 状态推导（纯函数，每个读路径都要调用）
func DeriveStatus(now, dueDate time.Time, returnDate *time.Time) Status {
	switch {
	case returnDate != nil:
		return StatusReturned
	case now.After(dueDate):
		return StatusLate
	default:
		return StatusActive
	}
}

// Loan 借阅聚合根
type Loan struct {
	ID                uint
	BookID            uint
	BorrowerName      string
	BorrowerEmail     string // 统一小写，借阅上限按邮箱统计
	LibraryCardNumber string
	LoanDate          time.Time
	DueDate           time.Time
	ReturnDate        *time.Time // 一旦设置不可修改
	Status            Status     // 缓存值，读取时以Refresh结果为准
	Renewed           bool       // 最多续借一次
	Comments          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NormalizeEmail 借阅人邮箱规范化（去空格、小写）
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewLoan 创建借阅（工厂方法）
// due_date = loan_date + 借期
func NewLoan(bookID uint, borrowerName, borrowerEmail, cardNumber, comments string, now time.Time, p Policy) *Loan {
	return &Loan{
		BookID:            bookID,
		BorrowerName:      strings.TrimSpace(borrowerName),
		BorrowerEmail:     NormalizeEmail(borrowerEmail),
		LibraryCardNumber: strings.TrimSpace(cardNumber),
		LoanDate:          now,
		DueDate:           now.Add(p.LoanDuration),
		Status:            StatusActive,
		Comments:          strings.TrimSpace(comments),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// IsReturned 是否已归还
func (l *Loan) IsReturned() bool {
	return l.ReturnDate != nil
}

// Refresh 按当前时间重新推导状态并写回，返回状态是否发生变化
func (l *Loan) Refresh(now time.Time) bool {
	st := DeriveStatus(now, l.DueDate, l.ReturnDate)
	changed := st != l.Status
	l.Status = st
	return changed
}

// Penalty 当前可观测的罚金与逾期天数
// 已归还按归还时间计算；逾期未还按now计算；正常借阅为0
func (l *Loan) Penalty(now time.Time, p Policy) (float64, int) {
	switch DeriveStatus(now, l.DueDate, l.ReturnDate) {
	case StatusReturned:
		return CalculatePenalty(l.DueDate, *l.ReturnDate, p)
	case StatusLate:
		return CalculatePenalty(l.DueDate, now, p)
	default:
		return 0, 0
	}
}

// Return 归还（领域行为）
// 业务规则：
// 1. 不能重复归还
// 2. 归还时间缺省为now，且不能早于借出时间
// 3. 备注以换行追加到已有备注之后
func (l *Loan) Return(returnDate *time.Time, comments string, now time.Time) error {
	if l.IsReturned() {
		return ErrAlreadyReturned
	}

	at := now
	if returnDate != nil {
		at = *returnDate
	}
	if at.Before(l.LoanDate) {
		return ErrReturnBeforeLoan
	}

	l.ReturnDate = &at
	l.appendComments(comments)
	l.Status = StatusReturned
	l.UpdatedAt = now
	return nil
}

// Renew 续借（领域行为）
// 业务规则：未归还、未续借过；到期日顺延一个借期，状态重新推导
// 逾期的借阅续借后可能恢复为ACTIVE（宽限语义）
func (l *Loan) Renew(now time.Time, p Policy) error {
	if l.IsReturned() {
		return ErrAlreadyReturned
	}
	if l.Renewed {
		return ErrAlreadyRenewed
	}

	l.DueDate = l.DueDate.Add(p.LoanDuration)
	l.Renewed = true
	l.Refresh(now)
	l.UpdatedAt = now
	return nil
}

func (l *Loan) appendComments(comments string) {
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return
	}
	if l.Comments == "" {
		l.Comments = comments
		return
	}
	l.Comments = l.Comments + "\n" + comments
}
