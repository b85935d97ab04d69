package loan

import (
	"errors"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
)

// LoanDetails 借阅详情（状态与罚金按读取时刻重新计算）
type LoanDetails struct {
	ID                uint       `json:"id"`
	BookID            uint       `json:"book_id"`
	BookTitle         string     `json:"book_title"`
	BorrowerName      string     `json:"borrower_name"`
	BorrowerEmail     string     `json:"borrower_email"`
	LibraryCardNumber string     `json:"library_card_number"`
	LoanDate          time.Time  `json:"loan_date"`
	DueDate           time.Time  `json:"due_date"`
	ReturnDate        *time.Time `json:"return_date,omitempty"`
	Status            string     `json:"status"`
	Renewed           bool       `json:"renewed"`
	Comments          string     `json:"comments,omitempty"`
	Penalty           float64    `json:"penalty"`
	DaysLate          int        `json:"days_late"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// newLoanDetails 实体 → 详情DTO；会按now刷新l.Status
func newLoanDetails(l *loan.Loan, bookTitle string, now time.Time, p loan.Policy) *LoanDetails {
	l.Refresh(now)
	penalty, daysLate := l.Penalty(now, p)
	return &LoanDetails{
		ID:                l.ID,
		BookID:            l.BookID,
		BookTitle:         bookTitle,
		BorrowerName:      l.BorrowerName,
		BorrowerEmail:     l.BorrowerEmail,
		LibraryCardNumber: l.LibraryCardNumber,
		LoanDate:          l.LoanDate,
		DueDate:           l.DueDate,
		ReturnDate:        l.ReturnDate,
		Status:            string(l.Status),
		Renewed:           l.Renewed,
		Comments:          l.Comments,
		Penalty:           penalty,
		DaysLate:          daysLate,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// failureReason 指标标签
func failureReason(err error) string {
	switch {
	case errors.Is(err, book.ErrBookNotFound):
		return "book_not_found"
	case errors.Is(err, book.ErrBookUnavailable):
		return "unavailable"
	case errors.Is(err, loan.ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, loan.ErrLoanNotFound):
		return "loan_not_found"
	case errors.Is(err, loan.ErrAlreadyReturned):
		return "already_returned"
	case errors.Is(err, loan.ErrAlreadyRenewed):
		return "already_renewed"
	case errors.Is(err, loan.ErrReturnBeforeLoan):
		return "invalid_input"
	default:
		return "internal"
	}
}
