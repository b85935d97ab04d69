package loan

import (
	"context"
	"time"
)

// EventType 借阅生命周期事件
type EventType string

const (
	EventCreated  EventType = "loan.created"
	EventReturned EventType = "loan.returned"
	EventRenewed  EventType = "loan.renewed"
)

// Event 借阅事件，事务提交后发布
type Event struct {
	Type          EventType  `json:"type"`
	LoanID        uint       `json:"loan_id"`
	BookID        uint       `json:"book_id"`
	BorrowerEmail string     `json:"borrower_email"`
	DueDate       time.Time  `json:"due_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	Penalty       float64    `json:"penalty,omitempty"`
	DaysLate      int        `json:"days_late,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// NewEvent 从借阅实体构造事件
func NewEvent(t EventType, l *Loan, occurredAt time.Time) Event {
	return Event{
		Type:          t,
		LoanID:        l.ID,
		BookID:        l.BookID,
		BorrowerEmail: l.BorrowerEmail,
		DueDate:       l.DueDate,
		ReturnDate:    l.ReturnDate,
		OccurredAt:    occurredAt,
	}
}

// EventPublisher 事件发布
// 发布失败不影响已提交的借阅，由实现方记录日志
type EventPublisher interface {
	Publish(ctx context.Context, e Event)
}

// NopPublisher 不发布事件
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
