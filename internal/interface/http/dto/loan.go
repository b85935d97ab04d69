package dto

import "time"

// CreateLoanRequest 借出请求
type CreateLoanRequest struct {
	BookID            uint   `json:"book_id" binding:"required,min=1" example:"1"`
	BorrowerName      string `json:"borrower_name" binding:"required,min=2,max=100" example:"Jean Valjean"`
	BorrowerEmail     string `json:"borrower_email" binding:"required,email,max=254" example:"jean@example.com"`
	LibraryCardNumber string `json:"library_card_number" binding:"required,min=5,max=50" example:"CARD-24601"`
	Comments          string `json:"comments" binding:"max=1000" example:""`
}

// ReturnLoanRequest 归还请求，return_date缺省为当前时间（RFC3339）
type ReturnLoanRequest struct {
	ReturnDate *time.Time `json:"return_date" example:"2024-01-20T09:00:00Z"`
	Comments   string     `json:"comments" binding:"max=1000" example:"封面磨损"`
}

// ListLoansQuery 借阅列表查询参数
type ListLoansQuery struct {
	Status        string `form:"status" example:"LATE"`
	BorrowerEmail string `form:"borrower_email" binding:"max=254"`
	BookID        *uint  `form:"book_id" binding:"omitempty,min=1"`
	ActiveOnly    bool   `form:"active_only"`
	LateOnly      bool   `form:"late_only"`
	Page          int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1" example:"20"`
}
