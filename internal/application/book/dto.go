package book

import (
	"time"

	"github.com/xiebiao/library/internal/domain/book"
)

// BookDetails 图书详情DTO
type BookDetails struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	ISBN            string    `json:"isbn"`
	PublicationYear int       `json:"publication_year"`
	AuthorID        uint      `json:"author_id"`
	AuthorName      string    `json:"author_name"`
	AvailableCopies int       `json:"available_copies"`
	TotalCopies     int       `json:"total_copies"`
	Category        string    `json:"category"`
	Language        string    `json:"language,omitempty"`
	Pages           int       `json:"pages,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	Description     string    `json:"description,omitempty"`
	LoansCount      int64     `json:"loans_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newBookDetails(v *book.View) *BookDetails {
	return &BookDetails{
		ID:              v.ID,
		Title:           v.Title,
		ISBN:            v.ISBN,
		PublicationYear: v.PublicationYear,
		AuthorID:        v.AuthorID,
		AuthorName:      v.AuthorName,
		AvailableCopies: v.AvailableCopies,
		TotalCopies:     v.TotalCopies,
		Category:        string(v.Category),
		Language:        v.Language,
		Pages:           v.Pages,
		Publisher:       v.Publisher,
		Description:     v.Description,
		LoansCount:      v.LoansCount,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func newBookDetailsList(views []*book.View) []*BookDetails {
	items := make([]*BookDetails, len(views))
	for i, v := range views {
		items[i] = newBookDetails(v)
	}
	return items
}

// MovementItem 库存流水DTO
type MovementItem struct {
	ID        uint      `json:"id"`
	LoanID    *uint     `json:"loan_id,omitempty"`
	Kind      string    `json:"kind"`
	Delta     int       `json:"delta"`
	Before    int       `json:"before"`
	After     int       `json:"after"`
	Remark    string    `json:"remark,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
