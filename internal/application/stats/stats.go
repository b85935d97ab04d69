// Package stats 馆藏与借阅统计
package stats

import (
	"context"
	"math"
	"time"

	"github.com/xiebiao/library/internal/domain/author"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
)

// LibraryStats 全馆统计
type LibraryStats struct {
	TotalBooks    int64   `json:"total_books"`
	TotalCopies   int64   `json:"total_copies"`
	ActiveLoans   int64   `json:"active_loans"`
	LateLoans     int64   `json:"late_loans"`
	OccupancyRate float64 `json:"occupancy_rate"` // 借出副本 / 总副本
}

// BookStats 单本图书统计
type BookStats struct {
	BookID              uint    `json:"book_id"`
	Title               string  `json:"title"`
	TotalLoans          int64   `json:"total_loans"`
	TimesLate           int64   `json:"times_late"`
	AverageLoanDuration float64 `json:"average_loan_duration"` // 天
}

// AuthorStats 作者统计
type AuthorStats struct {
	AuthorID   uint   `json:"author_id"`
	FullName   string `json:"full_name"`
	TotalBooks int64  `json:"total_books"`
	TotalLoans int64  `json:"total_loans"`
}

// StatsUseCase 统计查询（只读，不加锁）
// 借阅状态按查询时刻推导，不读status缓存列
type StatsUseCase struct {
	bookRepo   book.Repository
	loanRepo   loan.Repository
	authorRepo author.Repository
	now        func() time.Time
}

// NewStatsUseCase 创建统计用例
func NewStatsUseCase(bookRepo book.Repository, loanRepo loan.Repository, authorRepo author.Repository) *StatsUseCase {
	return &StatsUseCase{bookRepo: bookRepo, loanRepo: loanRepo, authorRepo: authorRepo, now: time.Now}
}

func (uc *StatsUseCase) Library(ctx context.Context) (*LibraryStats, error) {
	totals, err := uc.bookRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := uc.loanRepo.CountByStatus(ctx, uc.now())
	if err != nil {
		return nil, err
	}

	return &LibraryStats{
		TotalBooks:    totals.Books,
		TotalCopies:   totals.TotalCopies,
		ActiveLoans:   counts[loan.StatusActive],
		LateLoans:     counts[loan.StatusLate],
		OccupancyRate: occupancy(totals.TotalCopies, totals.AvailableCopies),
	}, nil
}

func (uc *StatsUseCase) Book(ctx context.Context, bookID uint) (*BookStats, error) {
	b, err := uc.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	s, err := uc.loanRepo.BookStats(ctx, bookID, uc.now())
	if err != nil {
		return nil, err
	}
	return &BookStats{
		BookID:              b.ID,
		Title:               b.Title,
		TotalLoans:          s.TotalLoans,
		TimesLate:           s.TimesLate,
		AverageLoanDuration: s.AverageLoanDuration,
	}, nil
}

func (uc *StatsUseCase) Author(ctx context.Context, authorID uint) (*AuthorStats, error) {
	a, err := uc.authorRepo.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	books, err := uc.bookRepo.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	loans, err := uc.loanRepo.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	return &AuthorStats{AuthorID: a.ID, FullName: a.FullName(), TotalBooks: books, TotalLoans: loans}, nil
}

// occupancy 没有馆藏时为0，保留4位小数
func occupancy(total, available int64) float64 {
	if total <= 0 {
		return 0
	}
	rate := float64(total-available) / float64(total)
	return math.Round(rate*10000) / 10000
}
