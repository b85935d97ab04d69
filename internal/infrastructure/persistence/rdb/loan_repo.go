package rdb

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// loanRepository 借阅仓储实现
// 状态过滤全部翻译成 return_date / due_date 与now的比较，不读status缓存列
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository 创建借阅仓储
func NewLoanRepository(db *gorm.DB) loan.Repository {
	return &loanRepository{db: db}
}

type loanRow struct {
	LoanModel `gorm:"embedded"`
	BookTitle string
}

func (r *loanRepository) Create(ctx context.Context, l *loan.Loan) error {
	model := toLoanModel(l)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建借阅失败")
	}
	l.ID = model.ID
	l.CreatedAt = model.CreatedAt
	l.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *loanRepository) FindByID(ctx context.Context, id uint) (*loan.Loan, error) {
	var model LoanModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅失败")
	}
	return toLoanEntity(&model), nil
}

func (r *loanRepository) LockByID(ctx context.Context, id uint) (*loan.Loan, error) {
	var model LoanModel
	if err := forUpdate(dbFrom(ctx, r.db)).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(err, "锁定借阅失败")
	}
	return toLoanEntity(&model), nil
}

func (r *loanRepository) Update(ctx context.Context, l *loan.Loan) error {
	result := dbFrom(ctx, r.db).Model(&LoanModel{ID: l.ID}).
		Updates(map[string]interface{}{
			"due_date":    utc(l.DueDate),
			"return_date": utcPtr(l.ReturnDate),
			"status":      string(l.Status),
			"renewed":     l.Renewed,
			"comments":    l.Comments,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新借阅失败")
	}
	if result.RowsAffected == 0 {
		return loan.ErrLoanNotFound
	}
	return nil
}

func (r *loanRepository) CountOpenByBorrower(ctx context.Context, email string) (int64, error) {
	var n int64
	err := dbFrom(ctx, r.db).Model(&LoanModel{}).
		Where("borrower_email = ? AND return_date IS NULL", loan.NormalizeEmail(email)).
		Count(&n).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计借阅人借阅数失败")
	}
	return n, nil
}

func (r *loanRepository) CountOpenByBook(ctx context.Context, bookID uint) (int64, error) {
	var n int64
	err := dbFrom(ctx, r.db).Model(&LoanModel{}).
		Where("book_id = ? AND return_date IS NULL", bookID).
		Count(&n).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计图书未还借阅失败")
	}
	return n, nil
}

// List 条件分页查询，按借出时间倒序
func (r *loanRepository) List(ctx context.Context, f loan.ListFilter) ([]*loan.View, int64, error) {
	var total int64
	if err := r.listQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅总数失败")
	}

	var rows []loanRow
	query := r.listQuery(ctx, f).
		Select("loans.*, books.title AS book_title").
		Order("loans.loan_date DESC").
		Order("loans.id DESC")
	if err := paginate(query, f.Page, f.PageSize).Scan(&rows).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询借阅列表失败")
	}

	views := make([]*loan.View, len(rows))
	for i := range rows {
		views[i] = &loan.View{Loan: *toLoanEntity(&rows[i].LoanModel), BookTitle: rows[i].BookTitle}
	}
	return views, total, nil
}

func (r *loanRepository) listQuery(ctx context.Context, f loan.ListFilter) *gorm.DB {
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	query := dbFrom(ctx, r.db).Table("loans").
		Joins("LEFT JOIN books ON books.id = loans.book_id")

	if f.Status != nil {
		query = withStatus(query, *f.Status, now)
	}
	if f.ActiveOnly {
		query = query.Where("loans.return_date IS NULL")
	}
	if f.LateOnly {
		query = withStatus(query, loan.StatusLate, now)
	}
	if f.BorrowerEmail != "" {
		query = query.Where("LOWER(loans.borrower_email) LIKE ?", likePattern(f.BorrowerEmail))
	}
	if f.BookID != nil {
		query = query.Where("loans.book_id = ?", *f.BookID)
	}
	return query
}

// withStatus 推导状态的SQL谓词
func withStatus(query *gorm.DB, st loan.Status, now time.Time) *gorm.DB {
	switch st {
	case loan.StatusReturned:
		return query.Where("loans.return_date IS NOT NULL")
	case loan.StatusLate:
		return query.Where("loans.return_date IS NULL AND loans.due_date < ?", now)
	default:
		return query.Where("loans.return_date IS NULL AND loans.due_date >= ?", now)
	}
}

func (r *loanRepository) UpdateStatus(ctx context.Context, id uint, status loan.Status) error {
	err := dbFrom(ctx, r.db).Model(&LoanModel{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
	if err != nil {
		return apperrors.Wrap(err, "刷新借阅状态失败")
	}
	return nil
}

// RefreshOpenStatuses 批量把status列对齐到推导结果
func (r *loanRepository) RefreshOpenStatuses(ctx context.Context, now time.Time) (int64, error) {
	now = now.UTC()
	db := dbFrom(ctx, r.db)

	var changed int64
	for _, st := range []loan.Status{loan.StatusLate, loan.StatusActive, loan.StatusReturned} {
		result := withStatus(db.Model(&LoanModel{}), st, now).
			Where("loans.status <> ?", string(st)).
			Update("status", string(st))
		if result.Error != nil {
			return changed, apperrors.Wrap(result.Error, "批量刷新借阅状态失败")
		}
		changed += result.RowsAffected
	}
	return changed, nil
}

func (r *loanRepository) CountByStatus(ctx context.Context, now time.Time) (map[loan.Status]int64, error) {
	now = now.UTC()
	counts := make(map[loan.Status]int64, 3)
	for _, st := range []loan.Status{loan.StatusActive, loan.StatusLate, loan.StatusReturned} {
		var n int64
		if err := withStatus(dbFrom(ctx, r.db).Model(&LoanModel{}), st, now).Count(&n).Error; err != nil {
			return nil, apperrors.Wrap(err, "按状态统计借阅失败")
		}
		counts[st] = n
	}
	return counts, nil
}

// BookStats 单本图书借阅统计
// 平均借阅时长在内存中计算，避免各数据库日期函数差异
func (r *loanRepository) BookStats(ctx context.Context, bookID uint, now time.Time) (*loan.BookStats, error) {
	now = now.UTC()
	db := dbFrom(ctx, r.db)
	stats := &loan.BookStats{}

	if err := db.Model(&LoanModel{}).Where("book_id = ?", bookID).Count(&stats.TotalLoans).Error; err != nil {
		return nil, apperrors.Wrap(err, "统计借阅次数失败")
	}

	err := db.Model(&LoanModel{}).
		Where("book_id = ?", bookID).
		Where("((return_date IS NOT NULL AND return_date > due_date) OR (return_date IS NULL AND due_date < ?))", now).
		Count(&stats.TimesLate).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "统计逾期次数失败")
	}

	var returned []LoanModel
	err = db.Select("loan_date", "return_date").
		Where("book_id = ? AND return_date IS NOT NULL", bookID).
		Find(&returned).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询已归还借阅失败")
	}
	if len(returned) > 0 {
		var days float64
		for _, m := range returned {
			days += m.ReturnDate.Sub(m.LoanDate).Hours() / 24
		}
		stats.AverageLoanDuration = roundTo(days/float64(len(returned)), 2)
	}
	return stats, nil
}

func (r *loanRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := dbFrom(ctx, r.db).Model(&LoanModel{}).
		Joins("JOIN books ON books.id = loans.book_id").
		Where("books.author_id = ?", authorID).
		Count(&n).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计作者借阅数失败")
	}
	return n, nil
}

func toLoanModel(l *loan.Loan) *LoanModel {
	return &LoanModel{
		ID:                l.ID,
		BookID:            l.BookID,
		BorrowerName:      l.BorrowerName,
		BorrowerEmail:     l.BorrowerEmail,
		LibraryCardNumber: l.LibraryCardNumber,
		LoanDate:          utc(l.LoanDate),
		DueDate:           utc(l.DueDate),
		ReturnDate:        utcPtr(l.ReturnDate),
		Status:            string(l.Status),
		Renewed:           l.Renewed,
		Comments:          l.Comments,
	}
}

func toLoanEntity(m *LoanModel) *loan.Loan {
	return &loan.Loan{
		ID:                m.ID,
		BookID:            m.BookID,
		BorrowerName:      m.BorrowerName,
		BorrowerEmail:     m.BorrowerEmail,
		LibraryCardNumber: m.LibraryCardNumber,
		LoanDate:          m.LoanDate,
		DueDate:           m.DueDate,
		ReturnDate:        m.ReturnDate,
		Status:            loan.Status(m.Status),
		Renewed:           m.Renewed,
		Comments:          m.Comments,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
