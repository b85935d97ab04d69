package loan

import (
	"context"
	"time"
)

// Repository 借阅仓储接口
// 所有方法从ctx中取事务（如果有），保证与图书库存的修改处于同一事务
type Repository interface {
	// Create 新增借阅
	Create(ctx context.Context, loan *Loan) error

	// FindByID 查询借阅，不存在返回ErrLoanNotFound
	FindByID(ctx context.Context, id uint) (*Loan, error)

	// LockByID SELECT ... FOR UPDATE 锁定借阅行（归还、续借时使用）
	LockByID(ctx context.Context, id uint) (*Loan, error)

	// Update 保存借阅的可变字段（due_date、return_date、status、renewed、comments）
	Update(ctx context.Context, loan *Loan) error

	// CountOpenByBorrower 借阅人未归还（ACTIVE或LATE）的借阅数
	CountOpenByBorrower(ctx context.Context, email string) (int64, error)

	// CountOpenByBook 图书未归还的借阅数（删除图书前检查）
	CountOpenByBook(ctx context.Context, bookID uint) (int64, error)

	// List 条件分页查询，按loan_date倒序
	List(ctx context.Context, filter ListFilter) ([]*View, int64, error)

	// UpdateStatus 只刷新缓存的status列
	UpdateStatus(ctx context.Context, id uint, status Status) error

	// RefreshOpenStatuses 批量把未归还借阅的status列对齐到now的推导结果，返回变更行数
	RefreshOpenStatuses(ctx context.Context, now time.Time) (int64, error)

	// CountByStatus 按推导状态统计（ACTIVE/LATE/RETURNED）
	CountByStatus(ctx context.Context, now time.Time) (map[Status]int64, error)

	// BookStats 单本图书的借阅统计
	BookStats(ctx context.Context, bookID uint, now time.Time) (*BookStats, error)

	// CountByAuthor 作者名下图书的借阅总数
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
}

// ListFilter 借阅列表过滤条件
// Status/ActiveOnly/LateOnly 由仓储翻译成基于return_date/due_date与Now的谓词，
// 不依赖可能过期的status缓存列
type ListFilter struct {
	Status        *Status
	BorrowerEmail string // 不区分大小写的子串匹配
	BookID        *uint
	ActiveOnly    bool // ACTIVE或LATE
	LateOnly      bool
	Now           time.Time
	Page          int
	PageSize      int
}

// View 列表/详情读模型
type View struct {
	Loan
	BookTitle string
}

// BookStats 单本图书借阅统计
type BookStats struct {
	TotalLoans          int64
	TimesLate           int64
	AverageLoanDuration float64 // 已归还借阅的平均借阅天数
}

// Locker 按key串行化（借阅人维度的上限检查与插入）
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// BorrowerKey 借阅人锁的key
func BorrowerKey(email string) string {
	return "borrower:" + NormalizeEmail(email)
}
