package book

import (
	"context"
)

// Repository 图书仓储接口
// 由domain层定义，infrastructure层实现；事务通过ctx传递
type Repository interface {
	// Create 创建图书，ISBN重复返回ErrISBNDuplicate
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindViewByID 查找图书并带出作者名与借阅次数
	FindViewByID(ctx context.Context, id uint) (*View, error)

	// FindViewByISBN 按规范化ISBN查找
	FindViewByISBN(ctx context.Context, isbn string) (*View, error)

	// Update 更新图书信息（不含可借数，可借数只能通过UpdateAvailableCopies修改）
	Update(ctx context.Context, book *Book) error

	// Delete 删除图书
	Delete(ctx context.Context, id uint) error

	// Search 分页搜索
	Search(ctx context.Context, params SearchParams) ([]*View, int64, error)

	// ListByLanguage 某种语言的全部图书
	ListByLanguage(ctx context.Context, lang string) ([]*View, error)

	// CountByAuthor 作者名下图书数
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)

	// LockByID 悲观锁查询图书（SELECT ... FOR UPDATE）
	LockByID(ctx context.Context, id uint) (*Book, error)

	// UpdateAvailableCopies 原子修改可借数
	// 条件更新：只有 0 <= available+delta <= total 时才生效，否则：
	// - 图书不存在：ErrBookNotFound
	// - delta<0且会变成负数：ErrBookUnavailable
	// - delta>0且会超过总数：ErrConsistencyViolation
	UpdateAvailableCopies(ctx context.Context, id uint, delta int) error

	// AppendMovement 写入库存流水
	AppendMovement(ctx context.Context, m *CopyMovement) error

	// ListMovements 最近的库存流水，按时间倒序
	ListMovements(ctx context.Context, bookID uint, limit int) ([]*CopyMovement, error)

	// Totals 馆藏汇总
	Totals(ctx context.Context) (*Totals, error)
}

// SearchParams 搜索参数
type SearchParams struct {
	Title         string // 书名包含（不区分大小写）
	AuthorName    string // 作者姓或名包含
	Category      Category
	AvailableOnly bool
	YearExact     *int
	YearMin       *int
	YearMax       *int
	Page          int
	PageSize      int
}

// Totals 馆藏汇总
type Totals struct {
	Books           int64
	TotalCopies     int64
	AvailableCopies int64
}

// Cache 图书详情缓存
// 实现方自行处理缓存故障（记日志并当作未命中），不向业务返回错误
type Cache interface {
	Get(ctx context.Context, id uint) (*View, bool)
	Set(ctx context.Context, view *View)
	Invalidate(ctx context.Context, ids ...uint)
}

// NopCache 不缓存
type NopCache struct{}

func (NopCache) Get(context.Context, uint) (*View, bool) { return nil, false }
func (NopCache) Set(context.Context, *View)              {}
func (NopCache) Invalidate(context.Context, ...uint)     {}
