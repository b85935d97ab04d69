package rdb

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/book"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// bookRepository 图书仓储实现
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// bookRow 图书读模型的扫描结构（带作者姓名与借阅次数）
type bookRow struct {
	BookModel       `gorm:"embedded"`
	AuthorFirstName string
	AuthorLastName  string
	LoansCount      int64
}

const bookViewColumns = "books.*, authors.first_name AS author_first_name, authors.last_name AS author_last_name, " +
	"(SELECT COUNT(*) FROM loans WHERE loans.book_id = books.id) AS loans_count"

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) FindViewByID(ctx context.Context, id uint) (*book.View, error) {
	return r.findView(ctx, "books.id = ?", id)
}

func (r *bookRepository) FindViewByISBN(ctx context.Context, isbn string) (*book.View, error) {
	return r.findView(ctx, "books.isbn = ?", isbn)
}

func (r *bookRepository) findView(ctx context.Context, cond string, arg interface{}) (*book.View, error) {
	var rows []bookRow
	err := r.viewQuery(ctx).
		Select(bookViewColumns).
		Where(cond, arg).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	if len(rows) == 0 {
		return nil, book.ErrBookNotFound
	}
	return toBookView(&rows[0]), nil
}

// Update 更新目录字段；available_copies不在此处修改
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	model.UpdatedAt = time.Now().UTC()

	result := dbFrom(ctx, r.db).Model(&BookModel{ID: b.ID}).
		Select("title", "isbn", "publication_year", "author_id", "total_copies",
			"category", "language", "pages", "publisher", "description", "updated_at").
		Updates(model)
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(result.Error, "更新图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	b.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// Search 分页搜索，按书名排序
func (r *bookRepository) Search(ctx context.Context, params book.SearchParams) ([]*book.View, int64, error) {
	var total int64
	if err := r.searchQuery(ctx, params).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	var rows []bookRow
	query := r.searchQuery(ctx, params).
		Select(bookViewColumns).
		Order("books.title ASC").
		Order("books.id ASC")
	if err := paginate(query, params.Page, params.PageSize).Scan(&rows).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	return toBookViews(rows), total, nil
}

func (r *bookRepository) searchQuery(ctx context.Context, params book.SearchParams) *gorm.DB {
	query := r.viewQuery(ctx)

	if params.Title != "" {
		query = query.Where("LOWER(books.title) LIKE ?", likePattern(params.Title))
	}
	if params.AuthorName != "" {
		p := likePattern(params.AuthorName)
		query = query.Where("(LOWER(authors.first_name) LIKE ? OR LOWER(authors.last_name) LIKE ?)", p, p)
	}
	if params.Category != "" {
		query = query.Where("books.category = ?", string(params.Category))
	}
	if params.AvailableOnly {
		query = query.Where("books.available_copies > 0")
	}
	if params.YearExact != nil {
		query = query.Where("books.publication_year = ?", *params.YearExact)
	}
	if params.YearMin != nil {
		query = query.Where("books.publication_year >= ?", *params.YearMin)
	}
	if params.YearMax != nil {
		query = query.Where("books.publication_year <= ?", *params.YearMax)
	}
	return query
}

func (r *bookRepository) ListByLanguage(ctx context.Context, lang string) ([]*book.View, error) {
	var rows []bookRow
	err := r.viewQuery(ctx).
		Select(bookViewColumns).
		Where("books.language = ?", strings.ToLower(lang)).
		Order("books.title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "按语言查询图书失败")
	}
	return toBookViews(rows), nil
}

func (r *bookRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	if err := dbFrom(ctx, r.db).Model(&BookModel{}).Where("author_id = ?", authorID).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计作者图书失败")
	}
	return n, nil
}

// LockByID 悲观锁查询图书，必须在事务中调用
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := forUpdate(dbFrom(ctx, r.db)).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}
	return toBookEntity(&model), nil
}

// UpdateAvailableCopies 条件更新可借数
// UPDATE books SET available_copies = available_copies + ?
// WHERE id = ? AND available_copies + ? >= 0 AND available_copies + ? <= total_copies
func (r *bookRepository) UpdateAvailableCopies(ctx context.Context, id uint, delta int) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("available_copies + ? >= 0", delta).
		Where("available_copies + ? <= total_copies", delta).
		Updates(map[string]interface{}{
			"available_copies": gorm.Expr("available_copies + ?", delta),
			"updated_at":       time.Now().UTC(),
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新可借数量失败")
	}

	if result.RowsAffected == 0 {
		// 图书不存在或越界，再查一次确定原因
		var model BookModel
		if err := db.First(&model, id).Error; err != nil {
			if isNotFound(err) {
				return book.ErrBookNotFound
			}
			return apperrors.Wrap(err, "查询图书失败")
		}
		if delta < 0 {
			return book.ErrBookUnavailable
		}
		return book.ErrConsistencyViolation
	}
	return nil
}

func (r *bookRepository) AppendMovement(ctx context.Context, m *book.CopyMovement) error {
	model := &CopyMovementModel{
		BookID:    m.BookID,
		LoanID:    m.LoanID,
		Kind:      string(m.Kind),
		Delta:     m.Delta,
		Before:    m.Before,
		After:     m.After,
		Remark:    m.Remark,
		CreatedAt: utc(m.CreatedAt),
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入库存流水失败")
	}
	m.ID = model.ID
	return nil
}

func (r *bookRepository) ListMovements(ctx context.Context, bookID uint, limit int) ([]*book.CopyMovement, error) {
	var models []CopyMovementModel
	query := dbFrom(ctx, r.db).Where("book_id = ?", bookID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询库存流水失败")
	}

	out := make([]*book.CopyMovement, len(models))
	for i := range models {
		m := &models[i]
		out[i] = &book.CopyMovement{
			ID:        m.ID,
			BookID:    m.BookID,
			LoanID:    m.LoanID,
			Kind:      book.MovementKind(m.Kind),
			Delta:     m.Delta,
			Before:    m.Before,
			After:     m.After,
			Remark:    m.Remark,
			CreatedAt: m.CreatedAt,
		}
	}
	return out, nil
}

func (r *bookRepository) Totals(ctx context.Context) (*book.Totals, error) {
	var t book.Totals
	err := dbFrom(ctx, r.db).Model(&BookModel{}).
		Select("COUNT(*) AS books, COALESCE(SUM(total_copies), 0) AS total_copies, " +
			"COALESCE(SUM(available_copies), 0) AS available_copies").
		Scan(&t).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "统计馆藏失败")
	}
	return &t, nil
}

func (r *bookRepository) viewQuery(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db).Table("books").
		Joins("LEFT JOIN authors ON authors.id = books.author_id")
}

// =========================================
// 模型转换
// =========================================

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:              b.ID,
		Title:           b.Title,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		AuthorID:        b.AuthorID,
		AvailableCopies: b.AvailableCopies,
		TotalCopies:     b.TotalCopies,
		Category:        string(b.Category),
		Language:        b.Language,
		Pages:           b.Pages,
		Publisher:       b.Publisher,
		Description:     b.Description,
	}
}

func toBookEntity(m *BookModel) *book.Book {
	return &book.Book{
		ID:              m.ID,
		Title:           m.Title,
		ISBN:            m.ISBN,
		PublicationYear: m.PublicationYear,
		AuthorID:        m.AuthorID,
		AvailableCopies: m.AvailableCopies,
		TotalCopies:     m.TotalCopies,
		Category:        book.Category(m.Category),
		Language:        m.Language,
		Pages:           m.Pages,
		Publisher:       m.Publisher,
		Description:     m.Description,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toBookView(row *bookRow) *book.View {
	return &book.View{
		Book:       *toBookEntity(&row.BookModel),
		AuthorName: strings.TrimSpace(row.AuthorFirstName + " " + row.AuthorLastName),
		LoansCount: row.LoansCount,
	}
}

func toBookViews(rows []bookRow) []*book.View {
	views := make([]*book.View, len(rows))
	for i := range rows {
		views[i] = toBookView(&rows[i])
	}
	return views
}
