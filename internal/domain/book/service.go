package book

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xiebiao/library/pkg/validator"
)

// Draft 新建图书的输入
type Draft struct {
	Title           string
	ISBN            string
	PublicationYear int
	AuthorID        uint
	TotalCopies     int
	AvailableCopies *int // 缺省等于TotalCopies
	Category        string
	Language        string
	Pages           int
	Publisher       string
	Description     string
}

// Patch 部分更新，nil字段保持不变
type Patch struct {
	Title           *string
	ISBN            *string
	PublicationYear *int
	AuthorID        *uint
	TotalCopies     *int
	Category        *string
	Language        *string
	Pages           *int
	Publisher       *string
	Description     *string
}

// NewBook 校验并构造图书（工厂方法）
// 业务规则：
// 1. ISBN-13校验位正确，保存规范化后的13位数字
// 2. 出版年份在1450到今年之间
// 3. 0 <= 可借数 <= 总数，总数 > 0
// 4. 语言为两位代码（统一小写），分类缺省为Autre
func NewBook(d Draft, now time.Time) (*Book, error) {
	b := &Book{
		Title:           strings.TrimSpace(d.Title),
		ISBN:            validator.NormalizeISBN(d.ISBN),
		PublicationYear: d.PublicationYear,
		AuthorID:        d.AuthorID,
		TotalCopies:     d.TotalCopies,
		AvailableCopies: d.TotalCopies,
		Language:        strings.ToLower(strings.TrimSpace(d.Language)),
		Pages:           d.Pages,
		Publisher:       strings.TrimSpace(d.Publisher),
		Description:     strings.TrimSpace(d.Description),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if d.AvailableCopies != nil {
		b.AvailableCopies = *d.AvailableCopies
	}

	category, ok := ParseCategory(d.Category)
	if !ok {
		return nil, ErrInvalidCatalog
	}
	b.Category = category

	if err := b.validate(now); err != nil {
		return nil, err
	}
	if !validator.ValidCopyBounds(b.AvailableCopies, b.TotalCopies) {
		return nil, ErrInvalidCopies
	}
	return b, nil
}

// Apply 应用部分更新，返回可借数的变化量（馆藏调整时非0）
func (b *Book) Apply(p Patch, now time.Time) (int, error) {
	next := *b
	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
	}
	if p.ISBN != nil {
		next.ISBN = validator.NormalizeISBN(*p.ISBN)
	}
	if p.PublicationYear != nil {
		next.PublicationYear = *p.PublicationYear
	}
	if p.AuthorID != nil {
		next.AuthorID = *p.AuthorID
	}
	if p.Category != nil {
		c, ok := ParseCategory(*p.Category)
		if !ok {
			return 0, ErrInvalidCatalog
		}
		next.Category = c
	}
	if p.Language != nil {
		next.Language = strings.ToLower(strings.TrimSpace(*p.Language))
	}
	if p.Pages != nil {
		next.Pages = *p.Pages
	}
	if p.Publisher != nil {
		next.Publisher = strings.TrimSpace(*p.Publisher)
	}
	if p.Description != nil {
		next.Description = strings.TrimSpace(*p.Description)
	}

	if err := next.validate(now); err != nil {
		return 0, err
	}

	delta := 0
	if p.TotalCopies != nil && *p.TotalCopies != next.TotalCopies {
		var err error
		if delta, err = next.ResizeCopies(*p.TotalCopies); err != nil {
			return 0, err
		}
	}

	next.UpdatedAt = now
	*b = next
	return delta, nil
}

func (b *Book) validate(now time.Time) error {
	if b.Title == "" {
		return ErrInvalidTitle
	}
	if !validator.ValidISBN13(b.ISBN) {
		return ErrInvalidISBN
	}
	if !validator.ValidPublicationYear(b.PublicationYear, now) {
		return ErrInvalidYear
	}
	if b.Language != "" && !validator.ValidISO2(b.Language) {
		return ErrInvalidLang
	}
	if b.Pages < 0 {
		return ErrInvalidPages
	}
	return nil
}

// Service 图书领域服务
type Service interface {
	// Publish 校验并创建图书（作者存在性由应用层检查）
	Publish(ctx context.Context, d Draft) (*Book, error)

	// Get 图书详情
	Get(ctx context.Context, id uint) (*View, error)

	// GetByISBN 按ISBN查找（允许带连字符）
	GetByISBN(ctx context.Context, isbn string) (*View, error)

	// Search 分页搜索
	Search(ctx context.Context, params SearchParams) ([]*View, int64, error)

	// ListByLanguage 某种语言的图书，结果为空时返回ErrBookNotFound
	ListByLanguage(ctx context.Context, lang string) ([]*View, error)

	// EnsureISBNAvailable ISBN未被其他图书占用
	EnsureISBNAvailable(ctx context.Context, isbn string, selfID uint) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Publish(ctx context.Context, d Draft) (*Book, error) {
	b, err := NewBook(d, s.now())
	if err != nil {
		return nil, err
	}

	// 先查一次给出友好错误；并发下由唯一索引兜底（仓储转换为ErrISBNDuplicate）
	if err := s.EnsureISBNAvailable(ctx, b.ISBN, 0); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Get(ctx context.Context, id uint) (*View, error) {
	return s.repo.FindViewByID(ctx, id)
}

func (s *service) GetByISBN(ctx context.Context, isbn string) (*View, error) {
	if !validator.ValidISBN13(isbn) {
		return nil, ErrInvalidISBN
	}
	return s.repo.FindViewByISBN(ctx, validator.NormalizeISBN(isbn))
}

func (s *service) Search(ctx context.Context, params SearchParams) ([]*View, int64, error) {
	if params.Category != "" {
		if _, ok := ParseCategory(string(params.Category)); !ok {
			return nil, 0, ErrInvalidCatalog
		}
	}
	return s.repo.Search(ctx, params)
}

func (s *service) ListByLanguage(ctx context.Context, lang string) ([]*View, error) {
	if !validator.ValidISO2(lang) {
		return nil, ErrInvalidLang
	}
	views, err := s.repo.ListByLanguage(ctx, strings.ToLower(lang))
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrBookNotFound.WithMessage("没有语言为%s的图书", strings.ToLower(lang))
	}
	return views, nil
}

func (s *service) EnsureISBNAvailable(ctx context.Context, isbn string, selfID uint) error {
	existing, err := s.repo.FindViewByISBN(ctx, isbn)
	switch {
	case err == nil && existing.ID != selfID:
		return ErrISBNDuplicate
	case err == nil, errors.Is(err, ErrBookNotFound):
		return nil
	default:
		return err
	}
}
