package rdb

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/author"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository 创建作者仓储
func NewAuthorRepository(db *gorm.DB) author.Repository {
	return &authorRepository{db: db}
}

type authorRow struct {
	AuthorModel `gorm:"embedded"`
	BooksCount  int64
}

func (r *authorRepository) Create(ctx context.Context, a *author.Author) error {
	model := toAuthorModel(a)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return author.ErrAuthorDuplicate
		}
		return apperrors.Wrap(err, "创建作者失败")
	}
	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	a.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *authorRepository) FindByID(ctx context.Context, id uint) (*author.Author, error) {
	var model AuthorModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, author.ErrAuthorNotFound
		}
		return nil, apperrors.Wrap(err, "查询作者失败")
	}
	return toAuthorEntity(&model), nil
}

func (r *authorRepository) FindViewByID(ctx context.Context, id uint) (*author.View, error) {
	var rows []authorRow
	err := dbFrom(ctx, r.db).Table("authors").
		Select("authors.*, (SELECT COUNT(*) FROM books WHERE books.author_id = authors.id) AS books_count").
		Where("authors.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询作者失败")
	}
	if len(rows) == 0 {
		return nil, author.ErrAuthorNotFound
	}
	return &author.View{Author: *toAuthorEntity(&rows[0].AuthorModel), BooksCount: rows[0].BooksCount}, nil
}

// FindByName 姓名不区分大小写的精确匹配
func (r *authorRepository) FindByName(ctx context.Context, firstName, lastName string) (*author.Author, error) {
	var model AuthorModel
	err := dbFrom(ctx, r.db).
		Where("LOWER(first_name) = ? AND LOWER(last_name) = ?",
			strings.ToLower(strings.TrimSpace(firstName)), strings.ToLower(strings.TrimSpace(lastName))).
		First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, author.ErrAuthorNotFound
		}
		return nil, apperrors.Wrap(err, "查询作者失败")
	}
	return toAuthorEntity(&model), nil
}

func (r *authorRepository) Update(ctx context.Context, a *author.Author) error {
	result := dbFrom(ctx, r.db).Model(&AuthorModel{ID: a.ID}).
		Updates(map[string]interface{}{
			"first_name":  a.FirstName,
			"last_name":   a.LastName,
			"birth_date":  utc(a.BirthDate),
			"nationality": a.Nationality,
			"biography":   a.Biography,
			"death_date":  utcPtr(a.DeathDate),
			"website":     a.Website,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return author.ErrAuthorDuplicate
		}
		return apperrors.Wrap(result.Error, "更新作者失败")
	}
	if result.RowsAffected == 0 {
		return author.ErrAuthorNotFound
	}
	return nil
}

func (r *authorRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&AuthorModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除作者失败")
	}
	if result.RowsAffected == 0 {
		return author.ErrAuthorNotFound
	}
	return nil
}

func (r *authorRepository) List(ctx context.Context, params author.ListParams) ([]*author.Author, int64, error) {
	query := dbFrom(ctx, r.db).Model(&AuthorModel{})
	if params.Search != "" {
		p := likePattern(params.Search)
		query = query.Where("(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?)", p, p)
	}
	if params.Nationality != "" {
		query = query.Where("nationality = ?", strings.ToUpper(params.Nationality))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询作者总数失败")
	}

	column := string(params.SortBy)
	switch params.SortBy {
	case author.SortByFirstName, author.SortByBirthDate, author.SortByLastName:
	default:
		column = string(author.SortByLastName)
	}
	direction := " ASC"
	if params.Desc {
		direction = " DESC"
	}

	var models []AuthorModel
	err := paginate(query.Order(column+direction).Order("id ASC"), params.Page, params.PageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询作者列表失败")
	}

	authors := make([]*author.Author, len(models))
	for i := range models {
		authors[i] = toAuthorEntity(&models[i])
	}
	return authors, total, nil
}

func toAuthorModel(a *author.Author) *AuthorModel {
	return &AuthorModel{
		ID:          a.ID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		BirthDate:   utc(a.BirthDate),
		Nationality: a.Nationality,
		Biography:   a.Biography,
		DeathDate:   utcPtr(a.DeathDate),
		Website:     a.Website,
	}
}

func toAuthorEntity(m *AuthorModel) *author.Author {
	return &author.Author{
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		BirthDate:   m.BirthDate,
		Nationality: m.Nationality,
		Biography:   m.Biography,
		DeathDate:   m.DeathDate,
		Website:     m.Website,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
