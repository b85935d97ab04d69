package author

import (
	"strings"
	"time"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/validator"
)

// Author 作者实体
// 业务规则：
// 1. 姓+名组合唯一
// 2. 出生日期不晚于今天，有卒日时出生早于卒日
// 3. 国籍为ISO 3166两位代码（统一大写）
type Author struct {
	ID          uint
	FirstName   string
	LastName    string
	BirthDate   time.Time
	Nationality string
	Biography   string
	DeathDate   *time.Time
	Website     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FullName 名 姓
func (a *Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// View 作者读模型（带图书数量）
type View struct {
	Author
	BooksCount int64
}

// Draft 新建作者的输入
type Draft struct {
	FirstName   string
	LastName    string
	BirthDate   time.Time
	Nationality string
	Biography   string
	DeathDate   *time.Time
	Website     string
}

// Patch 部分更新
type Patch struct {
	FirstName   *string
	LastName    *string
	BirthDate   *time.Time
	Nationality *string
	Biography   *string
	DeathDate   *time.Time
	Website     *string
}

var (
	ErrAuthorNotFound  = apperrors.ErrAuthorNotFound
	ErrAuthorDuplicate = apperrors.ErrAuthorDuplicate
	ErrAuthorHasBooks  = apperrors.ErrAuthorHasBooks

	ErrInvalidName        = apperrors.InvalidParams("作者姓名不能为空")
	ErrInvalidLifespan    = apperrors.InvalidParams("出生日期不能在未来，且必须早于去世日期")
	ErrInvalidNationality = apperrors.InvalidParams("国籍必须是两位ISO 3166代码")
)

// NewAuthor 校验并构造作者
func NewAuthor(d Draft, now time.Time) (*Author, error) {
	a := &Author{
		FirstName:   strings.TrimSpace(d.FirstName),
		LastName:    strings.TrimSpace(d.LastName),
		BirthDate:   d.BirthDate,
		Nationality: strings.ToUpper(strings.TrimSpace(d.Nationality)),
		Biography:   strings.TrimSpace(d.Biography),
		DeathDate:   d.DeathDate,
		Website:     strings.TrimSpace(d.Website),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.validate(now); err != nil {
		return nil, err
	}
	return a, nil
}

// Apply 应用部分更新（校验合并后的结果）
func (a *Author) Apply(p Patch, now time.Time) error {
	next := *a
	if p.FirstName != nil {
		next.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		next.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.BirthDate != nil {
		next.BirthDate = *p.BirthDate
	}
	if p.Nationality != nil {
		next.Nationality = strings.ToUpper(strings.TrimSpace(*p.Nationality))
	}
	if p.Biography != nil {
		next.Biography = strings.TrimSpace(*p.Biography)
	}
	if p.DeathDate != nil {
		d := *p.DeathDate
		next.DeathDate = &d
	}
	if p.Website != nil {
		next.Website = strings.TrimSpace(*p.Website)
	}

	if err := next.validate(now); err != nil {
		return err
	}
	next.UpdatedAt = now
	*a = next
	return nil
}

// NameChanged 姓名是否与other不同（更新时决定是否重新检查唯一性）
func (a *Author) NameChanged(first, last string) bool {
	return !strings.EqualFold(a.FirstName, first) || !strings.EqualFold(a.LastName, last)
}

func (a *Author) validate(now time.Time) error {
	if a.FirstName == "" || a.LastName == "" {
		return ErrInvalidName
	}
	if !validator.ValidLifespan(a.BirthDate, a.DeathDate, now) {
		return ErrInvalidLifespan
	}
	if !validator.ValidISO2(a.Nationality) {
		return ErrInvalidNationality
	}
	return nil
}
