package author

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Service 作者领域服务
type Service interface {
	Create(ctx context.Context, d Draft) (*Author, error)
	Get(ctx context.Context, id uint) (*View, error)
	Update(ctx context.Context, id uint, p Patch) (*Author, error)
	List(ctx context.Context, params ListParams) ([]*Author, int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService 创建作者领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Create(ctx context.Context, d Draft) (*Author, error) {
	a, err := NewAuthor(d, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameAvailable(ctx, a.FirstName, a.LastName); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Get(ctx context.Context, id uint) (*View, error) {
	return s.repo.FindViewByID(ctx, id)
}

// Update 部分更新；姓名变化时重新检查唯一性
func (s *service) Update(ctx context.Context, id uint, p Patch) (*Author, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prevFirst, prevLast := a.FirstName, a.LastName
	if err := a.Apply(p, s.now()); err != nil {
		return nil, err
	}
	if a.NameChanged(prevFirst, prevLast) {
		if err := s.ensureNameAvailable(ctx, a.FirstName, a.LastName); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]*Author, int64, error) {
	switch params.SortBy {
	case "":
		params.SortBy = SortByLastName
	case SortByLastName, SortByFirstName, SortByBirthDate:
	default:
		return nil, 0, apperrors.InvalidParams("sort_by只能是last_name、first_name或birth_date")
	}
	params.Nationality = strings.ToUpper(strings.TrimSpace(params.Nationality))
	return s.repo.List(ctx, params)
}

func (s *service) ensureNameAvailable(ctx context.Context, first, last string) error {
	_, err := s.repo.FindByName(ctx, first, last)
	switch {
	case err == nil:
		return ErrAuthorDuplicate.WithMessage("作者%s %s已存在", first, last)
	case errors.Is(err, ErrAuthorNotFound):
		return nil
	default:
		return err
	}
}
