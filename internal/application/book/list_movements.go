package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

const maxMovements = 100

// ListMovementsUseCase 库存流水查询（对账用）
type ListMovementsUseCase struct {
	bookRepo book.Repository
}

// NewListMovementsUseCase 创建流水查询用例
func NewListMovementsUseCase(bookRepo book.Repository) *ListMovementsUseCase {
	return &ListMovementsUseCase{bookRepo: bookRepo}
}

// Execute 最近limit条流水，limit取值1~100，缺省20
func (uc *ListMovementsUseCase) Execute(ctx context.Context, bookID uint, limit int) ([]*MovementItem, error) {
	if _, err := uc.bookRepo.FindByID(ctx, bookID); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 20
	}
	if limit > maxMovements {
		limit = maxMovements
	}

	moves, err := uc.bookRepo.ListMovements(ctx, bookID, limit)
	if err != nil {
		return nil, err
	}
	items := make([]*MovementItem, len(moves))
	for i, m := range moves {
		items[i] = &MovementItem{
			ID:        m.ID,
			LoanID:    m.LoanID,
			Kind:      string(m.Kind),
			Delta:     m.Delta,
			Before:    m.Before,
			After:     m.After,
			Remark:    m.Remark,
			CreatedAt: m.CreatedAt,
		}
	}
	return items, nil
}
