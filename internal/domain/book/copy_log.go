package book

import (
	"fmt"
	"time"
)

// MovementKind 库存变动类型
type MovementKind string

const (
	MovementReserve MovementKind = "RESERVE" // 借出
	MovementRelease MovementKind = "RELEASE" // 归还
	MovementAdjust  MovementKind = "ADJUST"  // 馆藏调整
)

// CopyMovement 库存变动流水（只追加）
// 与可借数的修改在同一事务中写入，用于审计与对账：
// 任意时刻 Before + Delta == After
type CopyMovement struct {
	ID        uint
	BookID    uint
	LoanID    *uint
	Kind      MovementKind
	Delta     int
	Before    int
	After     int
	Remark    string
	CreatedAt time.Time
}

// NewReserveMovement 借出流水，before为扣减前的可借数
func NewReserveMovement(bookID, loanID uint, before int) *CopyMovement {
	return &CopyMovement{
		BookID:    bookID,
		LoanID:    &loanID,
		Kind:      MovementReserve,
		Delta:     -1,
		Before:    before,
		After:     before - 1,
		Remark:    fmt.Sprintf("借阅#%d借出", loanID),
		CreatedAt: time.Now(),
	}
}

// NewReleaseMovement 归还流水，before为归还前的可借数
func NewReleaseMovement(bookID, loanID uint, before int) *CopyMovement {
	return &CopyMovement{
		BookID:    bookID,
		LoanID:    &loanID,
		Kind:      MovementRelease,
		Delta:     1,
		Before:    before,
		After:     before + 1,
		Remark:    fmt.Sprintf("借阅#%d归还", loanID),
		CreatedAt: time.Now(),
	}
}

// NewAdjustMovement 馆藏调整流水
func NewAdjustMovement(bookID uint, before, delta int, remark string) *CopyMovement {
	return &CopyMovement{
		BookID:    bookID,
		Kind:      MovementAdjust,
		Delta:     delta,
		Before:    before,
		After:     before + delta,
		Remark:    remark,
		CreatedAt: time.Now(),
	}
}
