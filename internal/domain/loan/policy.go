package loan

import (
	"math"
	"time"
)

// Policy 借阅策略（由config.LoanConfig构造）
type Policy struct {
	MaxLoansPerUser   int
	LoanDuration      time.Duration
	PenaltyRatePerDay float64
	MaxPenalty        float64
}

// DefaultPolicy 默认策略：5本、14天、每天0.50、封顶50
func DefaultPolicy() Policy {
	return Policy{
		MaxLoansPerUser:   5,
		LoanDuration:      14 * 24 * time.Hour,
		PenaltyRatePerDay: 0.50,
		MaxPenalty:        50.0,
	}
}

// NewPolicy 按天数构造策略
func NewPolicy(maxLoans, durationDays int, ratePerDay, maxPenalty float64) Policy {
	return Policy{
		MaxLoansPerUser:   maxLoans,
		LoanDuration:      time.Duration(durationDays) * 24 * time.Hour,
		PenaltyRatePerDay: ratePerDay,
		MaxPenalty:        maxPenalty,
	}
}

// CalculatePenalty 计算逾期罚金（纯函数）
//
//	effective <= due: (0, 0)
//	否则 daysLate = 完整天数（向下取整）
//	     penalty  = min(daysLate * rate, max)，保留两位小数
//
// effective是实际归还时间；未归还的逾期借阅传入当前时间
func CalculatePenalty(due, effective time.Time, p Policy) (penalty float64, daysLate int) {
	if !effective.After(due) {
		return 0, 0
	}

	daysLate = int(effective.Sub(due) / (24 * time.Hour))
	penalty = math.Min(float64(daysLate)*p.PenaltyRatePerDay, p.MaxPenalty)
	return math.Round(penalty*100) / 100, daysLate
}
