// Package messaging 借阅事件发布到消息队列
package messaging

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/mq"
)

// publishTimeout 单条事件的发布超时，避免拖慢已完成的请求
const publishTimeout = 2 * time.Second

// LoanEventPublisher 以事件类型作为routing key发布借阅事件
type LoanEventPublisher struct {
	sender mq.Sender
}

var _ loan.EventPublisher = (*LoanEventPublisher)(nil)

// NewLoanEventPublisher 创建事件发布器
func NewLoanEventPublisher(sender mq.Sender) *LoanEventPublisher {
	return &LoanEventPublisher{sender: sender}
}

// Publish 发布失败只记录日志
func (p *LoanEventPublisher) Publish(ctx context.Context, e loan.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.sender.Publish(ctx, string(e.Type), e); err != nil {
		logger.L().Warn("借阅事件发布失败",
			zap.String("type", string(e.Type)),
			zap.Uint("loan_id", e.LoanID),
			zap.Error(err))
	}
}
