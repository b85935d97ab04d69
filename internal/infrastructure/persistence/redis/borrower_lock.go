package redis

import (
	"context"
	_ "embed"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/logger"
)

//go:embed release_lock.lua
var releaseLockLua string

var releaseLockScript = redis.NewScript(releaseLockLua)

const lockRetryInterval = 20 * time.Millisecond

// BorrowerLock 基于Redis的分布式锁（多实例部署时串行化同一借阅人的借阅）
// 加锁：SET key token NX PX ttl，失败则重试直到ctx结束
// 解锁：Lua脚本比较token后删除，避免误删他人的锁
type BorrowerLock struct {
	client *redis.Client
	ttl    time.Duration
}

var _ loan.Locker = (*BorrowerLock)(nil)

// NewBorrowerLock 创建借阅人锁，ttl是锁的最长持有时间
func NewBorrowerLock(client *redis.Client, ttl time.Duration) *BorrowerLock {
	return &BorrowerLock{client: client, ttl: ttl}
}

func (l *BorrowerLock) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := "library:lock:" + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, apperrors.New(apperrors.ErrCodeRedisError, "获取借阅人锁失败").WithCause(err)
		}
		if ok {
			return l.unlockFunc(redisKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (l *BorrowerLock) unlockFunc(key, token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true

		// 请求ctx可能已取消，解锁使用独立的超时
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseLockScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			logger.L().Warn("释放借阅人锁失败", zap.String("key", key), zap.Error(err))
		}
	}
}
