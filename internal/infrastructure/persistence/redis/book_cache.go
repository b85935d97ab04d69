package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
)

// BookCache 图书详情缓存（Cache-Aside）
// 1. 读：先查缓存，未命中由调用方查库后Set
// 2. 写：更新数据库后删除缓存
// 3. Redis故障或熔断时当作未命中，不影响主流程
type BookCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

var _ book.Cache = (*BookCache)(nil)

// NewBookCache 创建图书缓存
func NewBookCache(client *redis.Client, ttl time.Duration) *BookCache {
	cb := circuitbreaker.NewCircuitBreaker("redis-book-cache", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
	})
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		logger.L().Warn("熔断器状态变化",
			zap.String("name", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()))
	})
	return &BookCache{client: client, ttl: ttl, breaker: cb}
}

func (c *BookCache) Get(ctx context.Context, id uint) (*book.View, bool) {
	var val []byte
	err := c.execute(func() error {
		var err error
		val, err = c.client.Get(ctx, bookKey(id)).Bytes()
		return err
	})
	switch {
	case errors.Is(err, redis.Nil):
		metrics.RecordCache("miss")
		return nil, false
	case err != nil:
		metrics.RecordCache("error")
		logger.L().Warn("读取图书缓存失败", zap.Uint("book_id", id), zap.Error(err))
		return nil, false
	}

	var v book.View
	if err := json.Unmarshal(val, &v); err != nil {
		metrics.RecordCache("error")
		logger.L().Warn("图书缓存反序列化失败", zap.Uint("book_id", id), zap.Error(err))
		return nil, false
	}
	metrics.RecordCache("hit")
	return &v, true
}

func (c *BookCache) Set(ctx context.Context, v *book.View) {
	val, err := json.Marshal(v)
	if err != nil {
		logger.L().Warn("图书缓存序列化失败", zap.Uint("book_id", v.ID), zap.Error(err))
		return
	}
	err = c.execute(func() error {
		return c.client.Set(ctx, bookKey(v.ID), val, c.ttl).Err()
	})
	if err != nil {
		logger.L().Warn("写入图书缓存失败", zap.Uint("book_id", v.ID), zap.Error(err))
	}
}

// Invalidate 删除缓存，失败只记日志（TTL兜底）
func (c *BookCache) Invalidate(ctx context.Context, ids ...uint) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = bookKey(id)
	}
	err := c.execute(func() error {
		return c.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		logger.L().Warn("删除图书缓存失败", zap.Uints("book_ids", ids), zap.Error(err))
	}
}

// Breaker 暴露熔断器（健康检查展示状态）
func (c *BookCache) Breaker() *circuitbreaker.CircuitBreaker {
	return c.breaker
}

func (c *BookCache) execute(fn func() error) error {
	err := c.breaker.Execute(fn)
	result := "success"
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		result = "rejected"
	case err != nil && !errors.Is(err, redis.Nil):
		result = "failure"
	}
	metrics.RecordBreaker(c.breaker.Name(), result, int(c.breaker.State()))
	return err
}

func bookKey(id uint) string {
	return fmt.Sprintf("library:book:%d", id)
}
