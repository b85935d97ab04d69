package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// SessionStore 馆员会话与Token黑名单
// Key设计：
//   - library:session:{staff_id}  登录信息（Hash）
//   - library:blacklist:{token}   已注销的Access Token
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// SaveSession 保存登录会话，过期时间与Refresh Token一致
func (s *SessionStore) SaveSession(ctx context.Context, staffID uint, data map[string]interface{}, ttl time.Duration) error {
	key := sessionKey(staffID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, data)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.New(apperrors.ErrCodeRedisError, "保存会话失败").WithCause(err)
	}
	return nil
}

// GetSession 读取登录会话，不存在时返回ErrUnauthorized
func (s *SessionStore) GetSession(ctx context.Context, staffID uint) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, sessionKey(staffID)).Result()
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeRedisError, "获取会话失败").WithCause(err)
	}
	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	return result, nil
}

// DeleteSession 删除登录会话（登出）
func (s *SessionStore) DeleteSession(ctx context.Context, staffID uint) error {
	if err := s.client.Del(ctx, sessionKey(staffID)).Err(); err != nil {
		return apperrors.New(apperrors.ErrCodeRedisError, "删除会话失败").WithCause(err)
	}
	return nil
}

// AddToBlacklist 注销Token，ttl取Token剩余有效期
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.New(apperrors.ErrCodeRedisError, "添加Token到黑名单失败").WithCause(err)
	}
	return nil
}

// IsInBlacklist Token是否已注销
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.New(apperrors.ErrCodeRedisError, "检查黑名单失败").WithCause(err)
	}
	return n > 0, nil
}

func sessionKey(staffID uint) string {
	return fmt.Sprintf("library:session:%d", staffID)
}

func blacklistKey(token string) string {
	return "library:blacklist:" + token
}
