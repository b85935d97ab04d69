package staff

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/staff"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/logger"
)

// LoginUseCase 馆员登录
// 校验邮箱密码 → 签发Token对 → 保存会话到Redis
type LoginUseCase struct {
	staffService  staff.Service
	jwtManager    *jwt.Manager
	sessionStore  *redis.SessionStore
	sessionExpire time.Duration
}

// NewLoginUseCase 创建登录用例，会话有效期与Refresh Token一致
func NewLoginUseCase(staffService staff.Service, jwtManager *jwt.Manager, sessionStore *redis.SessionStore, sessionExpire time.Duration) *LoginUseCase {
	return &LoginUseCase{
		staffService:  staffService,
		jwtManager:    jwtManager,
		sessionStore:  sessionStore,
		sessionExpire: sessionExpire,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// LoginResponse 登录响应
type LoginResponse struct {
	Staff        StaffInfo `json:"staff"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
}

func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	s, err := uc.staffService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	pair, err := uc.jwtManager.GenerateToken(s.ID, s.Email, s.Name)
	if err != nil {
		return nil, err
	}

	session := map[string]interface{}{
		"staff_id": s.ID,
		"email":    s.Email,
		"name":     s.Name,
		"login_at": time.Now().Unix(),
		"ip":       req.ClientIP,
	}
	// 会话写入失败不影响登录
	if err := uc.sessionStore.SaveSession(ctx, s.ID, session, uc.sessionExpire); err != nil {
		logger.L().Warn("保存会话失败", zap.Uint("staff_id", s.ID), zap.Error(err))
	}

	return &LoginResponse{
		Staff:        StaffInfo{ID: s.ID, Email: s.Email, Name: s.Name},
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// LogoutUseCase 注销：删除会话，Access Token在剩余有效期内进入黑名单
type LogoutUseCase struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewLogoutUseCase 创建注销用例
func NewLogoutUseCase(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *LogoutUseCase {
	return &LogoutUseCase{jwtManager: jwtManager, sessionStore: sessionStore}
}

func (uc *LogoutUseCase) Execute(ctx context.Context, accessToken string) error {
	claims, err := uc.jwtManager.ParseAccessToken(accessToken)
	if err != nil {
		return err
	}
	if err := uc.sessionStore.DeleteSession(ctx, claims.StaffID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, claims.Remaining(time.Now()))
}

// RefreshTokenUseCase 用Refresh Token换发Access Token
type RefreshTokenUseCase struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewRefreshTokenUseCase 创建刷新用例
func NewRefreshTokenUseCase(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{jwtManager: jwtManager, sessionStore: sessionStore}
}

// RefreshResponse 刷新结果
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// Execute 会话已注销时拒绝刷新
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := uc.jwtManager.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if _, err := uc.sessionStore.GetSession(ctx, claims.StaffID); err != nil {
		return nil, err
	}

	access, err := uc.jwtManager.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{AccessToken: access}, nil
}
