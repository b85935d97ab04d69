package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/response"
)

const (
	ctxStaffID = "staff_id"
	ctxEmail   = "email"
	ctxToken   = "access_token"
)

// AuthMiddleware 馆员JWT认证
// 1. 从Authorization头提取Bearer Token
// 2. 检查黑名单（已注销的Token）
// 3. 校验签名、有效期与Token类型（只接受Access Token）
// 4. 将馆员信息注入Context
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, sessionStore: sessionStore}
}

// RequireAuth 要求登录
//
//	guarded := v1.Group("")
//	guarded.Use(auth.RequireAuth())
//	guarded.POST("/loans", loanHandler.CreateLoan)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.AbortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		blacklisted, err := m.sessionStore.IsInBlacklist(c.Request.Context(), token)
		if err != nil {
			response.AbortWithError(c, apperrors.ErrRedisError.WithCause(err))
			return
		}
		if blacklisted {
			response.AbortWithError(c, apperrors.ErrInvalidToken.WithMessage("Token已注销，请重新登录"))
			return
		}

		claims, err := m.jwtManager.ParseAccessToken(token)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		c.Set(ctxStaffID, claims.StaffID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxToken, token)
		c.Next()
	}
}

// bearerToken 解析 "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetStaffID 当前登录馆员ID，未登录返回0
func GetStaffID(c *gin.Context) uint {
	if v, exists := c.Get(ctxStaffID); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetEmail 当前登录馆员邮箱
func GetEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

// GetToken 当前请求的Access Token（经过RequireAuth之后才有值）
func GetToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}
