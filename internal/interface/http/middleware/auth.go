package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookstore-checkout/internal/domain/user"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
	"github.com/xiebiao/bookstore-checkout/pkg/jwt"
	"github.com/xiebiao/bookstore-checkout/pkg/response"
)

const (
	keyUserID    = "user_id"
	keyEmail     = "email"
	keyRole      = "role"
	keyToken     = "access_token"
	keyExpiresAt = "token_expires_at"
)

// Blacklist 由redis.SessionStore实现
type Blacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  Blacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist Blacklist) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, blacklist: blacklist}
}

// RequireAuth Authorization: Bearer <token>
// 已登出(在黑名单中)的Token视为失效
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		blocked, err := m.blacklist.IsInBlacklist(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if blocked {
			response.Error(c, apperrors.ErrTokenExpired.WithMessage("Token已失效,请重新登录"))
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(keyUserID, claims.UserID)
		c.Set(keyEmail, claims.Email)
		c.Set(keyRole, claims.Role)
		c.Set(keyToken, token)
		if claims.ExpiresAt != nil {
			c.Set(keyExpiresAt, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

// RequireStaff 必须在RequireAuth之后使用
func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(keyRole) != user.RoleStaff {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID 未登录返回0
func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(keyUserID); ok {
		if uid, ok := v.(uint); ok {
			return uid
		}
	}
	return 0
}

// MustGetUserID 用于已经通过RequireAuth的Handler
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}

// GetAccessToken 当前请求的Token及其过期时间
func GetAccessToken(c *gin.Context) (string, time.Time) {
	var expiresAt time.Time
	if v, ok := c.Get(keyExpiresAt); ok {
		expiresAt, _ = v.(time.Time)
	}
	return c.GetString(keyToken), expiresAt
}
