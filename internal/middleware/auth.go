package middleware

import (
	"context"
	"edu_portal_backend/internal/config"
	"edu_portal_backend/internal/model"
	"edu_portal_backend/internal/session"
	"edu_portal_backend/internal/util"
	"edu_portal_backend/pkg/logger"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionLookup 用于确认令牌对应的会话仍然存在（退出登录后令牌失效）
type SessionLookup interface {
	Restore(ctx context.Context, userID string) (*session.Session, error)
}

func ConfigMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	}
}

func AuthMiddleware(sessions SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		// websocket 客户端无法设置请求头
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		cfg := c.MustGet("config").(*config.Config)
		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT parse failed", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if sessions != nil {
			_, err := sessions.Restore(c.Request.Context(), claims.UserID)
			if errors.Is(err, session.ErrNoSession) {
				util.Unauthorized(c)
				c.Abort()
				return
			}
			if err != nil {
				logger.Log.Warn("Session lookup failed, trusting token", zap.String("user_id", claims.UserID), zap.Error(err))
			}
		}

		c.Set("user", claims)
		c.Next()
	}
}

func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		util.Forbidden(c)
		c.Abort()
	}
}
