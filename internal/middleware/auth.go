package middleware

import (
	"context"
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/util"
	"edu_translator_backend/pkg/logger"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const SessionKey = "session"

type AccessGate interface {
	InWindow() bool
	OpenHours() string
	ParseToken(token string) (*util.Claims, error)
}

type SessionToucher interface {
	Touch(ctx context.Context, id string) (*model.Session, error)
}

// AccessWindowMiddleware 开放时段之外拒绝所有请求
func AccessWindowMiddleware(gate AccessGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !gate.InWindow() {
			util.Forbidden(c, "App is closed right now. Open hours: "+gate.OpenHours()+".")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthMiddleware 校验会话令牌并加载会话；会话过期视为未登录
func AuthMiddleware(gate AccessGate, sessions SessionToucher) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		// EventSource 无法设置请求头
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := gate.ParseToken(tokenString)
		if err != nil {
			logger.Log.Debug("token rejected", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		sess, err := sessions.Touch(c.Request.Context(), claims.SessionID)
		if err != nil {
			if errors.Is(err, util.ErrSessionNotFound) {
				util.Unauthorized(c)
			} else {
				util.LogInternalError(c, err)
			}
			c.Abort()
			return
		}

		c.Set(util.ClaimsKey, claims)
		c.Set(SessionKey, sess)
		c.Next()
	}
}

// RoleMiddleware 角色以会话中的为准
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		for _, role := range roles {
			if sess.Role == role {
				c.Next()
				return
			}
		}

		util.Forbidden(c, util.ErrInstructorLocked.Error())
		c.Abort()
	}
}

// CurrentSession 由 AuthMiddleware 放入的会话快照
func CurrentSession(c *gin.Context) *model.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*model.Session)
	return sess
}
