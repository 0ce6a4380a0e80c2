package middleware

import (
	"edu_translator_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDKey = "request_id"

// 外部传入的 X-Request-ID 超过该长度时重新生成
const requestIDMaxLen = 64

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(RequestIDKey, rid)
		c.Header("X-Request-ID", rid)
		c.Request = c.Request.WithContext(
			logger.WithContext(c.Request.Context(), logger.Log.With(zap.String("request_id", rid))),
		)
		c.Next()
	}
}
