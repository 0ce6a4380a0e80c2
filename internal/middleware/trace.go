package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// TraceAttributes 请求 span 上的会话属性；不记录学生姓名与译文
func TraceAttributes(c *gin.Context) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("request.id", c.GetString(RequestIDKey))}
	if sess := CurrentSession(c); sess != nil {
		attrs = append(attrs,
			attribute.String("session.id", sess.ID),
			attribute.String("session.role", string(sess.Role)),
			attribute.String("session.group", sess.Group),
		)
	}
	return attrs
}
