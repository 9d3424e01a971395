package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	KeyRequestID = "X-Request-ID"

	maxRequestIDLen = 128
)

// 上游 ID 只接受不含空白的可打印 ASCII
func acceptRequestID(rid string) bool {
	if rid == "" || len(rid) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		if b := rid[i]; b <= ' ' || b > '~' {
			return false
		}
	}
	return true
}

// RequestID 透传合法的上游请求 ID，否则生成 uuid，并写回响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(KeyRequestID)
		if !acceptRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Set(KeyRequestID, rid)
		c.Header(KeyRequestID, rid)
		c.Next()
	}
}

// RequestIDFrom 未经过 RequestID 中间件时返回空串
func RequestIDFrom(c *gin.Context) string { return c.GetString(KeyRequestID) }
