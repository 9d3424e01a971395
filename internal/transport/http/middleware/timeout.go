package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	resp "lostfound-api/internal/transport/http/response"
)

// Timeout 给请求 context 加截止时间，d<=0 不设限。
// 到期时若 handler 还没写响应则回 504；超时原因记入 c.Errors。
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if c.Writer.Written() || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}
		_ = c.Error(fmt.Errorf("request exceeded %s: %w", d, ctx.Err()))
		resp.Abort(c, resp.CodeTimeout, resp.MsgTimeout)
	}
}
