package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "lostfound-api/internal/transport/http/response"
)

// ConcurrencyLimit 限制同时在处理的请求数（保护 DB 下游）。
// 名额用完时最多排队 wait，仍拿不到则 503 + Retry-After。
func ConcurrencyLimit(max int64, wait time.Duration) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) && !acquireWithin(c.Request.Context(), sem, wait) {
			c.Header("Retry-After", "1")
			resp.Abort(c, resp.CodeServiceUnavailable, "Server is busy, please retry later")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}

func acquireWithin(ctx context.Context, sem *semaphore.Weighted, wait time.Duration) bool {
	if wait <= 0 {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	return sem.Acquire(ctx, 1) == nil
}
