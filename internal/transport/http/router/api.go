package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"lostfound-api/internal/core/config"
	"lostfound-api/internal/core/server"
	"lostfound-api/internal/transport/http/ez"
	mdw "lostfound-api/internal/transport/http/middleware"
	resp "lostfound-api/internal/transport/http/response"
)

// Limits 对应中间件链上的限流/限并发/超时
type Limits struct {
	RPS           float64
	Burst         int
	PerIPRPS      float64 // 0 表示不按 IP 限速
	PerIPBurst    int
	MaxConcurrent int64
	QueueWait     time.Duration
	MaxBodyBytes  int64
	Timeout       time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		RPS:           200,
		Burst:         400,
		MaxConcurrent: 300,
		QueueWait:     200 * time.Millisecond,
		MaxBodyBytes:  16 << 20,
		Timeout:       10 * time.Second,
	}
}

// LimitsFrom 把配置换算成中间件参数，非正值回落到默认
func LimitsFrom(c config.Limits) Limits {
	lim := DefaultLimits()
	if c.RPS > 0 {
		lim.RPS = c.RPS
	}
	if c.Burst > 0 {
		lim.Burst = c.Burst
	}
	lim.PerIPRPS, lim.PerIPBurst = c.PerIPRPS, c.PerIPBurst
	if c.MaxConcurrent > 0 {
		lim.MaxConcurrent = c.MaxConcurrent
	}
	if c.QueueWaitMs > 0 {
		lim.QueueWait = time.Duration(c.QueueWaitMs) * time.Millisecond
	}
	if c.MaxBodyMB > 0 {
		lim.MaxBodyBytes = c.MaxBodyMB << 20
	}
	if c.TimeoutSec > 0 {
		lim.Timeout = time.Duration(c.TimeoutSec) * time.Second
	}
	return lim
}

func newEngine(l *zap.Logger, lim Limits) *gin.Engine {
	r := server.NewRouter(l)

	// 日志与指标在限流之外，限流、排队与超时产生的响应同样计入
	chain := []gin.HandlerFunc{
		mdw.RequestID(),
		mdw.Metrics(),
		mdw.AccessLog(l),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
	}
	if lim.PerIPRPS > 0 {
		chain = append(chain, mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), max(1, lim.PerIPBurst), 10*time.Minute))
	}
	chain = append(chain,
		mdw.ConcurrencyLimit(lim.MaxConcurrent, lim.QueueWait),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.Timeout),
	)
	r.Use(chain...)

	// 健康检查 + 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) { resp.Abort(c, resp.CodeNotFound, "") })
	return r
}

// NewAPIEngine 用户端：/api/v1 下挂载所有 API 模块
func NewAPIEngine(l *zap.Logger, authn mdw.Authenticator, reg *Registry, lim Limits) *gin.Engine {
	r := newEngine(l, lim)

	api := r.Group("/api/v1")
	reg.MountAPI(ez.New(api, mdw.AuthJWT(authn)))

	return r
}
