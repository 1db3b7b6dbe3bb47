package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	resp "gin-gorm-scaffold/internal/transport/http/response"
)

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		abort(c, resp.CodeTooManyRequests, "too many requests")
	}
}

const (
	perIPMaxEntries = 10000
	perIPIdleTTL    = 10 * time.Minute
)

// RateLimitPerIP 每 IP 限速；限流器表有上限，空闲 IP 过期淘汰
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	buckets := expirable.NewLRU[string, *rate.Limiter](perIPMaxEntries, nil, perIPIdleTTL)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		lim, ok := buckets.Get(ip)
		if !ok {
			lim = rate.NewLimiter(rps, burst)
			buckets.Add(ip, lim)
		}
		if lim.Allow() {
			c.Next()
			return
		}
		abort(c, resp.CodeTooManyRequests, "too many requests")
	}
}
