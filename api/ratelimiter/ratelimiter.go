package ratelimiter

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/powledger/api/common"
	"github.com/nknorg/powledger/api/common/errcode"
	"github.com/nknorg/powledger/util/log"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	limiterExpiration      = 10 * time.Minute
	limiterCleanupInterval = 5 * time.Minute
)

// IPRateLimiter hands out one token bucket per key, usually a client IP.
// Buckets of idle keys expire.
type IPRateLimiter struct {
	sync.Mutex
	limiters *gocache.Cache
	limit    rate.Limit
	burst    int
}

func NewIPRateLimiter(limit float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: gocache.New(limiterExpiration, limiterCleanupInterval),
		limit:    rate.Limit(limit),
		burst:    burst,
	}
}

func (rl *IPRateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.Lock()
	defer rl.Unlock()

	if limiter, ok := rl.limiters.Get(key); ok {
		rl.limiters.SetDefault(key, limiter)
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters.SetDefault(key, limiter)

	return limiter
}

func (rl *IPRateLimiter) Allow(key string) bool {
	return rl.GetLimiter(key).Allow()
}

// Middleware rejects requests over the per IP rate with 429.
func (rl *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			log.WebLog.Warningf("Rate limit exceeded for %s", ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, &common.ErrorResponse{
				Message: "too many requests",
				Error:   errcode.SERVICE_CEILING,
			})
			return
		}
		c.Next()
	}
}
