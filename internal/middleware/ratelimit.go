package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"qrportal/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxTrackedClients = 10000

// RateLimit 按客户端IP限流；配置了 redis 时使用分钟级固定窗口计数，多实例共享。
// 被拒绝的请求带 Retry-After 头和 code=rate_limited，与二维码扫码次数用尽的 429 区分开
func RateLimit(redisClient *redis.Client, limitConfig *config.Limit) gin.HandlerFunc {
	if !limitConfig.Enabled || limitConfig.Requests <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	var allow func(c *gin.Context) (bool, time.Duration)
	if redisClient != nil {
		allow = redisWindow(redisClient, limitConfig.Requests)
	} else {
		burst := int(limitConfig.Burst)
		if burst <= 0 {
			burst = int(limitConfig.Requests)
		}
		allow = memoryLimiter(limitConfig.Requests, burst)
	}

	return func(c *gin.Context) {
		for _, path := range limitConfig.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		ok, retryAfter := allow(c)
		if !ok {
			seconds := int64((retryAfter + time.Second - 1) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.FormatInt(seconds, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "请求过于频繁，请稍后再试",
				"code":        "rate_limited",
				"retry_after": seconds,
			})
			return
		}

		c.Next()
	}
}

// redisWindow 返回值中的时长为距离下一个窗口的时间
func redisWindow(rdb *redis.Client, perMinute int64) func(c *gin.Context) (bool, time.Duration) {
	return func(c *gin.Context) (bool, time.Duration) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		now := time.Now().Unix()
		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), now/60)
		pipe := rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, time.Minute)
		if _, err := pipe.Exec(ctx); err != nil {
			// redis 不可用时放行，限流不是关键路径
			zap.S().Warnf("限流计数失败: %v", err)
			return true, 0
		}
		return incr.Val() <= perMinute, time.Duration(60-now%60) * time.Second
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func memoryLimiter(perMinute int64, burst int) func(c *gin.Context) (bool, time.Duration) {
	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)
	interval := time.Minute / time.Duration(perMinute)
	every := rate.Every(interval)

	return func(c *gin.Context) (bool, time.Duration) {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		if len(clients) > maxTrackedClients {
			for ip, cl := range clients {
				if now.Sub(cl.lastSeen) > 10*time.Minute {
					delete(clients, ip)
				}
			}
		}

		ip := c.ClientIP()
		cl, ok := clients[ip]
		if !ok {
			cl = &clientLimiter{limiter: rate.NewLimiter(every, burst)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		// 令牌按固定间隔补充，最多等待一个间隔
		return cl.limiter.Allow(), interval
	}
}
