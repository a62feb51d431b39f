package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"podcast-catalog/internal/shared/response"
	"podcast-catalog/internal/shared/utils"
	"podcast-catalog/pkg/cache"
)

// RateLimiter áp quota cố định cho mỗi IP trong một window.
// Counter nằm trên Redis (INCR + EXPIRE); khi Redis lỗi thì fallback
// sang token bucket in-process để API vẫn phục vụ được.
type RateLimiter struct {
	store  cache.Cache
	limit  int
	window time.Duration

	mu       sync.Mutex
	fallback map[string]*visitor
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const maxFallbackVisitors = 10000

func NewRateLimiter(store cache.Cache, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		store:    store,
		limit:    limit,
		window:   window,
		fallback: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Middleware trả về 429 {message} khi vượt quota
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := utils.ExtractClientIP(c)

		allowed, remaining := rl.Allow(c.Request.Context(), ip)

		c.Header("RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, "Too many requests, please try again later.")
			return
		}

		c.Next()
	}
}

// Allow đếm request của ip và trả về (được phép, số request còn lại)
func (rl *RateLimiter) Allow(ctx context.Context, ip string) (bool, int) {
	if rl.store != nil {
		count, err := rl.incr(ctx, ip)
		if err == nil {
			remaining := rl.limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			return int(count) <= rl.limit, remaining
		}
		log.Warn().Err(err).Msg("[RATE_LIMIT] Redis unavailable, using in-memory limiter")
	}

	return rl.allowLocal(ip)
}

func (rl *RateLimiter) incr(ctx context.Context, ip string) (int64, error) {
	key := fmt.Sprintf("ratelimit:%s", ip)

	count, err := rl.store.Increment(ctx, key)
	if err != nil {
		return 0, err
	}

	// request đầu tiên của window đặt TTL; nếu key bị mất TTL thì đặt lại
	if count == 1 {
		if err := rl.store.Expire(ctx, key, rl.window); err != nil {
			return 0, err
		}
	} else if ttl, err := rl.store.TTL(ctx, key); err == nil && ttl < 0 {
		if err := rl.store.Expire(ctx, key, rl.window); err != nil {
			return 0, err
		}
	}

	return count, nil
}

func (rl *RateLimiter) allowLocal(ip string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if len(rl.fallback) >= maxFallbackVisitors {
		for key, v := range rl.fallback {
			if now.Sub(v.lastSeen) > rl.window {
				delete(rl.fallback, key)
			}
		}
	}

	v, ok := rl.fallback[ip]
	if !ok {
		every := rate.Every(rl.window / time.Duration(rl.limit))
		v = &visitor{limiter: rate.NewLimiter(every, rl.limit)}
		rl.fallback[ip] = v
	}
	v.lastSeen = now

	allowed := v.limiter.AllowN(now, 1)
	remaining := int(v.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining
}
