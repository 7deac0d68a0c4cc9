package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/oksasatya/go-event-platform/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request.
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP only.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath limits by client IP and route, so login attempts do not
// eat into the registration budget.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// atomic INCR, set PEXPIRE on the first hit of a window
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type AllowFunc func(*gin.Context) bool // true bypasses the limit

// RateLimit allows max requests per window and key. With Redis the window
// is shared by every replica; without it, or while Redis is failing, each
// process enforces an equivalent token bucket of its own.
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	local := newLimiterStore(max, window)

	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		key := keyFn(c)
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))

		if rdb != nil {
			count, resetSec, err := redisHit(c, rdb, key, window)
			if err == nil {
				remaining := max - count
				if remaining < 0 {
					remaining = 0
				}
				c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
				c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))
				if count > max {
					tooMany(c, resetSec)
					return
				}
				c.Next()
				return
			}
		}

		if !local.allow(key) {
			tooMany(c, int(window.Seconds()))
			return
		}
		c.Next()
	}
}

func redisHit(c *gin.Context, rdb *redis.Client, key string, window time.Duration) (int, int, error) {
	ctx := c.Request.Context()
	v, err := incrExpireScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return 0, 0, err
	}
	resetSec := 0
	if ttl, err := rdb.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
		resetSec = int((ttl + time.Second - 1) / time.Second)
	}
	return toInt(v), resetSec, nil
}

func tooMany(c *gin.Context, retryAfter int) {
	if retryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(retryAfter))
	}
	response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", response.ErrorBody{Code: "rate_limited"})
}

func toInt(v interface{}) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}

// limiterStore is the in-process fallback: one token bucket per key,
// burst max, refilled at max per window.
type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	max      int
	every    time.Duration
	idle     time.Duration
	swept    time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(max int, window time.Duration) *limiterStore {
	idle := 3 * window
	if idle < 15*time.Minute {
		idle = 15 * time.Minute
	}
	return &limiterStore{
		limiters: make(map[string]*limiterEntry),
		max:      max,
		every:    window / time.Duration(max),
		idle:     idle,
		swept:    time.Now(),
	}
}

func (s *limiterStore) allow(key string) bool {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.swept) > s.idle {
		for k, e := range s.limiters {
			if now.Sub(e.lastSeen) > s.idle {
				delete(s.limiters, k)
			}
		}
		s.swept = now
	}

	e, ok := s.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(s.every), s.max)}
		s.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}
