package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc maps a request onto the bucket it draws tokens from.
type keyFunc func(*gin.Context) string

// KeyByUserOrIP buckets identified viewers by user id and anonymous ones by
// client IP. Writes (likes, comments, progress) draw from a separate bucket
// so a client polling the catalog cannot starve its own engagement calls.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		class := "r"
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			class = "w"
		}
		if id, ok := UserIDFrom(c); ok {
			return class + ":user:" + strconv.FormatInt(id, 10)
		}
		return class + ":ip:" + c.ClientIP()
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local token-bucket limiter with one bucket per key.
// Idle buckets are swept at most once per sweepEvery. Safe for concurrent use.
type RateLimiter struct {
	rps    rate.Limit
	burst  int
	keyFn  keyFunc
	exempt map[string]struct{}

	mu         sync.Mutex
	buckets    map[string]*bucket
	idleTTL    time.Duration
	sweepEvery time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

// NewRateLimiter builds a limiter refilling rps tokens per second up to burst
// (coerced to at least 1). Requests for the exempt paths are never limited;
// pass health probes and the WebSocket endpoint here.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc, exempt ...string) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	ex := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		ex[p] = struct{}{}
	}
	return &RateLimiter{
		rps:        rate.Limit(rps),
		burst:      burst,
		keyFn:      keyFn,
		exempt:     ex,
		buckets:    make(map[string]*bucket),
		idleTTL:    10 * time.Minute,
		sweepEvery: time.Minute,
		lastSweep:  time.Now(),
		now:        time.Now,
	}
}

// limiterFor returns the bucket for key, sweeping idle buckets first so a
// stale entry is dropped rather than refreshed.
func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.sweepEvery {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.idleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// IsRateBypass reports whether IdempotencyValidator flagged this request as
// a replay of a completed comment post.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler enforces the limit. Rejected requests get 429 with the standard
// error envelope and a Retry-After of the whole seconds until a token frees.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := rl.exempt[c.Request.URL.Path]; ok || IsRateBypass(c) {
			c.Next()
			return
		}

		lim := rl.limiterFor(rl.keyFn(c))
		res := lim.ReserveN(rl.now(), 1)
		if !res.OK() {
			rl.reject(c, time.Second)
			return
		}
		if wait := res.DelayFrom(rl.now()); wait > 0 {
			res.Cancel()
			rl.reject(c, wait)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) reject(c *gin.Context, wait time.Duration) {
	rateLimited.WithLabelValues(routeLabel(c)).Inc()
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	c.Header("Retry-After", strconv.Itoa(secs))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "too_many_requests",
		"message":    "rate limit exceeded",
	})
}
