package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
	"golang.org/x/time/rate"
)

// DefaultBodyLimit caps JSON request bodies
const DefaultBodyLimit = 1 << 20

const (
	limiterIdleTimeout   = 10 * time.Minute
	limiterSweepInterval = 5 * time.Minute
)

// CORS allows the configured origins. "*" allows any origin.
func CORS(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, HEAD, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Length, Content-Type, Range")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type requestLogLine struct {
	Time      string  `json:"time"`
	Status    int     `json:"status"`
	Method    string  `json:"method"`
	Path      string  `json:"path"`
	ClientIP  string  `json:"client_ip"`
	LatencyMS float64 `json:"latency_ms"`
	BodySize  int     `json:"body_size"`
	Error     string  `json:"error,omitempty"`
}

// jsonLogFormatter renders a request log entry as a JSON line
func jsonLogFormatter(param gin.LogFormatterParams) string {
	line, err := json.Marshal(requestLogLine{
		Time:      param.TimeStamp.UTC().Format(time.RFC3339),
		Status:    param.StatusCode,
		Method:    param.Method,
		Path:      param.Path,
		ClientIP:  param.ClientIP,
		LatencyMS: float64(param.Latency.Microseconds()) / 1000,
		BodySize:  param.BodySize,
		Error:     param.ErrorMessage,
	})
	if err != nil {
		return ""
	}
	return string(line) + "\n"
}

// RequestSizeLimit caps request bodies at DefaultBodyLimit
func RequestSizeLimit() gin.HandlerFunc {
	return RequestSizeLimitWithSize(DefaultBodyLimit)
}

// RequestSizeLimitWithSize caps bodies of POST, PUT and PATCH requests
func RequestSizeLimitWithSize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost ||
			c.Request.Method == http.MethodPut ||
			c.Request.Method == http.MethodPatch {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// clientLimiter holds a rate limiter and its last accessed time
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter keeps one token bucket per endpoint and client IP
type RateLimiter struct {
	limiters sync.Map
	stop     chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewRateLimiter starts a limiter set that forgets idle clients
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		stop: make(chan struct{}),
		now:  time.Now,
	}
	go rl.cleanupLoop()
	return rl
}

// Limit allows rps requests per second per client with bursts of twice that.
// rps <= 0 disables the limit.
func (rl *RateLimiter) Limit(endpoint string, rps int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := endpoint + "|" + c.ClientIP()
		v, ok := rl.limiters.Load(key)
		if !ok {
			v, _ = rl.limiters.LoadOrStore(key, &clientLimiter{
				limiter: rate.NewLimiter(rate.Limit(rps), rps*2),
			})
		}
		cl := v.(*clientLimiter)
		cl.lastSeen.Store(rl.now().UnixNano())

		if !cl.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, types.ErrorResponse{
				Error: "Rate limit exceeded. Please slow down your requests.",
			})
			return
		}
		c.Next()
	}
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

// sweep drops limiters idle longer than limiterIdleTimeout
func (rl *RateLimiter) sweep() int {
	cutoff := rl.now().Add(-limiterIdleTimeout).UnixNano()
	removed := 0
	rl.limiters.Range(func(key, value any) bool {
		if value.(*clientLimiter).lastSeen.Load() < cutoff {
			rl.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}
