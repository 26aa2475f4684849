package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type bucket struct {
	tokens     int
	lastRefill time.Time
}

var (
	rlMu        sync.Mutex
	buckets     = map[string]*bucket{}
	window      = 10 * time.Second
	capacity    = 5
	refillPerWd = capacity

	cgMu     sync.Mutex
	userSem  = map[uint]chan struct{}{}
	userConc = 2
)

func SetRateLimitConfig(win time.Duration, cap, conc int) {
	if win <= 0 || cap <= 0 {
		return
	}
	rlMu.Lock()
	window = win
	capacity = cap
	refillPerWd = cap
	buckets = map[string]*bucket{}
	rlMu.Unlock()
	if conc > 0 {
		cgMu.Lock()
		userConc = conc
		userSem = map[uint]chan struct{}{}
		cgMu.Unlock()
	}
}

func clientIP(c *gin.Context) string {
	ip := strings.TrimSpace(c.ClientIP())
	if ip == "" {
		host, _, _ := net.SplitHostPort(strings.TrimSpace(c.Request.RemoteAddr))
		ip = host
	}
	return ip
}

func userKey(c *gin.Context) string {
	if p, ok := CurrentPrincipal(c); ok {
		return strconv.FormatUint(uint64(p.ID), 10) + "@" + clientIP(c)
	}
	return "@" + clientIP(c)
}

// allow takes one token from key's bucket.
func allow(key string, now time.Time) bool {
	rlMu.Lock()
	defer rlMu.Unlock()
	b := buckets[key]
	if b == nil {
		b = &bucket{tokens: capacity, lastRefill: now}
		buckets[key] = b
	}
	elapsed := now.Sub(b.lastRefill)
	if elapsed > 0 {
		add := int(float64(refillPerWd) * (float64(elapsed) / float64(window)))
		if add > 0 {
			b.tokens += add
			if b.tokens > capacity {
				b.tokens = capacity
			}
			b.lastRefill = now
		}
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// RateLimit is a per user+IP token bucket; run it after AuthMiddleware.
func RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(userKey(c), time.Now()) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"msg": "too many requests"})
			return
		}
		c.Next()
	}
}

// AcquireUserSlot blocks until the user has a free streaming slot or ctx ends.
func AcquireUserSlot(ctx context.Context, uid uint) (release func(), err error) {
	cgMu.Lock()
	sem := userSem[uid]
	if sem == nil {
		sem = make(chan struct{}, userConc)
		userSem[uid] = sem
	}
	cgMu.Unlock()
	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
