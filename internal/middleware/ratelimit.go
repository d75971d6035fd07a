package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/memodb-io/roombook/internal/modules/serializer"
)

const bucketTTL = 10 * time.Minute

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimit allows each viewer perMinute requests per minute through the
// handlers it guards. Zero or less disables the limit.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
		every   = rate.Every(time.Minute / time.Duration(perMinute))
		sweep   = time.Now()
	)

	allow := func(key string, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()
		if now.Sub(sweep) > bucketTTL {
			for k, b := range buckets {
				if now.Sub(b.seen) > bucketTTL {
					delete(buckets, k)
				}
			}
			sweep = now
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{lim: rate.NewLimiter(every, perMinute)}
			buckets[key] = b
		}
		b.seen = now
		return b.lim.AllowN(now, 1)
	}

	return func(c *gin.Context) {
		key := ViewerFrom(c).ID
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !allow(key, time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, serializer.Err(http.StatusTooManyRequests, "too many requests", nil))
			return
		}
		c.Next()
	}
}
