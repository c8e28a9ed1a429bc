// app/seenmw.go
package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const sweepLockKey = "kiosk:sweep:lock"

// BestEffortSweeper runs an expiry sweep without reporting failure.
type BestEffortSweeper interface {
	SweepBestEffort(ctx context.Context)
}

// SweepOnVisit releases overdue rentals when the kiosk loads a page, so
// the board never shows an expired rental as RENTED. With Redis the sweep
// runs at most once per throttle window across all kiosks.
func SweepOnVisit(sw BestEffortSweeper, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || throttle <= 0 {
			sw.SweepBestEffort(c.Request.Context())
			c.Next()
			return
		}
		if ok, err := rdb.SetNX(c, sweepLockKey, "1", throttle).Result(); ok || err != nil {
			sw.SweepBestEffort(c.Request.Context()) // Redis 出错时照常清理，不阻塞请求
		}
		c.Next()
	}
}
