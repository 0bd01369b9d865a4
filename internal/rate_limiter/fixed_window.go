package ratelimiter

import (
	"sync"
	"time"

	"github.com/SeakMengs/Signfy/internal/config"
	"go.uber.org/zap"
)

type window struct {
	start time.Time
	count int
}

// FixedWindowRateLimiter counts requests per key inside fixed windows of cfg.TimeFrame.
type FixedWindowRateLimiter struct {
	sync.Mutex
	clients map[string]*window
	limit   int
	frame   time.Duration
	logger  *zap.SugaredLogger
	now     func() time.Time
	// expired windows are dropped at most once per frame
	lastSweep time.Time
}

func NewFixedWindowLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	frame := cfg.TimeFrame
	if frame <= 0 {
		frame = time.Minute
	}

	return &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   cfg.RequestsPerTimeFrame,
		frame:   frame,
		logger:  logger,
		now:     time.Now,
	}
}

// Allow returns false with the seconds left in the window once key has used up its quota.
func (rl *FixedWindowRateLimiter) Allow(key string) (bool, float64) {
	rl.Lock()
	defer rl.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.frame {
		rl.clients[key] = &window{start: now, count: 1}
		rl.sweep(now)
		return true, 0
	}

	if w.count < rl.limit {
		w.count++
		return true, 0
	}

	retryAfter := w.start.Add(rl.frame).Sub(now).Seconds()
	rl.logger.Debugf("Rate limit reached for %s, retry after %.0fs", key, retryAfter)
	return false, retryAfter
}

// drop expired windows so idle clients do not accumulate; caller holds the lock
func (rl *FixedWindowRateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.frame {
		return
	}
	rl.lastSweep = now

	for key, w := range rl.clients {
		if now.Sub(w.start) >= rl.frame {
			delete(rl.clients, key)
		}
	}
}
