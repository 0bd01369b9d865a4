package ratelimiter

import (
	"github.com/SeakMengs/Signfy/internal/config"
	"github.com/SeakMengs/Signfy/internal/util"
	"go.uber.org/zap"
)

type Limiter interface {
	// Allow reports whether key may make another request and, when it may not, how long to wait.
	Allow(key string) (bool, float64)
}

func NewRateLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}

	return NewFixedWindowLimiter(cfg, logger)
}
