package ratelimiter

import (
	"sync"
	"time"

	"github.com/silvioheinze/isr-field-sub000/internal/config"
	"go.uber.org/zap"
)

// FixedWindowRateLimiter counts requests per client within a fixed time
// window. When the window expires the count resets; until then, requests
// beyond the limit are rejected with the time remaining in the window.
type FixedWindowRateLimiter struct {
	sync.RWMutex
	clients map[string]int
	limit   int
	window  time.Duration
	logger  *zap.SugaredLogger
}

func NewFixedWindowLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]int),
		limit:   cfg.RequestsPerTimeFrame,
		window:  cfg.TimeFrame,
		logger:  logger,
	}
}

// Allow reports whether the client may proceed. The second return value is
// how long the client has to wait when rejected.
func (rl *FixedWindowRateLimiter) Allow(clientID string) (bool, time.Duration) {
	rl.RLock()
	count, exists := rl.clients[clientID]
	rl.RUnlock()

	if !exists || count < rl.limit {
		rl.Lock()
		if !exists {
			go rl.resetCount(clientID)
		}
		rl.clients[clientID]++
		rl.Unlock()
		return true, 0
	}

	rl.logger.Debugf("Rate limit exceeded for client %s", clientID)
	return false, rl.window
}

func (rl *FixedWindowRateLimiter) resetCount(clientID string) {
	time.Sleep(rl.window)
	rl.Lock()
	delete(rl.clients, clientID)
	rl.Unlock()
}
