package flow

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Cooldown allows one use per period for each user.
type Cooldown struct {
	period time.Duration
	now    func() time.Time

	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	lastSweep time.Time
}

func NewCooldown(period time.Duration) *Cooldown {
	return &Cooldown{
		period:   period,
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow consumes the user's slot if it is free. Otherwise it reports how long
// until the next use is permitted and consumes nothing.
func (c *Cooldown) Allow(userID string) (bool, time.Duration) {
	if c == nil || c.period <= 0 {
		return true, 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweep(now)

	lim, ok := c.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(c.period), 1)
		c.limiters[userID] = lim
	}

	res := lim.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// sweep drops limiters that have refilled, since a full limiter behaves like
// a new one. It runs at most once per period.
func (c *Cooldown) sweep(now time.Time) {
	if now.Sub(c.lastSweep) < c.period {
		return
	}
	for id, lim := range c.limiters {
		if lim.TokensAt(now) >= 1 {
			delete(c.limiters, id)
		}
	}
	c.lastSweep = now
}

func (c *Cooldown) tracked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.limiters)
}
