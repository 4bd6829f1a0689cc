package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimitConfig holds per-client request limits. Zero disables a limit.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
	MaxDataPerDay     int64 // bytes
}

// RateLimiter tracks request rates and daily quotas per client.
type RateLimiter struct {
	mu     sync.Mutex
	limits RateLimitConfig
	now    func() time.Time

	clients map[string]*clientUsage
}

// clientUsage counts requests in the current minute, hour and day windows.
type clientUsage struct {
	minuteStart time.Time
	hourStart   time.Time
	dayStart    time.Time

	minute int
	hour   int
	day    int
	data   int64
}

// Usage is a snapshot of one client's counters.
type Usage struct {
	RequestsLastMinute int
	RequestsLastHour   int
	RequestsToday      int
	DataToday          int64
}

// NewRateLimiter creates a rate limiter with the given limits.
func NewRateLimiter(limits RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limits:  limits,
		now:     time.Now,
		clients: make(map[string]*clientUsage),
	}
}

// CheckRateLimit records a request of dataSize bytes from clientID, or
// returns a *RateLimitError or *QuotaExceededError without recording it.
func (rl *RateLimiter) CheckRateLimit(clientID string, dataSize int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	u := rl.usage(clientID, now)
	u.roll(now)

	if err := rl.checkRates(u, now); err != nil {
		return err
	}
	if err := rl.checkQuotas(u, dataSize, now); err != nil {
		return err
	}

	u.minute++
	u.hour++
	u.day++
	u.data += dataSize
	return nil
}

// roll starts new windows once the old ones have elapsed.
func (u *clientUsage) roll(now time.Time) {
	if now.Sub(u.minuteStart) >= time.Minute {
		u.minuteStart, u.minute = now, 0
	}
	if now.Sub(u.hourStart) >= time.Hour {
		u.hourStart, u.hour = now, 0
	}
	y0, m0, d0 := u.dayStart.Date()
	if y1, m1, d1 := now.Date(); y0 != y1 || m0 != m1 || d0 != d1 {
		u.dayStart, u.day, u.data = now, 0, 0
	}
}

func (rl *RateLimiter) checkRates(u *clientUsage, now time.Time) error {
	if rl.limits.RequestsPerMinute > 0 && u.minute >= rl.limits.RequestsPerMinute {
		return &RateLimitError{
			Type:       "minute",
			Limit:      rl.limits.RequestsPerMinute,
			RetryAfter: u.minuteStart.Add(time.Minute).Sub(now),
		}
	}
	if rl.limits.RequestsPerHour > 0 && u.hour >= rl.limits.RequestsPerHour {
		return &RateLimitError{
			Type:       "hour",
			Limit:      rl.limits.RequestsPerHour,
			RetryAfter: u.hourStart.Add(time.Hour).Sub(now),
		}
	}
	return nil
}

func (rl *RateLimiter) checkQuotas(u *clientUsage, dataSize int64, now time.Time) error {
	resets := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())

	if rl.limits.MaxRequestsPerDay > 0 && u.day >= rl.limits.MaxRequestsPerDay {
		return &QuotaExceededError{
			Type:   "requests",
			Limit:  int64(rl.limits.MaxRequestsPerDay),
			Used:   int64(u.day),
			Resets: resets,
		}
	}
	if rl.limits.MaxDataPerDay > 0 && u.data+dataSize > rl.limits.MaxDataPerDay {
		return &QuotaExceededError{
			Type:   "data",
			Limit:  rl.limits.MaxDataPerDay,
			Used:   u.data,
			Resets: resets,
		}
	}
	return nil
}

func (rl *RateLimiter) usage(clientID string, now time.Time) *clientUsage {
	u, ok := rl.clients[clientID]
	if !ok {
		u = &clientUsage{minuteStart: now, hourStart: now, dayStart: now}
		rl.clients[clientID] = u
	}
	return u
}

// GetUsage returns current usage statistics for a client.
func (rl *RateLimiter) GetUsage(clientID string) Usage {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	u, ok := rl.clients[clientID]
	if !ok {
		return Usage{}
	}
	return Usage{
		RequestsLastMinute: u.minute,
		RequestsLastHour:   u.hour,
		RequestsToday:      u.day,
		DataToday:          u.data,
	}
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Type       string        // "minute" or "hour"
	Limit      int           // the limit that was exceeded
	RetryAfter time.Duration // how long to wait before retrying
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Type, e.Limit, e.RetryAfter)
}

// QuotaExceededError represents a quota violation.
type QuotaExceededError struct {
	Type   string    // "requests" or "data"
	Limit  int64     // the limit that was exceeded
	Used   int64     // current usage
	Resets time.Time // when the quota resets
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Type, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}
