package dispatcher

import "time"

// RateWindow is the length of one rate limiting window
const RateWindow = time.Second

// RateLimiter counts events in consecutive one second windows and refuses them once the cap is reached
type RateLimiter struct {
	max         uint32
	windowStart time.Time
	count       uint32
	rate        uint32
}

// NewRateLimiter creates a limiter allowing max events per window. 0 allows everything
func NewRateLimiter(max uint32) *RateLimiter {
	return &RateLimiter{max: max}
}

// Allow records an event at now and reports whether it is under the cap
func (r *RateLimiter) Allow(now time.Time) bool {
	if now.Sub(r.windowStart) >= RateWindow {
		r.rate = r.count
		r.windowStart = now
		r.count = 0
	}

	if r.max > 0 && r.count >= r.max {
		return false
	}
	r.count++
	return true
}

// Count is the number of events allowed in the current window
func (r *RateLimiter) Count() uint32 {
	return r.count
}

// Rate is the number of events allowed in the previous window
func (r *RateLimiter) Rate() uint32 {
	return r.rate
}
