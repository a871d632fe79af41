// Package throttle limits how often each caller may dispatch commands.
package throttle

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per caller ID. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*rate.Limiter
}

// New returns a limiter allowing perSecond commands per caller with the
// given burst. perSecond <= 0 disables throttling.
func New(perSecond float64, burst int) *Limiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limit:   limit,
		burst:   burst,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether caller id may dispatch now, consuming a token if so.
func (l *Limiter) Allow(id string) bool {
	return l.AllowAt(id, time.Now())
}

// AllowAt is Allow with an explicit clock reading.
func (l *Limiter) AllowAt(id string, now time.Time) bool {
	if l == nil || l.limit == rate.Inf {
		return true
	}
	return l.bucket(id).AllowN(now, 1)
}

// Forget drops the bucket of a caller that went away.
func (l *Limiter) Forget(id string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.buckets, id)
	l.mu.Unlock()
}

// Len returns how many callers currently have a bucket.
func (l *Limiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) bucket(id string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[id]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[id] = b
	}
	return b
}
