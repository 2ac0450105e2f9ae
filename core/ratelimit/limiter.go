package ratelimit

import (
	"sync"
	"time"
)

const (
	bucketTTL       = 10 * time.Minute
	cleanupInterval = time.Minute
	maxBuckets      = 10000
)

// Limiter answers whether a caller identified by key may proceed.
// Implementations hold their own state; handlers never see counters.
type Limiter interface {
	Allow(key string) bool
}

// WindowLimiter grants up to capacity requests per refill window for
// each key. Counters live in process memory and reset on restart; a
// multi-replica deployment would swap this for a shared backend behind
// the same interface.
type WindowLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	capacity    int
	refill      time.Duration
	lastCleanup time.Time
}

type bucket struct {
	tokens   int
	last     time.Time
	lastSeen time.Time
}

func NewWindowLimiter(capacity int, refill time.Duration) *WindowLimiter {
	return &WindowLimiter{
		buckets:  make(map[string]*bucket),
		capacity: capacity,
		refill:   refill,
	}
}

func (l *WindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if now.Sub(l.lastCleanup) >= cleanupInterval {
		l.cleanup(now)
		l.lastCleanup = now
	}
	b, ok := l.buckets[key]
	if !ok {
		l.buckets[key] = &bucket{tokens: l.capacity - 1, last: now, lastSeen: now}
		return true
	}
	b.lastSeen = now
	if now.Sub(b.last) >= l.refill {
		b.tokens = l.capacity
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

func (l *WindowLimiter) cleanup(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > bucketTTL {
			delete(l.buckets, key)
		}
	}
	for len(l.buckets) > maxBuckets {
		oldestKey := ""
		var oldest time.Time
		for key, b := range l.buckets {
			if oldestKey == "" || b.lastSeen.Before(oldest) {
				oldestKey = key
				oldest = b.lastSeen
			}
		}
		if oldestKey == "" {
			break
		}
		delete(l.buckets, oldestKey)
	}
}
