package ratelimit

import (
	"sync"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/provider"
)

// BucketConfig sizes one provider's token bucket. The bucket starts full and
// refills to capacity once per interval.
type BucketConfig struct {
	Capacity       int
	RefillInterval time.Duration
}

type bucket struct {
	mu         sync.Mutex
	capacity   int
	interval   time.Duration
	tokens     int
	lastRefill time.Time
}

// Limiter owns one token bucket per provider. Admission is non-blocking:
// Allow consumes a token or reports denial, it never waits for a refill.
type Limiter struct {
	buckets map[provider.Provider]*bucket
	now     func() time.Time
}

func NewLimiter(configs map[provider.Provider]BucketConfig) *Limiter {
	buckets := make(map[provider.Provider]*bucket, len(configs))
	for prov, cfg := range configs {
		if cfg.Capacity < 1 || cfg.RefillInterval <= 0 {
			continue
		}
		buckets[prov] = &bucket{
			capacity: cfg.Capacity,
			interval: cfg.RefillInterval,
			tokens:   cfg.Capacity,
		}
	}

	return &Limiter{
		buckets: buckets,
		now:     time.Now,
	}
}

// Allow atomically attempts to consume one token for the provider.
// A provider without a configured bucket is allowed through; see Remaining
// for the matching sentinel.
func (l *Limiter) Allow(prov provider.Provider) bool {
	b, ok := l.buckets[prov]
	if !ok {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked(l.now())
	if b.tokens < 1 {
		return false
	}
	b.tokens--

	return true
}

// Record is the request accounting hook. Token consumption already happened
// in Allow; this exists so callers can attach per-request metrics later.
func (l *Limiter) Record(prov provider.Provider) {}

// Remaining reports the current token count, never negative. Unknown
// providers report -1.
func (l *Limiter) Remaining(prov provider.Provider) int {
	b, ok := l.buckets[prov]
	if !ok {
		return -1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked(l.now())

	return b.tokens
}

func (b *bucket) refillLocked(now time.Time) {
	if b.lastRefill.IsZero() {
		b.lastRefill = now
		return
	}
	if now.Sub(b.lastRefill) < b.interval {
		return
	}
	b.tokens = b.capacity
	b.lastRefill = now
}

func DefaultBuckets() map[provider.Provider]BucketConfig {
	return map[provider.Provider]BucketConfig{
		provider.APIFootball:  {Capacity: 100, RefillInterval: 24 * time.Hour},
		provider.FootballData: {Capacity: 10, RefillInterval: time.Minute},
		provider.TheSportsDB:  {Capacity: 10000, RefillInterval: time.Hour},
	}
}
