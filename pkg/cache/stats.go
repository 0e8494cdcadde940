package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks decode cache hit/miss/write counts and size. It is
// always collected, whether or not Prometheus metrics are attached.
type Statistics struct {
	hits int64
	misses int64
	sets  int64

	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
	maxSize     int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{startTime: time.Now()}
}

// Hit records a cache hit.
func (s *Statistics) Hit() { atomic.AddInt64(&s.hits, 1) }

// Miss records a cache miss.
func (s *Statistics) Miss() { atomic.AddInt64(&s.misses, 1) }

// Set records a cache write.
func (s *Statistics) Set() { atomic.AddInt64(&s.sets, 1) }

// UpdateSize records the current number of entries.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	if size > s.maxSize {
		s.maxSize = size
	}
	s.mu.Unlock()
}

// Hits returns the total number of cache hits.
func (s *Statistics) Hits() int64 { return atomic.LoadInt64(&s.hits) }

// Misses returns the total number of cache misses.
func (s *Statistics) Misses() int64 { return atomic.LoadInt64(&s.misses) }

// Sets returns the total number of cache writes.
func (s *Statistics) Sets() int64 { return atomic.LoadInt64(&s.sets) }

// CurrentSize returns the current number of entries in the cache.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// MaxSize returns the largest size the cache has held.
func (s *Statistics) MaxSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxSize
}

// HitRatio returns the cache hit ratio as a fraction between 0 and 1.
func (s *Statistics) HitRatio() float64 {
	hits, misses := s.Hits(), s.Misses()
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

// MissRatio returns the cache miss ratio as a fraction between 0 and 1.
func (s *Statistics) MissRatio() float64 {
	return 1.0 - s.HitRatio()
}

// Uptime returns how long the cache has been running.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}
