package cache

import (
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Deduplicator collapses concurrent evaluations of the same key into one call
type Deduplicator struct {
	group        singleflight.Group
	requests     atomic.Int64
	deduplicated atomic.Int64
}

// NewDeduplicator creates a new deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Execute runs fn once per key among concurrent callers
func (d *Deduplicator) Execute(key CacheKey, fn func() (float64, error)) (float64, error) {
	d.requests.Add(1)

	result, err, shared := d.group.Do(string(key), func() (interface{}, error) {
		return fn()
	})
	if shared {
		d.deduplicated.Add(1)
	}
	if err != nil {
		return 0, err
	}
	return result.(float64), nil
}

// Requests returns how many calls went through Execute
func (d *Deduplicator) Requests() int64 { return d.requests.Load() }

// Deduplicated returns how many calls received a shared result
func (d *Deduplicator) Deduplicated() int64 { return d.deduplicated.Load() }
