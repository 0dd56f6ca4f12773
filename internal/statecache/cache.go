// Package statecache bounds the replay harness's in-memory history of
// committed states with a fixed-capacity LRU, grounded in the teacher's
// validator/client/validator.go use of an hashicorp/golang-lru cache for
// bounded per-run caches that must not grow unboundedly across a long
// validator run.
package statecache

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/epochkernel/epochkernel/core/transition"
	"github.com/epochkernel/epochkernel/internal/metrics"
)

// Cache holds the most recently committed EpochStates, keyed by their
// StateRoot, so the replay harness can look up a prior state by digest
// without re-walking the whole chain it has replayed so far.
type Cache struct {
	lru *lru.Cache
}

// New constructs a Cache holding at most capacity entries.
func New(capacity int) (*Cache, error) {
	l, err := lru.New(capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

// Put records state under its own StateRoot.
func (c *Cache) Put(state transition.EpochState) {
	c.lru.Add(state.StateRoot, state)
}

// Get looks up a previously recorded state by its StateRoot, reporting
// whether it was found.
func (c *Cache) Get(root transition.Digest32) (transition.EpochState, bool) {
	v, ok := c.lru.Get(root)
	if !ok {
		metrics.StateCacheMiss.Inc()
		return transition.EpochState{}, false
	}
	metrics.StateCacheHit.Inc()
	return v.(transition.EpochState), true
}
