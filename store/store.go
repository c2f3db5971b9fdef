// Package store holds the per-chain rolling window of block
// distributions and the pending-block slot, per spec.md §4.3. It is the
// single piece of mutable shared state the supervisor's tasks read and
// write concurrently.
package store

import (
	"sync"

	"github.com/gasnetwork/agent/distribution"
)

// MaxBlocks is the bounded window size spec.md §3 fixes at 50.
const MaxBlocks = 50

// DistributionStore holds an ordered, bounded window of recent
// BlockDistributions plus an optional pending-block distribution. Safe
// for concurrent use: spec.md §5 restricts block writes to the
// block-poll task and pending writes to the pending-poll task, but
// Snapshot may be called from any reader.
type DistributionStore struct {
	mu      sync.RWMutex
	blocks  []distribution.BlockDistribution
	pending *distribution.BlockDistribution
}

// New creates an empty store.
func New() *DistributionStore {
	return &DistributionStore{
		blocks: make([]distribution.BlockDistribution, 0, MaxBlocks),
	}
}

// IngestBlock appends a newly observed block's distribution, evicting
// from the head if the window exceeds MaxBlocks. Never reorders.
func (s *DistributionStore) IngestBlock(d distribution.BlockDistribution) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocks = append(s.blocks, d)
	if len(s.blocks) > MaxBlocks {
		excess := len(s.blocks) - MaxBlocks
		s.blocks = s.blocks[excess:]
	}
}

// IngestPending overwrites the single pending-block distribution slot.
func (s *DistributionStore) IngestPending(d distribution.BlockDistribution) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := d
	s.pending = &pending
}

// Snapshot returns a consistent, immutable copy of both the block
// window and the pending slot under a single read lock, so a reader
// never observes a torn view between the two.
func (s *DistributionStore) Snapshot() ([]distribution.BlockDistribution, *distribution.BlockDistribution) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks := make([]distribution.BlockDistribution, len(s.blocks))
	for i, d := range s.blocks {
		blocks[i] = append(distribution.BlockDistribution(nil), d...)
	}

	var pending *distribution.BlockDistribution
	if s.pending != nil {
		p := append(distribution.BlockDistribution(nil), (*s.pending)...)
		pending = &p
	}
	return blocks, pending
}

// Len returns the number of distributions currently held.
func (s *DistributionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blocks)
}
