package store

import (
	"testing"

	"github.com/gasnetwork/agent/distribution"
)

func dist(gwei float64) distribution.BlockDistribution {
	return distribution.BlockDistribution{{Gwei: gwei, Count: 1}}
}

func TestRollingEviction(t *testing.T) {
	s := New()
	for i := 0; i < 55; i++ {
		s.IngestBlock(dist(float64(i)))
	}
	if s.Len() != 50 {
		t.Fatalf("got len %d, want 50", s.Len())
	}
	blocks, _ := s.Snapshot()
	// The 6th ingested block (index 5, gwei=5.0) should be the oldest survivor.
	if blocks[0][0].Gwei != 5.0 {
		t.Errorf("oldest surviving block = %v, want 5.0", blocks[0][0].Gwei)
	}
}

func TestIngestNeverReorders(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		s.IngestBlock(dist(float64(i)))
	}
	blocks, _ := s.Snapshot()
	for i := 1; i < len(blocks); i++ {
		if blocks[i][0].Gwei <= blocks[i-1][0].Gwei {
			t.Fatalf("store reordered: %+v", blocks)
		}
	}
}

func TestPendingOverwrite(t *testing.T) {
	s := New()
	s.IngestPending(dist(5))
	s.IngestPending(dist(10))
	_, pending := s.Snapshot()
	if pending == nil || (*pending)[0].Gwei != 10 {
		t.Fatalf("got %v, want overwritten pending of 10", pending)
	}
}

func TestSnapshotIsImmutableCopy(t *testing.T) {
	s := New()
	s.IngestBlock(dist(1))
	blocks, _ := s.Snapshot()
	blocks[0][0].Gwei = 999 // mutate the copy
	blocks2, _ := s.Snapshot()
	if blocks2[0][0].Gwei == 999 {
		t.Fatal("snapshot leaked internal state")
	}
}

func TestSnapshotNoPendingByDefault(t *testing.T) {
	s := New()
	_, pending := s.Snapshot()
	if pending != nil {
		t.Fatal("expected nil pending slot on a fresh store")
	}
}
