package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/erkkaervice/philosophers/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with the classic five-actor config.
func createTestRun(id string, startedAt time.Time) ir.Run {
	return ir.Run{
		ID:        id,
		Config:    ir.Config{Actors: 5, DieMs: 800, EatMs: 200, SleepMs: 200, Quota: 7},
		StartedAt: startedAt,
	}
}

// testEvents returns a short two-actor log ending in a death.
func testEvents() []ir.Event {
	return []ir.Event{
		{Seq: 1, ElapsedMs: 0, Actor: 1, Kind: ir.KindTookFork},
		{Seq: 2, ElapsedMs: 0, Actor: 1, Kind: ir.KindTookFork},
		{Seq: 3, ElapsedMs: 0, Actor: 1, Kind: ir.KindEating},
		{Seq: 4, ElapsedMs: 60, Actor: 2, Kind: ir.KindDied},
	}
}
