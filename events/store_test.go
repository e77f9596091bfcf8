package events

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "events.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

// waitForRows polls until the background writer has persisted n rows.
func waitForRows(t *testing.T, s *Store, n int) []StatusEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rows, err := s.Recent(n + 1)
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		if len(rows) >= n {
			return rows
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %d persisted rows", n)
	return nil
}

func TestStore_InsertAndRecent(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()
	s.SetSession("session-1")

	base := time.Unix(1000, 0).UTC()
	s.OnEvent(base, "Monitoring started.")
	s.OnEvent(base.Add(time.Second), "Monitoring paused by user.")
	s.OnEvent(base.Add(2*time.Second), "Monitoring resumed.")

	rows := waitForRows(t, s, 3)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	// Recent returns newest first.
	if rows[0].Message != "Monitoring resumed." || rows[2].Message != "Monitoring started." {
		t.Fatalf("unexpected row order %+v", rows)
	}
	for _, r := range rows {
		if r.SessionID != "session-1" {
			t.Fatalf("expected session id on every row, got %+v", r)
		}
	}
	if s.Dropped() != 0 {
		t.Fatalf("expected no drops, got %d", s.Dropped())
	}
}

func TestStore_RecentHonorsLimit(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()
	base := time.Unix(2000, 0).UTC()
	for i := 0; i < 5; i++ {
		s.OnEvent(base.Add(time.Duration(i)*time.Second), "tick")
	}
	waitForRows(t, s, 5)
	rows, err := s.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected limit of 2 rows, got %d", len(rows))
	}
}

func TestStore_DropsWhenQueueFull(t *testing.T) {
	// No writer goroutine draining, so the second event finds the queue full.
	s := &Store{queue: make(chan StatusEvent, 1), done: make(chan struct{})}
	now := time.Now()
	s.OnEvent(now, "kept")
	s.OnEvent(now, "dropped")
	if got := s.Dropped(); got != 1 {
		t.Fatalf("expected 1 dropped event, got %d", got)
	}
}

func TestStore_OnEventAfterCloseIsDropped(t *testing.T) {
	s := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// A late event must be counted as dropped, never crash the publisher.
	s.OnEvent(time.Now(), "late")
	if got := s.Dropped(); got != 1 {
		t.Fatalf("expected late event counted as dropped, got %d", got)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close must be a no-op, got %v", err)
	}
}
