package capture

import (
	"testing"

	"github.com/camsentry/camsentry/domain/monitor"
)

func TestScreenSource_RejectsInvalidRegion(t *testing.T) {
	s := NewScreenSource(nil)
	for _, r := range []monitor.Region{
		{},
		{Width: 0, Height: 10},
		{Width: 10, Height: 0},
		{Width: -1, Height: -1},
	} {
		if _, err := s.Capture(r); err == nil {
			t.Fatalf("expected error for region %+v", r)
		}
	}
	stats := s.Stats()
	if stats.Captures != 0 {
		t.Fatalf("invalid regions must not count as captures, got %d", stats.Captures)
	}
	if stats.Failures != 4 {
		t.Fatalf("expected 4 failures, got %d", stats.Failures)
	}
	if stats.AvgCapture != 0 || !stats.LastCapture.IsZero() {
		t.Fatalf("expected zero timing stats, got %+v", stats)
	}
}
