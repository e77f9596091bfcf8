package events

import (
	"fmt"
	"testing"
	"time"
)

func TestHistory_EvictsOldestAtCapacity(t *testing.T) {
	h, err := NewHistory(3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	base := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		h.OnEvent(base.Add(time.Duration(i)*time.Second), fmt.Sprintf("event %d", i))
	}
	if h.Len() != 3 {
		t.Fatalf("expected capacity 3, got %d", h.Len())
	}
	recent := h.Recent()
	if len(recent) != 3 {
		t.Fatalf("expected 3 recent events, got %d", len(recent))
	}
	if recent[0].Message != "event 2" || recent[2].Message != "event 4" {
		t.Fatalf("unexpected retained events %+v", recent)
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].Seq <= recent[i-1].Seq {
			t.Fatalf("recent events out of order: %+v", recent)
		}
	}
}

func TestHistory_DefaultCapacity(t *testing.T) {
	h, err := NewHistory(0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	h.OnEvent(time.Now(), "ok")
	if h.Len() != 1 {
		t.Fatalf("expected one event, got %d", h.Len())
	}
}
