package events

import (
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// History keeps the most recent events in memory for display. Keys are a
// monotonic sequence, so LRU eviction removes the oldest event once the
// capacity is reached.
type History struct {
	cache *lru.Cache[uint64, Event]
	seq   atomic.Uint64
}

// NewHistory returns a history bounded at capacity events.
func NewHistory(capacity int) (*History, error) {
	if capacity <= 0 {
		capacity = 200
	}
	cache, err := lru.New[uint64, Event](capacity)
	if err != nil {
		return nil, err
	}
	return &History{cache: cache}, nil
}

// OnEvent implements Sink.
func (h *History) OnEvent(ts time.Time, message string) {
	seq := h.seq.Add(1)
	h.cache.Add(seq, Event{Seq: seq, Timestamp: ts, Message: message})
}

// Recent returns the retained events, oldest first.
func (h *History) Recent() []Event {
	keys := h.cache.Keys()
	out := make([]Event, 0, len(keys))
	for _, k := range keys {
		if ev, ok := h.cache.Peek(k); ok {
			out = append(out, ev)
		}
	}
	return out
}

// Len returns the number of retained events.
func (h *History) Len() int { return h.cache.Len() }
