// Package events carries the controller's timestamped status messages to
// whoever wants them: live subscribers, the in-memory history, the structured
// log and the sqlite audit store. Every sink is non-blocking from the
// controller's point of view.
package events

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Event is one timestamped status message produced by the monitoring
// controller. Seq is assigned at publish time and increases monotonically.
type Event struct {
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Sink receives controller events. Implementations must not block.
type Sink interface {
	OnEvent(ts time.Time, message string)
}

// Tee fans one event out to several sinks in order.
type Tee []Sink

func (t Tee) OnEvent(ts time.Time, message string) {
	for _, s := range t {
		if s != nil {
			s.OnEvent(ts, message)
		}
	}
}

var (
	ErrSubscriberExists = errors.New("events: subscriber id already registered")
	ErrClosed           = errors.New("events: fanout closed")
)

// Fanout distributes events to subscriber channels without ever blocking the
// publisher. A subscriber that falls behind loses events (drop-new policy)
// and the drop is counted.
type Fanout struct {
	mu     sync.RWMutex
	subs   map[string]*subscriber
	closed bool

	seq       atomic.Uint64
	published atomic.Uint64
	dropped   atomic.Uint64
}

type subscriber struct {
	ch      chan Event
	sent    atomic.Uint64
	dropped atomic.Uint64
}

// NewFanout returns an empty fan-out.
func NewFanout() *Fanout {
	return &Fanout{subs: make(map[string]*subscriber)}
}

// Subscribe registers a buffered channel under id. The channel is closed on
// Close or Unsubscribe.
func (f *Fanout) Subscribe(id string, buffer int) (<-chan Event, error) {
	if buffer <= 0 {
		buffer = 16
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}
	if _, exists := f.subs[id]; exists {
		return nil, ErrSubscriberExists
	}
	s := &subscriber{ch: make(chan Event, buffer)}
	f.subs[id] = s
	return s.ch, nil
}

// Unsubscribe removes the subscriber and closes its channel.
func (f *Fanout) Unsubscribe(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.subs[id]; ok {
		delete(f.subs, id)
		close(s.ch)
	}
}

// OnEvent implements Sink: stamps a sequence number and publishes.
func (f *Fanout) OnEvent(ts time.Time, message string) {
	ev := Event{Seq: f.seq.Add(1), Timestamp: ts, Message: message}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return
	}
	f.published.Add(1)
	for _, s := range f.subs {
		select {
		case s.ch <- ev:
			s.sent.Add(1)
		default:
			s.dropped.Add(1)
			f.dropped.Add(1)
		}
	}
}

// Close closes all subscriber channels. Further publishes are ignored.
func (f *Fanout) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, s := range f.subs {
		delete(f.subs, id)
		close(s.ch)
	}
}

// Stats summarises fan-out behaviour.
type Stats struct {
	Published uint64
	Dropped   uint64
}

func (f *Fanout) Stats() Stats {
	return Stats{Published: f.published.Load(), Dropped: f.dropped.Load()}
}
