package capture

import (
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/vova616/screenshot"

	"github.com/camsentry/camsentry/domain/monitor"
)

// ScreenSource captures still frames of a screen region and keeps
// instrumentation counters. It implements monitor.FrameSource.
type ScreenSource struct {
	logger       *slog.Logger
	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
	lastCapture  atomic.Int64 // unix nanos of the last successful capture
}

// NewScreenSource returns a ready-to-use screen source.
func NewScreenSource(logger *slog.Logger) *ScreenSource {
	return &ScreenSource{logger: logger}
}

// Capture grabs one frame of r. An invalid or off-screen region is an error;
// the controller treats capture errors as session-fatal.
func (s *ScreenSource) Capture(r monitor.Region) (*image.RGBA, error) {
	if !r.Valid() {
		s.failures.Add(1)
		return nil, errors.Errorf("invalid region %+v: width and height must be positive", r)
	}
	start := time.Now()
	img, err := screenshot.CaptureRect(r.Rect())
	if err != nil {
		s.failures.Add(1)
		if s.logger != nil {
			s.logger.Error("capture region", "rect", r.Rect().String(), "error", err)
		}
		return nil, errors.Wrapf(err, "capture region %v", r.Rect())
	}
	s.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
	s.captures.Add(1)
	s.lastCapture.Store(time.Now().UnixNano())
	return img, nil
}

// Stats summarises capture behaviour for instrumentation.
type Stats struct {
	Captures    uint64
	Failures    uint64
	AvgCapture  time.Duration
	LastCapture time.Time
}

// Stats returns a snapshot of the capture counters.
func (s *ScreenSource) Stats() Stats {
	captures := s.captures.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	if captures > 0 {
		avg = time.Duration(total / captures)
	}
	var last time.Time
	if n := s.lastCapture.Load(); n > 0 {
		last = time.Unix(0, n)
	}
	return Stats{
		Captures:    captures,
		Failures:    s.failures.Load(),
		AvgCapture:  avg,
		LastCapture: last,
	}
}
