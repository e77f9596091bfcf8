package monitor

import (
	"image"
	"time"
)

// State enumerates the finite states of a monitoring session.
type State int

const (
	StateStopped State = iota
	StateRunning
	StatePausedFocus  // target application lost foreground focus
	StatePausedUser   // operator requested the pause
	StatePausedAction // recovery action fired
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StatePausedFocus:
		return "paused-focus"
	case StatePausedUser:
		return "paused-user"
	case StatePausedAction:
		return "paused-action"
	default:
		return "unknown"
	}
}

// Paused reports whether s is any of the paused states.
func (s State) Paused() bool {
	return s == StatePausedFocus || s == StatePausedUser || s == StatePausedAction
}

// Region is the screen rectangle being monitored. It is immutable for the
// lifetime of one session.
type Region struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether the region has positive dimensions.
func (r Region) Valid() bool { return r.Width > 0 && r.Height > 0 }

// Rect converts the region to screen coordinates as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

// Box is one person detection in frame-local pixel coordinates.
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// FrameSource captures one still image of a screen region.
type FrameSource interface {
	Capture(Region) (*image.RGBA, error)
}

// PersonDetector returns confidence-filtered person boxes for a frame.
// An empty slice is a meaningful result: nobody is in the region.
type PersonDetector interface {
	Detect(*image.RGBA) ([]Box, error)
}

// FocusQuery resolves the title of the current foreground window.
type FocusQuery interface {
	ForegroundTitle() (string, error)
}

// KeyDispatcher simulates pressing an ordered key combination.
type KeyDispatcher interface {
	PressCombination(keys []string) error
}

// EventSink receives timestamped status messages from the controller.
// Implementations must not block; the poll loop calls them inline.
type EventSink interface {
	OnEvent(ts time.Time, message string)
}

// FrameConsumer receives every captured frame together with its detections.
// Implementations must not block.
type FrameConsumer interface {
	OnFrame(frame *image.RGBA, boxes []Box)
}

// StateListener is called on each state transition, from the goroutine that
// performed the transition.
type StateListener func(prev, next State)

// Deps aggregates the external collaborators consumed by the controller.
type Deps struct {
	Source     FrameSource
	Detector   PersonDetector
	Focus      FocusQuery
	Dispatcher KeyDispatcher
	Events     EventSink
	Frames     FrameConsumer
}

// Default timing values, matching the behaviour the operators are used to.
const (
	DefaultPollPeriod   = 100 * time.Millisecond
	DefaultFocusDelay   = 5 * time.Second
	DefaultAbsenceDelay = time.Second
)

// Options tune the controller's temporal behaviour. Zero fields fall back to
// the defaults above.
type Options struct {
	PollPeriod   time.Duration
	FocusDelay   time.Duration
	AbsenceDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.PollPeriod <= 0 {
		o.PollPeriod = DefaultPollPeriod
	}
	if o.FocusDelay <= 0 {
		o.FocusDelay = DefaultFocusDelay
	}
	if o.AbsenceDelay <= 0 {
		o.AbsenceDelay = DefaultAbsenceDelay
	}
	return o
}
