package monitor

import (
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Controller owns the monitoring state machine: the poll loop, the focus-loss
// and person-absence debounce timers, and the policy for when to capture,
// detect, publish and act. Commands (Start, Stop, Pause, Resume, setters) may
// be issued from any goroutine; they take effect no later than the next loop
// iteration.
type Controller struct {
	mu        sync.Mutex
	state     State
	region    Region
	target    string
	macroKeys []string
	listeners []StateListener
	stop      chan struct{}
	done      chan struct{}

	opts   Options
	deps   Deps
	logger *slog.Logger

	// Debounce timers, touched only by the loop goroutine. Zero means unset.
	focusLostAt time.Time
	noPersonAt  time.Time
}

// NewController constructs a stopped controller. Macro keys must be set before
// the first session is started.
func NewController(logger *slog.Logger, deps Deps, opts Options) *Controller {
	return &Controller{state: StateStopped, deps: deps, opts: opts.withDefaults(), logger: logger}
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Region returns the region of the current (or last) session.
func (c *Controller) Region() Region {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.region
}

// AddListener registers a callback invoked on every state transition.
// Register listeners before starting a session.
func (c *Controller) AddListener(l StateListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// SetMacroKeys replaces the recovery key combination. Takes effect on the
// next dispatch.
func (c *Controller) SetMacroKeys(keys []string) error {
	if len(keys) == 0 {
		return errors.New("macro keys must not be empty")
	}
	c.mu.Lock()
	c.macroKeys = append([]string(nil), keys...)
	c.mu.Unlock()
	return nil
}

// MacroKeys returns a copy of the current recovery key combination.
func (c *Controller) MacroKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.macroKeys...)
}

// SetTarget replaces the application title that gates active monitoring.
func (c *Controller) SetTarget(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("target application must not be empty")
	}
	c.mu.Lock()
	c.target = name
	c.mu.Unlock()
	return nil
}

// Start begins a monitoring session for region, gated on target being the
// foreground application. It is rejected while a session is already running.
func (c *Controller) Start(region Region, target string) error {
	c.mu.Lock()
	if c.state != StateStopped {
		c.mu.Unlock()
		return errors.New("monitoring already running")
	}
	if !region.Valid() {
		c.mu.Unlock()
		return errors.Errorf("invalid region %+v: width and height must be positive", region)
	}
	if strings.TrimSpace(target) == "" {
		c.mu.Unlock()
		return errors.New("target application not set")
	}
	if len(c.macroKeys) == 0 {
		c.mu.Unlock()
		return errors.New("macro keys not set")
	}
	c.region = region
	c.target = target
	c.state = StateRunning
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	stop, done := c.stop, c.done
	c.mu.Unlock()

	c.emit("Monitoring started.")
	c.notify(StateStopped, StateRunning)
	go func() {
		defer func() {
			if r := recover(); r != nil && c.logger != nil {
				c.logger.Error("monitor loop panic", "error", r, "stack", string(debug.Stack()))
			}
		}()
		c.loop(stop, done)
	}()
	return nil
}

// Stop terminates the session and blocks until the worker has exited. Calling
// Stop on a stopped controller is a no-op. Starting a new session immediately
// after Stop returns is always safe.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == StateStopped || c.stop == nil {
		c.mu.Unlock()
		return
	}
	stop, done := c.stop, c.done
	select {
	case <-stop:
	default:
		close(stop)
	}
	c.mu.Unlock()
	<-done
}

// Pause suspends detection at the operator's request. A session paused this
// way resumes only via Resume, never on focus changes. Pausing while not
// running is a no-op.
func (c *Controller) Pause() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	c.state = StatePausedUser
	c.mu.Unlock()
	c.emit("Monitoring paused by user.")
	c.notify(StateRunning, StatePausedUser)
}

// Resume continues a session paused by the operator or by the recovery
// action. A focus-loss pause resumes on its own when the target regains
// focus, so Resume ignores it.
func (c *Controller) Resume() {
	c.mu.Lock()
	if c.state != StatePausedUser && c.state != StatePausedAction {
		c.mu.Unlock()
		return
	}
	prev := c.state
	c.state = StateRunning
	c.mu.Unlock()
	c.emit("Monitoring resumed.")
	c.notify(prev, StateRunning)
}

// loop is the session worker. It exits when stop is closed or a session-fatal
// capture failure occurs, always leaving the controller in StateStopped.
func (c *Controller) loop(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.opts.PollPeriod)
	defer ticker.Stop()
	c.focusLostAt = time.Time{}
	c.noPersonAt = time.Time{}
	for {
		select {
		case <-stop:
			c.transition(StateStopped)
			c.emit("Monitoring stopped.")
			return
		case now := <-ticker.C:
			if !c.tick(now) {
				return
			}
		}
	}
}

// tick performs one poll-loop iteration. It returns false when the session is
// fatally over and the loop must exit.
func (c *Controller) tick(now time.Time) bool {
	c.mu.Lock()
	st := c.state
	region := c.region
	target := c.target
	keys := append([]string(nil), c.macroKeys...)
	c.mu.Unlock()

	if st.Paused() {
		// A pause of any kind clears both debounce timers.
		c.focusLostAt = time.Time{}
		c.noPersonAt = time.Time{}
		if st == StatePausedFocus && c.focusMatches(target) {
			c.transition(StateRunning)
			c.emit(fmt.Sprintf("Monitoring resumed. %q is in focus.", target))
		}
		return true
	}

	if !c.focusMatches(target) {
		if c.focusLostAt.IsZero() {
			c.focusLostAt = now
		} else if now.Sub(c.focusLostAt) >= c.opts.FocusDelay {
			c.focusLostAt = time.Time{}
			c.transition(StatePausedFocus)
			c.emit(fmt.Sprintf("Monitoring paused after %s. %q is not in focus.", c.opts.FocusDelay, target))
		}
		return true
	}
	c.focusLostAt = time.Time{}

	frame, err := c.deps.Source.Capture(region)
	if err != nil {
		c.emit(fmt.Sprintf("Screen capture failed: %v. Monitoring stopped.", err))
		c.transition(StateStopped)
		return false
	}
	boxes := c.detect(frame)
	if c.deps.Frames != nil {
		c.deps.Frames.OnFrame(frame, boxes)
	}

	if len(boxes) > 0 {
		c.noPersonAt = time.Time{}
		return true
	}
	if c.noPersonAt.IsZero() {
		c.noPersonAt = now
		return true
	}
	if now.Sub(c.noPersonAt) < c.opts.AbsenceDelay {
		return true
	}
	c.noPersonAt = time.Time{}
	if err := c.deps.Dispatcher.PressCombination(keys); err != nil {
		c.emit(fmt.Sprintf("Error sending macro keys: %v", err))
	} else {
		c.emit(fmt.Sprintf("Switched to safe camera using macro: %s", formatKeys(keys)))
	}
	c.emit(fmt.Sprintf("No person detected at %s", now.Format("15:04:05")))
	c.transition(StatePausedAction)
	return true
}

// detect runs the presence detector on a frame. Detector trouble is absorbed
// as "no detection this tick" rather than surfaced.
func (c *Controller) detect(frame *image.RGBA) []Box {
	boxes, err := c.deps.Detector.Detect(frame)
	if err != nil {
		if c.logger != nil {
			c.logger.Debug("detector error, treating as empty result", "error", err)
		}
		return nil
	}
	return boxes
}

// focusMatches reports whether the foreground window title contains the
// target identifier, case-insensitively. An unknown title never matches.
func (c *Controller) focusMatches(target string) bool {
	title, err := c.deps.Focus.ForegroundTitle()
	if err != nil || strings.TrimSpace(title) == "" {
		return false
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(target))
}

// transition moves the state machine to next, skipping self-transitions, and
// notifies listeners.
func (c *Controller) transition(next State) {
	c.mu.Lock()
	prev := c.state
	if prev == next {
		c.mu.Unlock()
		return
	}
	c.state = next
	c.mu.Unlock()
	if c.logger != nil {
		c.logger.Debug("monitor state transition", "from", prev.String(), "to", next.String())
	}
	c.notify(prev, next)
}

func (c *Controller) notify(prev, next State) {
	c.mu.Lock()
	listeners := append([]StateListener(nil), c.listeners...)
	c.mu.Unlock()
	for _, l := range listeners {
		l(prev, next)
	}
}

func (c *Controller) emit(message string) {
	if c.deps.Events != nil {
		c.deps.Events.OnEvent(time.Now(), message)
	}
}

// formatKeys renders a key combination for event messages, e.g. "Ctrl + 5".
func formatKeys(keys []string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(k[:1])+k[1:])
	}
	return strings.Join(parts, " + ")
}
