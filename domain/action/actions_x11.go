//go:build linux

package action

import (
	"log/slog"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// x11Dispatcher shells out to xdotool, which handles keysym resolution and
// modifier ordering for us.
type x11Dispatcher struct {
	logger *slog.Logger
}

func newDispatcher(logger *slog.Logger) Dispatcher {
	return &x11Dispatcher{logger: logger}
}

func (d *x11Dispatcher) PressCombination(keys []string) error {
	norm, err := Normalize(keys)
	if err != nil {
		return err
	}
	if _, err := exec.LookPath("xdotool"); err != nil {
		return errors.Wrap(err, "xdotool not available")
	}
	combo := strings.Join(keysyms(norm), "+")
	out, err := exec.Command("xdotool", "key", "--clearmodifiers", combo).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "xdotool key %s: %s", combo, strings.TrimSpace(string(out)))
	}
	if d.logger != nil {
		d.logger.Debug("macro combination sent", "combo", combo)
	}
	return nil
}

// keysyms maps normalized tokens to the names xdotool expects.
func keysyms(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		switch k {
		case "win":
			out[i] = "super"
		case "enter":
			out[i] = "Return"
		case "esc":
			out[i] = "Escape"
		case "tab":
			out[i] = "Tab"
		default:
			if n, ok := functionKeyNumber(k); ok && n >= 1 && n <= 12 {
				out[i] = "F" + k[1:]
				continue
			}
			out[i] = k
		}
	}
	return out
}
