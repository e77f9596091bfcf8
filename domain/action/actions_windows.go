//go:build windows

package action

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

const keyeventfKeyup = 0x0002

// winDispatcher presses key combinations with keybd_event: every key down in
// order, a short hold, then every key up in reverse order so modifiers wrap
// the combination.
type winDispatcher struct {
	logger        *slog.Logger
	procKeybdEvnt *windows.LazyProc
}

func newDispatcher(logger *slog.Logger) Dispatcher {
	user32 := windows.NewLazySystemDLL("user32.dll")
	return &winDispatcher{logger: logger, procKeybdEvnt: user32.NewProc("keybd_event")}
}

func (d *winDispatcher) PressCombination(keys []string) error {
	norm, err := Normalize(keys)
	if err != nil {
		return err
	}
	codes := make([]byte, 0, len(norm))
	for _, k := range norm {
		vk, err := virtualKey(k)
		if err != nil {
			return err
		}
		codes = append(codes, vk)
	}
	for _, vk := range codes {
		if r, _, callErr := d.procKeybdEvnt.Call(uintptr(vk), 0, 0, 0); r == 0 && callErr != nil {
			return errors.Wrapf(callErr, "key down 0x%02X", vk)
		}
		time.Sleep(10 * time.Millisecond)
	}
	// Brief hold so the target application registers the combination.
	time.Sleep(40 * time.Millisecond)
	for i := len(codes) - 1; i >= 0; i-- {
		if r, _, callErr := d.procKeybdEvnt.Call(uintptr(codes[i]), 0, keyeventfKeyup, 0); r == 0 && callErr != nil {
			return errors.Wrapf(callErr, "key up 0x%02X", codes[i])
		}
		time.Sleep(10 * time.Millisecond)
	}
	if d.logger != nil {
		d.logger.Debug("macro combination sent", "keys", norm)
	}
	return nil
}

// virtualKey maps a normalized token to a Windows virtual-key code.
func virtualKey(k string) (byte, error) {
	switch k {
	case "ctrl":
		return 0x11, nil // VK_CONTROL
	case "alt":
		return 0x12, nil // VK_MENU
	case "shift":
		return 0x10, nil // VK_SHIFT
	case "win":
		return 0x5B, nil // VK_LWIN
	case "enter":
		return 0x0D, nil
	case "space":
		return 0x20, nil
	case "tab":
		return 0x09, nil
	case "esc":
		return 0x1B, nil
	}
	if len(k) == 1 {
		c := k[0]
		if c >= '0' && c <= '9' {
			return c, nil // VK_0..VK_9 match ASCII
		}
		if c >= 'a' && c <= 'z' {
			return c - 'a' + 'A', nil // VK_A..VK_Z match uppercase ASCII
		}
	}
	if n, ok := functionKeyNumber(k); ok && n >= 1 && n <= 12 {
		return byte(0x70 + n - 1), nil // VK_F1=0x70
	}
	return 0, errors.Errorf("no virtual-key code for %q", k)
}
