//go:build windows

package focus

import (
	"log/slog"
	"strings"
	"syscall"
	"unicode/utf16"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

type winQuery struct {
	logger              *slog.Logger
	procForegroundWin   *windows.LazyProc
	procGetWindowTextW  *windows.LazyProc
	procEnumWindows     *windows.LazyProc
	procIsWindowVisible *windows.LazyProc
}

func newQuery(logger *slog.Logger) (Query, error) {
	user32 := windows.NewLazySystemDLL("user32.dll")
	return &winQuery{
		logger:              logger,
		procForegroundWin:   user32.NewProc("GetForegroundWindow"),
		procGetWindowTextW:  user32.NewProc("GetWindowTextW"),
		procEnumWindows:     user32.NewProc("EnumWindows"),
		procIsWindowVisible: user32.NewProc("IsWindowVisible"),
	}, nil
}

// ForegroundTitle returns the title of the current foreground window.
func (q *winQuery) ForegroundTitle() (string, error) {
	hwnd, _, _ := q.procForegroundWin.Call()
	if hwnd == 0 {
		return "", errors.New("no foreground window")
	}
	return q.windowText(hwnd), nil
}

// ListWindows returns titles of top-level visible windows; untitled windows
// are skipped.
func (q *winQuery) ListWindows() ([]string, error) {
	var titles []string
	cb := syscall.NewCallback(func(hwnd uintptr, lparam uintptr) uintptr {
		vis, _, _ := q.procIsWindowVisible.Call(hwnd)
		if vis == 0 {
			return 1 // continue enumeration
		}
		if title := q.windowText(hwnd); title != "" {
			titles = append(titles, title)
		}
		return 1
	})
	if r, _, callErr := q.procEnumWindows.Call(cb, 0); r == 0 && callErr != nil {
		return nil, errors.Wrap(callErr, "enumerate windows")
	}
	return titles, nil
}

func (q *winQuery) windowText(hwnd uintptr) string {
	const maxChars = 256
	buf := make([]uint16, maxChars)
	r, _, _ := q.procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if r == 0 {
		return ""
	}
	end := int(r)
	for i, v := range buf {
		if v == 0 {
			end = i
			break
		}
	}
	return strings.TrimSpace(string(utf16.Decode(buf[:end])))
}
