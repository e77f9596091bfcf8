// Package focus resolves which application window is currently foregrounded.
// The OS mechanism differs per platform, so the capability is selected behind
// a single interface at startup instead of branching inside the controller.
package focus

import (
	"log/slog"

	"github.com/pkg/errors"
)

// Query resolves the title of the current foreground window.
type Query interface {
	ForegroundTitle() (string, error)
}

// Lister enumerates titles of candidate target windows.
type Lister interface {
	ListWindows() ([]string, error)
}

// New returns the focus query for the current platform.
func New(logger *slog.Logger) (Query, error) {
	return newQuery(logger)
}

// ListTitles enumerates window titles on platforms that support it.
func ListTitles(logger *slog.Logger) ([]string, error) {
	q, err := newQuery(logger)
	if err != nil {
		return nil, err
	}
	l, ok := q.(Lister)
	if !ok {
		return nil, errors.New("window enumeration not supported on this platform")
	}
	return l.ListWindows()
}
