// Package action simulates operator input: pressing the recovery macro's key
// combination through whatever mechanism the platform offers.
package action

import "log/slog"

// Dispatcher simulates pressing an ordered key combination. Dispatch is
// best-effort; callers log failures and do not retry.
type Dispatcher interface {
	PressCombination(keys []string) error
}

// New returns the key dispatcher for the current platform.
func New(logger *slog.Logger) Dispatcher {
	return newDispatcher(logger)
}
