//go:build !windows && !linux

package action

import (
	"log/slog"

	"github.com/pkg/errors"
)

type unsupportedDispatcher struct{}

func newDispatcher(_ *slog.Logger) Dispatcher {
	return unsupportedDispatcher{}
}

func (unsupportedDispatcher) PressCombination([]string) error {
	return errors.New("key dispatch not supported on this platform")
}
