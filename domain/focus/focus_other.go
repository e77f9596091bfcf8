//go:build !windows && !linux

package focus

import (
	"log/slog"

	"github.com/pkg/errors"
)

// unsupportedQuery reports every foreground lookup as unknown. The controller
// treats unknown as a non-match, so monitoring simply stays focus-paused on
// platforms without a query mechanism.
type unsupportedQuery struct{}

func newQuery(_ *slog.Logger) (Query, error) {
	return unsupportedQuery{}, nil
}

func (unsupportedQuery) ForegroundTitle() (string, error) {
	return "", errors.New("foreground window query not supported on this platform")
}
