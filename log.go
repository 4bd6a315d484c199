package monomem

import (
	"sync/atomic"

	"golang.org/x/exp/slog"
)

var logger atomic.Pointer[slog.Logger]

// SetLogger replaces the logger used for chunk and reset events. nil restores
// slog.Default.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func log() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
