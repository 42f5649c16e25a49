//go:build !linux

package cmd

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"github.com/Alia5/capsule/internal/log"
)

// Start fails: only the Linux evdev backend exists.
func (r *Run) Start(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	return errors.New("remapping is not supported on " + runtime.GOOS)
}
