//go:build !linux

package cmd

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
)

func (m *Monitor) watch(ctx context.Context, logger *slog.Logger) error {
	return errors.New("monitor is not supported on " + runtime.GOOS)
}
