//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
	"runtime"
)

func install(logger *slog.Logger, runArgs []string) error {
	return errors.New("service installation is not supported on " + runtime.GOOS)
}

func uninstall(logger *slog.Logger) error {
	return errors.New("service installation is not supported on " + runtime.GOOS)
}
