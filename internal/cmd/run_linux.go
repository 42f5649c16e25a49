//go:build linux

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/Alia5/capsule/input"
	"github.com/Alia5/capsule/internal/engine"
	"github.com/Alia5/capsule/internal/evdev"
	"github.com/Alia5/capsule/internal/hotplug"
	"github.com/Alia5/capsule/internal/log"
	"github.com/Alia5/capsule/internal/notify"
)

// Start runs the remapper until ctx is cancelled or the engine stops.
func (r *Run) Start(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	cfg, err := r.loadPolicy(logger)
	if err != nil {
		return err
	}

	if unix.Geteuid() != 0 {
		logger.Warn("Not running as root; opening keyboards or /dev/uinput may fail")
	}

	// Watch before the first scan so no device slips in between.
	watcher, err := hotplug.New(r.InputDir, r.Match, logger)
	if err != nil {
		return fmt.Errorf("hotplug source unavailable: %w", err)
	}
	defer watcher.Close()

	stopPipe, err := notify.New()
	if err != nil {
		return err
	}
	defer stopPipe.Close()

	backend := &evdev.Backend{
		Dir:    r.InputDir,
		Match:  r.Match,
		Extra:  cfg.OutputKeys(),
		Logger: logger,
	}
	loop := &engine.Loop{
		Registry: engine.NewRegistry(backend, cfg, r.MaxDevices, logger),
		Poller:   &evdev.Poller{},
		Hotplug:  watcher,
		Stop:     stopPipe,
		Settle:   r.Settle,
		Logger:   logger,
		Raw:      rawLogger,
	}

	logger.Info("Starting capsule",
		"inputDir", r.InputDir,
		"match", r.Match,
		"dualRole", input.KeyName(cfg.DualRole.Physical),
		"tap", input.KeyName(cfg.DualRole.Primary),
		"rules", len(cfg.Rules),
	)

	err = loop.Run(ctx)
	switch {
	case errors.Is(err, engine.ErrKillswitch):
		return fmt.Errorf("stopped by Left Ctrl + Right Ctrl: %w", err)
	case err != nil:
		return err
	}
	logger.Info("Shut down")
	return nil
}
