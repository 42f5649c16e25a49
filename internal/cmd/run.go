package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/capsule/internal/configpaths"
	"github.com/Alia5/capsule/internal/log"
	"github.com/Alia5/capsule/policy"
	"github.com/Alia5/capsule/remap"
)

// Run grabs every keyboard and remaps it until interrupted.
type Run struct {
	Policy                string        `help:"Policy file (json, yaml or toml). Searched for as policy.* in the config directories when empty; the built-in table is used when none is found" env:"CAPSULE_POLICY" type:"path"`
	SwapCapsLockAndEscape bool          `help:"Tap Caps Lock for Escape and use the Escape key as Caps Lock" env:"CAPSULE_SWAP_CAPS_LOCK_AND_ESCAPE"`
	InputDir              string        `help:"Directory scanned for keyboards" default:"/dev/input/by-path" env:"CAPSULE_INPUT_DIR"`
	Match                 string        `help:"Substring a device entry must contain" default:"event-kbd" env:"CAPSULE_MATCH"`
	Settle                time.Duration `help:"Delay before the keyboards are grabbed, so the virtual devices get picked up first" default:"500ms" env:"CAPSULE_SETTLE"`
	MaxDevices            int           `help:"Abort when more keyboards than this are present (0 means unlimited)" default:"0" env:"CAPSULE_MAX_DEVICES"`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Start(ctx, logger, rawLogger)
}

// loadPolicy resolves the remap configuration from the flag, the search
// path or the built-in default, in that order.
func (r *Run) loadPolicy(logger *slog.Logger) (*remap.Config, error) {
	path := r.Policy
	if path == "" {
		path = configpaths.FindPolicy()
	}
	f := policy.Default()
	if path != "" {
		var err error
		if f, err = policy.Load(path); err != nil {
			return nil, err
		}
		logger.Info("Loaded policy", "path", path)
	} else {
		logger.Info("Using built-in policy")
	}
	return f.Config(r.SwapCapsLockAndEscape)
}
