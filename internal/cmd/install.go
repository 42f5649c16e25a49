package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Install registers capsule as a system service started at boot.
type Install struct {
	Policy                string `help:"Policy file the service loads" type:"existingfile"`
	SwapCapsLockAndEscape bool   `help:"Start the service with --swap-caps-lock-and-escape"`
}

func (i *Install) Run(logger *slog.Logger) error {
	var args []string
	if i.Policy != "" {
		abs, err := filepath.Abs(i.Policy)
		if err != nil {
			return err
		}
		args = append(args, "--policy", abs)
	}
	if i.SwapCapsLockAndEscape {
		args = append(args, "--swap-caps-lock-and-escape")
	}
	return install(logger, args)
}

// Uninstall removes the system service.
type Uninstall struct{}

func (u *Uninstall) Run(logger *slog.Logger) error {
	return uninstall(logger)
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exe)
}
