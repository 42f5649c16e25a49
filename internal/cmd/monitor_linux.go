//go:build linux

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/Alia5/capsule/input"
	"github.com/Alia5/capsule/internal/engine"
	"github.com/Alia5/capsule/internal/evdev"
	"github.com/Alia5/capsule/internal/notify"
	"github.com/Alia5/capsule/remap"
)

func (m *Monitor) watch(ctx context.Context, logger *slog.Logger) error {
	src, err := evdev.Open(m.Device)
	if err != nil {
		return err
	}
	defer src.Close()

	stopPipe, err := notify.New()
	if err != nil {
		return err
	}
	defer stopPipe.Close()
	go func() {
		<-ctx.Done()
		stopPipe.Signal()
	}()

	// Keys typed on the monitored keyboard must not echo into the terminal.
	nl := "\n"
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("switch terminal to raw mode: %w", err)
		}
		defer func() { _ = term.Restore(fd, old) }()
		nl = "\r\n"
	}

	out := os.Stdout
	fmt.Fprintf(out, "Monitoring %s (%s); press Ctrl+C on it to stop%s", src.Name(), m.Device, nl)

	keys, err := src.KeyState()
	if err != nil {
		logger.Debug("Could not read initial key state", "error", err)
	}

	var poller evdev.Poller
	for {
		ready, err := poller.Wait([]int{src.Fd(), stopPipe.Fd()})
		if err != nil {
			return err
		}
		if ready[1]&engine.Readable != 0 {
			return nil
		}
		if ready[0]&engine.Failed != 0 {
			return engine.ErrDeviceGone
		}

		for {
			ev, err := src.ReadEvent()
			if errors.Is(err, engine.ErrNoEvent) {
				break
			}
			if err != nil {
				return err
			}
			if line := m.describe(ev); line != "" {
				fmt.Fprint(out, line, nl)
			}
			if interrupted(&keys, ev) {
				return nil
			}
			keys.Apply(ev)
			if remap.Killswitch(&keys) {
				fmt.Fprint(out, "Killswitch", nl)
				return nil
			}
			if ev.Type == input.EvSyn && ev.Code == input.SynDropped {
				if keys, err = src.KeyState(); err != nil {
					return err
				}
			}
		}
	}
}
