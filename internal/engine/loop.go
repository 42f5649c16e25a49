package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Alia5/capsule/input"
	"github.com/Alia5/capsule/internal/log"
	"github.com/Alia5/capsule/remap"
)

// Loop is the event multiplexer. It waits on the hotplug notifier and every
// tracked device, and runs each raw event through the remap state machine.
type Loop struct {
	Registry *Registry
	Poller   Poller
	Hotplug  Notifier
	// Stop, when set, is signalled on context cancellation to wake the poll.
	Stop Waker
	// Settle delays the first grab so the desktop can pick up the new
	// virtual devices before input is taken from the physical ones.
	Settle time.Duration
	Logger *slog.Logger
	Raw    log.RawLogger
}

// Run scans, grabs and processes input until ctx is cancelled, the killswitch
// fires or a global error occurs. Cancellation returns nil. Every device is
// released before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	if l.Raw == nil {
		l.Raw = log.NewRaw(nil)
	}
	defer func() {
		if err := l.Registry.Close(); err != nil {
			l.Logger.Warn("Error releasing keyboards", "error", err)
		}
	}()

	report, err := l.Registry.Scan()
	if err != nil {
		return err
	}
	l.Logger.Info("Keyboards ready", "count", report.Active, "skipped", report.Skipped, "failed", report.Failed)

	done := make(chan struct{})
	defer close(done)
	if l.Stop != nil {
		go func() {
			select {
			case <-ctx.Done():
				l.Stop.Signal()
			case <-done:
			}
		}()
	}

	if l.Settle > 0 {
		t := time.NewTimer(l.Settle)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
	l.Registry.GrabAll()

	for {
		devices := l.Registry.Devices()
		fds := make([]int, 0, len(devices)+2)
		fds = append(fds, l.Hotplug.Fd())
		if l.Stop != nil {
			fds = append(fds, l.Stop.Fd())
		}
		first := len(fds)
		for _, d := range devices {
			fds = append(fds, d.source.Fd())
		}

		ready, err := l.Poller.Wait(fds)
		if err != nil {
			return fmt.Errorf("wait for input: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}

		if ready[0]&Readable != 0 {
			l.Hotplug.Drain()
			if err := l.rescan(); err != nil {
				return err
			}
			continue
		}

		for i, d := range devices {
			r := ready[first+i]
			if r&Failed != 0 {
				l.Logger.Warn("Keyboard reported an error; removing", "device", d.Name, "path", d.Path)
				l.remove(d)
				continue
			}
			if r&Readable == 0 {
				continue
			}
			if err := l.drain(d); err != nil {
				if errors.Is(err, ErrKillswitch) {
					l.Logger.Error("Killswitch detected; exiting", "device", d.Name)
					return err
				}
				if errors.Is(err, ErrDeviceGone) {
					l.Logger.Debug("Keyboard is gone", "device", d.Name, "path", d.Path)
				} else {
					l.Logger.Error("Keyboard failed; removing", "device", d.Name, "path", d.Path, "error", err)
				}
				l.remove(d)
			}
		}
	}
}

func (l *Loop) rescan() error {
	report, err := l.Registry.Scan()
	switch {
	case errors.Is(err, ErrNoKeyboards) && report.Failed == 0:
		l.warnEmpty("removed", report.Removed)
	case err != nil:
		return err
	default:
		l.Logger.Debug("Rescanned keyboards", "added", report.Added, "removed", report.Removed, "active", report.Active)
	}
	l.Registry.GrabAll()
	return nil
}

func (l *Loop) remove(d *Device) {
	if err := l.Registry.Remove(d.ID); err != nil {
		l.Logger.Warn("Error releasing keyboard", "device", d.Name, "error", err)
	}
	if l.Registry.Len() == 0 {
		l.warnEmpty("lastDevice", d.Name)
	}
}

func (l *Loop) warnEmpty(args ...any) {
	l.Logger.Warn("No keyboards left; waiting for one to be plugged in", args...)
}

// drain reads every buffered event of d. The killswitch is checked against
// the physical key state before each event is applied.
func (l *Loop) drain(d *Device) error {
	for {
		ev, err := d.source.ReadEvent()
		if errors.Is(err, ErrNoEvent) {
			return nil
		}
		if err != nil {
			return err
		}
		l.Raw.Log(true, d.Name, ev)

		if ev.Type == input.EvSyn && ev.Code == input.SynDropped {
			l.resync(d)
			continue
		}

		d.Keys.Apply(ev)
		if remap.Killswitch(&d.Keys) {
			return ErrKillswitch
		}

		res := l.Registry.Policy().Process(&d.State, ev)
		if err := l.emit(d, ev, res); err != nil {
			return fmt.Errorf("write to virtual device: %w", err)
		}
	}
}

// emit writes the outcome of one raw event. Forwarded events keep the
// device's own framing; synthesized events are each followed by a sync so a
// Down and its Up never land in the same frame.
func (l *Loop) emit(d *Device, raw input.Event, res remap.Result) error {
	if res.Forward {
		l.Raw.Log(false, d.Name, raw)
		return d.sink.Write(raw)
	}
	for _, ev := range res.Events {
		l.Raw.Log(false, d.Name, ev)
		if err := d.sink.Write(ev, input.Sync()); err != nil {
			return err
		}
	}
	return nil
}

// resync refreshes the physical key state after the kernel dropped events.
func (l *Loop) resync(d *Device) {
	keys, err := d.source.KeyState()
	if err != nil {
		l.Logger.Warn("Events dropped and key state unavailable", "device", d.Name, "error", err)
		return
	}
	d.Keys = keys
	l.Logger.Warn("Events dropped by the kernel; key state resynchronized", "device", d.Name)
}
