package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alia5/capsule/input"
)

// Monitor prints the raw events of one device without grabbing it.
type Monitor struct {
	Device string `arg:"" help:"Event device, e.g. /dev/input/by-path/platform-i8042-serio-0-event-kbd" type:"path"`
	Syn    bool   `help:"Also print EV_SYN and EV_MSC events"`
}

// Run is called by Kong when the monitor command is executed.
func (m *Monitor) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return m.watch(ctx, logger)
}

// describe renders one event, or "" when it is filtered out.
func (m *Monitor) describe(ev input.Event) string {
	if !m.Syn && (ev.Type == input.EvSyn || ev.Type == input.EvMsc) {
		return ""
	}
	if ev.IsKey() {
		return ev.String() + " " + ev.Transition().String()
	}
	return ev.String()
}

// interrupted reports a Ctrl+C typed on the monitored device.
func interrupted(keys *input.KeyBitmap, ev input.Event) bool {
	if !ev.IsKey() || ev.Code != input.KeyC || ev.Transition() != input.Down {
		return false
	}
	return keys.Pressed(input.KeyLeftCtrl) || keys.Pressed(input.KeyRightCtrl)
}
