//go:build linux

package evdev

import (
	"errors"

	goevdev "github.com/holoplot/go-evdev"

	"github.com/Alia5/capsule/input"
)

// NamePrefix marks the virtual devices, so enumeration never picks up its
// own output.
const NamePrefix = "capsule: "

// Sink is a uinput virtual device.
type Sink struct {
	dev *goevdev.InputDevice
}

// Write injects events in order. The kernel stamps their time.
func (s *Sink) Write(events ...input.Event) error {
	for _, ev := range events {
		if err := s.dev.WriteOne(&goevdev.InputEvent{Type: ev.Type, Code: ev.Code, Value: ev.Value}); err != nil {
			return err
		}
	}
	return nil
}

// Close destroys the virtual device.
func (s *Sink) Close() error {
	return errors.Join(goevdev.DestroyDevice(s.dev), s.dev.Close())
}
