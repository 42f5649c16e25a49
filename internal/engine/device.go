// Package engine owns the set of grabbed keyboards and the event loop that
// feeds their input through the remap state machine into virtual devices.
//
// Device nodes and virtual devices sit behind the Backend, Source, Sink,
// Poller and Notifier interfaces; the loop itself is single-threaded.
package engine

import (
	"errors"

	"github.com/Alia5/capsule/input"
	"github.com/Alia5/capsule/remap"
)

var (
	// ErrNoEvent is returned by Source.ReadEvent when nothing is buffered.
	ErrNoEvent = errors.New("no event available")
	// ErrDeviceGone is returned by Source.ReadEvent after the device was unplugged.
	ErrDeviceGone = errors.New("device removed")
	// ErrNotKeyboard rejects a device lacking key events or the dual-role key.
	ErrNotKeyboard = errors.New("not a qualifying keyboard")
	// ErrNoKeyboards is the soft failure of a scan that left no usable device.
	ErrNoKeyboards = errors.New("no usable keyboard found")
	// ErrTooManyDevices is returned when the configured device limit is exceeded.
	ErrTooManyDevices = errors.New("too many keyboards")
	// ErrKillswitch stops the loop when the panic combination is held.
	ErrKillswitch = errors.New("killswitch activated")
)

// DeviceID identifies a device node across rescans. A node that is removed
// and recreated gets a new ID.
type DeviceID uint64

// Candidate is a device node found by enumeration.
type Candidate struct {
	ID   DeviceID
	Path string
}

// Source is a physical input device opened for non-blocking reads.
type Source interface {
	// Fd is the descriptor polled for readability.
	Fd() int
	Name() string
	// ReadEvent returns the next buffered event, ErrNoEvent when none is
	// buffered, or ErrDeviceGone once the device has disappeared.
	ReadEvent() (input.Event, error)
	// SupportsKeys reports whether the device emits EV_KEY events.
	SupportsKeys() bool
	HasKey(code input.Code) bool
	// KeyState reads the keys the kernel currently reports as held.
	KeyState() (input.KeyBitmap, error)
	Grab() error
	Ungrab() error
	Close() error
}

// Sink is a virtual device that injects events as if typed.
type Sink interface {
	Write(events ...input.Event) error
	// Close destroys the virtual device.
	Close() error
}

// Backend enumerates, opens and mirrors physical devices.
type Backend interface {
	Enumerate() ([]Candidate, error)
	Open(c Candidate) (Source, error)
	// CreateSink creates a virtual device with the capabilities of src.
	CreateSink(src Source) (Sink, error)
}

// Notifier is a readiness handle, such as the hotplug source.
type Notifier interface {
	Fd() int
	// Drain consumes every pending notification.
	Drain()
}

// Waker is a Notifier that can be signalled from another goroutine.
type Waker interface {
	Notifier
	Signal()
}

// Readiness is the poll result for one descriptor.
type Readiness uint8

const (
	Readable Readiness = 1 << iota
	Failed
)

// Poller blocks without timeout until at least one descriptor is ready and
// returns one Readiness per descriptor, in order.
type Poller interface {
	Wait(fds []int) ([]Readiness, error)
}

// Device is a tracked keyboard: the physical source, its virtual twin and the
// remap state. It is owned by the Registry.
type Device struct {
	ID   DeviceID
	Path string
	Name string

	// State is the remap state machine state of this device.
	State remap.State
	// Keys mirrors the physical key state, used for the killswitch.
	Keys input.KeyBitmap

	source  Source
	sink    Sink
	grabbed bool
}

// Grabbed reports whether exclusive access was acquired.
func (d *Device) Grabbed() bool {
	return d.grabbed
}

func (d *Device) close() error {
	var errs []error
	if d.grabbed {
		if err := d.source.Ungrab(); err != nil {
			errs = append(errs, err)
		}
		d.grabbed = false
	}
	if d.sink != nil {
		if err := d.sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.source.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
