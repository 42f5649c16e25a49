//go:build linux

package evdev

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"unsafe"

	goevdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"

	"github.com/Alia5/capsule/input"
	"github.com/Alia5/capsule/internal/engine"
)

const readBatch = 64

// Source is an opened evdev node.
type Source struct {
	fd   int
	path string
	name string
	id   goevdev.InputID

	evBits  [int(input.EvMax)/8 + 1]byte
	keyBits input.KeyBitmap
	// caps lists the codes of every mirrored event type.
	caps map[input.Type][]input.Code

	buf     []byte
	pending []byte
}

// Open opens path for non-blocking reads and loads its capabilities.
func Open(path string) (*Source, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	s := &Source{fd: fd, path: path, buf: make([]byte, readBatch*eventSize)}

	if err := s.load(); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// mirrored are the event types a virtual twin takes over. EV_REP is left out
// so the twin does not repeat on its own on top of the forwarded repeats;
// force feedback needs an effect upload handler uinput clients must serve.
var mirrored = []input.Type{
	input.EvKey, input.EvRel, input.EvAbs, input.EvMsc,
	input.EvSw, input.EvLed, input.EvSnd,
}

func (s *Source) load() error {
	if err := ioctlBuf(s.fd, eviocgbit(0, len(s.evBits)), unsafe.Pointer(&s.evBits[0])); err != nil {
		return fmt.Errorf("read event types: %w", err)
	}
	if s.SupportsKeys() {
		if err := ioctlBuf(s.fd, eviocgbit(input.EvKey, len(s.keyBits)), unsafe.Pointer(&s.keyBits[0])); err != nil {
			return fmt.Errorf("read key capabilities: %w", err)
		}
	}
	s.caps = make(map[input.Type][]input.Code)
	for _, t := range mirrored {
		if !testBit(s.evBits[:], int(t)) {
			continue
		}
		if t == input.EvKey {
			s.caps[t] = s.keyBits.Held()
			continue
		}
		var bits [input.KeyBitmapSize]byte
		if err := ioctlBuf(s.fd, eviocgbit(t, len(bits)), unsafe.Pointer(&bits[0])); err != nil {
			return fmt.Errorf("read %s capabilities: %w", input.TypeName(t), err)
		}
		s.caps[t] = setBits(bits[:])
	}

	var name [256]byte
	if err := ioctlBuf(s.fd, eviocgname(len(name)), unsafe.Pointer(&name[0])); err == nil {
		if i := bytes.IndexByte(name[:], 0); i >= 0 {
			s.name = string(name[:i])
		}
	}
	if s.name == "" {
		s.name = s.path
	}
	_ = ioctlBuf(s.fd, eviocgid, unsafe.Pointer(&s.id))
	return nil
}

func (s *Source) Fd() int      { return s.fd }
func (s *Source) Name() string { return s.name }
func (s *Source) Path() string { return s.path }

// ReadEvent returns the next buffered event. Reads are batched; the kernel
// only ever returns whole events.
func (s *Source) ReadEvent() (input.Event, error) {
	for len(s.pending) < eventSize {
		n, err := unix.Read(s.fd, s.buf)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return input.Event{}, engine.ErrNoEvent
		case errors.Is(err, unix.ENODEV):
			return input.Event{}, engine.ErrDeviceGone
		case err != nil:
			return input.Event{}, fmt.Errorf("read %s: %w", s.path, err)
		case n == 0:
			return input.Event{}, engine.ErrDeviceGone
		}
		s.pending = s.buf[:n]
	}
	ev := decodeEvent(s.pending[:eventSize])
	s.pending = s.pending[eventSize:]
	return ev, nil
}

func (s *Source) SupportsKeys() bool {
	return testBit(s.evBits[:], int(input.EvKey))
}

func (s *Source) HasKey(code input.Code) bool {
	return s.keyBits.Pressed(code)
}

// Capabilities returns the codes of every event type a virtual twin mirrors.
func (s *Source) Capabilities() map[input.Type][]input.Code {
	out := make(map[input.Type][]input.Code, len(s.caps))
	for t, codes := range s.caps {
		out[t] = append([]input.Code(nil), codes...)
	}
	return out
}

// KeyState asks the kernel which keys are currently held.
func (s *Source) KeyState() (input.KeyBitmap, error) {
	var keys input.KeyBitmap
	if err := ioctlBuf(s.fd, eviocgkey(len(keys)), unsafe.Pointer(&keys[0])); err != nil {
		return keys, fmt.Errorf("read key state of %s: %w", s.path, err)
	}
	return keys, nil
}

// Grab takes exclusive access: no other reader, the display server
// included, receives events from the device while grabbed.
func (s *Source) Grab() error {
	if err := unix.IoctlSetInt(s.fd, eviocgrab, 1); err != nil {
		return fmt.Errorf("grab %s: %w", s.path, err)
	}
	return nil
}

func (s *Source) Ungrab() error {
	if err := unix.IoctlSetInt(s.fd, eviocgrab, 0); err != nil && !errors.Is(err, unix.ENODEV) {
		return fmt.Errorf("ungrab %s: %w", s.path, err)
	}
	return nil
}

func (s *Source) Close() error {
	return unix.Close(s.fd)
}
