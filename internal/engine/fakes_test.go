package engine_test

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Alia5/capsule/input"
	"github.com/Alia5/capsule/internal/engine"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSource struct {
	fd     int
	name   string
	keys   []input.Code
	events []input.Event
	held   input.KeyBitmap

	gone     bool
	failed   bool
	grabErrs int

	grabbed bool
	closed  bool
	grabs   int
}

func (s *fakeSource) Fd() int      { return s.fd }
func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) ReadEvent() (input.Event, error) {
	if len(s.events) == 0 {
		if s.gone {
			return input.Event{}, engine.ErrDeviceGone
		}
		return input.Event{}, engine.ErrNoEvent
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

func (s *fakeSource) SupportsKeys() bool { return len(s.keys) > 0 }

func (s *fakeSource) HasKey(code input.Code) bool {
	for _, k := range s.keys {
		if k == code {
			return true
		}
	}
	return false
}

func (s *fakeSource) KeyState() (input.KeyBitmap, error) { return s.held, nil }

func (s *fakeSource) Grab() error {
	s.grabs++
	if s.grabErrs > 0 {
		s.grabErrs--
		return errors.New("device or resource busy")
	}
	s.grabbed = true
	return nil
}

func (s *fakeSource) Ungrab() error {
	s.grabbed = false
	return nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

// push queues raw events.
func (s *fakeSource) push(evs ...input.Event) {
	s.events = append(s.events, evs...)
}

type fakeSink struct {
	written []input.Event
	failed  bool
	closed  bool
}

func (s *fakeSink) Write(events ...input.Event) error {
	if s.failed {
		return errors.New("write failed")
	}
	s.written = append(s.written, events...)
	return nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

// keys returns only the EV_KEY events written.
func (s *fakeSink) keys() []input.Event {
	var out []input.Event
	for _, ev := range s.written {
		if ev.IsKey() {
			out = append(out, ev)
		}
	}
	return out
}

type fakeBackend struct {
	candidates []engine.Candidate
	sources    map[string]*fakeSource
	sinks      map[string]*fakeSink
	sinkErr    map[string]bool
	enumErr    error
	nextFd     int
}

func newBackend() *fakeBackend {
	return &fakeBackend{
		sources: make(map[string]*fakeSource),
		sinks:   make(map[string]*fakeSink),
		sinkErr: make(map[string]bool),
		nextFd:  10,
	}
}

var keyboardKeys = []input.Code{
	input.KeyEsc, input.KeyCapsLock, input.KeyLeftCtrl, input.KeyRightCtrl,
	input.KeyH, input.KeyJ, input.KeyK, input.KeyL, input.KeyA, input.KeyY,
}

// plug adds a keyboard node and returns its source.
func (b *fakeBackend) plug(id engine.DeviceID, path string) *fakeSource {
	return b.plugWith(id, path, keyboardKeys)
}

func (b *fakeBackend) plugWith(id engine.DeviceID, path string, keys []input.Code) *fakeSource {
	b.nextFd++
	src := &fakeSource{fd: b.nextFd, name: fmt.Sprintf("kbd-%d", id), keys: keys}
	b.candidates = append(b.candidates, engine.Candidate{ID: id, Path: path})
	b.sources[path] = src
	return src
}

func (b *fakeBackend) unplug(path string) {
	for i, c := range b.candidates {
		if c.Path == path {
			b.candidates = append(b.candidates[:i], b.candidates[i+1:]...)
			break
		}
	}
}

func (b *fakeBackend) Enumerate() ([]engine.Candidate, error) {
	if b.enumErr != nil {
		return nil, b.enumErr
	}
	return append([]engine.Candidate(nil), b.candidates...), nil
}

func (b *fakeBackend) Open(c engine.Candidate) (engine.Source, error) {
	src, ok := b.sources[c.Path]
	if !ok {
		return nil, errors.New("no such device")
	}
	src.closed = false
	return src, nil
}

func (b *fakeBackend) CreateSink(src engine.Source) (engine.Sink, error) {
	for path, s := range b.sources {
		if s != src {
			continue
		}
		if b.sinkErr[path] {
			return nil, errors.New("uinput unavailable")
		}
		sink := &fakeSink{}
		b.sinks[path] = sink
		return sink, nil
	}
	return nil, errors.New("unknown source")
}

func (b *fakeBackend) byFd(fd int) *fakeSource {
	for _, s := range b.sources {
		if s.fd == fd {
			return s
		}
	}
	return nil
}

type fakeNotifier struct {
	fd      int
	pending bool
	drained int
}

func (n *fakeNotifier) Fd() int { return n.fd }

func (n *fakeNotifier) Drain() {
	n.pending = false
	n.drained++
}

// scriptPoller runs one step before each wait and derives readiness from the
// fakes. When the script is exhausted it calls done, which is expected to
// cancel the loop's context.
type scriptPoller struct {
	backend *fakeBackend
	hotplug *fakeNotifier
	steps   []func()
	done    func()
	waits   int
}

func (p *scriptPoller) Wait(fds []int) ([]engine.Readiness, error) {
	p.waits++
	if len(p.steps) == 0 {
		p.done()
	} else {
		step := p.steps[0]
		p.steps = p.steps[1:]
		step()
	}

	out := make([]engine.Readiness, len(fds))
	for i, fd := range fds {
		switch {
		case fd == p.hotplug.fd:
			if p.hotplug.pending {
				out[i] = engine.Readable
			}
		default:
			src := p.backend.byFd(fd)
			if src == nil {
				continue
			}
			if src.failed {
				out[i] = engine.Failed
			} else if len(src.events) > 0 || src.gone {
				out[i] = engine.Readable
			}
		}
	}
	return out, nil
}
