//go:build linux

package evdev

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	goevdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"

	"github.com/Alia5/capsule/input"
	"github.com/Alia5/capsule/internal/engine"
)

// CreateFunc creates a uinput device with the given capabilities.
type CreateFunc func(name string, id goevdev.InputID, caps map[goevdev.EvType][]goevdev.EvCode) (*goevdev.InputDevice, error)

// Backend enumerates keyboards in a device directory such as
// /dev/input/by-path and mirrors them through /dev/uinput.
type Backend struct {
	// Dir is scanned for entries whose name contains Match.
	Dir   string
	Match string
	// Extra keys every virtual device advertises on top of the physical
	// device's own, typically the policy's output keys.
	Extra  []input.Code
	Logger *slog.Logger
	// Create defaults to goevdev.CreateDevice.
	Create CreateFunc
}

// Enumerate lists the matching entries. Entries are symlinks to event nodes;
// the ID is the inode of the node itself, so a re-created node is new.
func (b *Backend) Enumerate() ([]engine.Candidate, error) {
	entries, err := os.ReadDir(b.Dir)
	if err != nil {
		return nil, err
	}
	var out []engine.Candidate
	for _, e := range entries {
		if b.Match != "" && !strings.Contains(e.Name(), b.Match) {
			continue
		}
		path := filepath.Join(b.Dir, e.Name())
		var st unix.Stat_t
		if err := unix.Stat(path, &st); err != nil {
			// Dangling link of a device being removed.
			b.Logger.Debug("Skipping unreadable device entry", "path", path, "error", err)
			continue
		}
		if st.Mode&unix.S_IFMT != unix.S_IFCHR {
			continue
		}
		out = append(out, engine.Candidate{ID: engine.DeviceID(st.Ino), Path: path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (b *Backend) Open(c engine.Candidate) (engine.Source, error) {
	src, err := Open(c.Path)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(src.Name(), NamePrefix) {
		_ = src.Close()
		return nil, fmt.Errorf("%s is a virtual device of this process: %w", c.Path, engine.ErrNotKeyboard)
	}
	return src, nil
}

// CreateSink creates the virtual twin of a Source opened by this backend. The
// twin has every mirrored capability of the source, so forwarded pointer,
// switch and LED events are not dropped by the kernel.
func (b *Backend) CreateSink(src engine.Source) (engine.Sink, error) {
	s, ok := src.(*Source)
	if !ok {
		return nil, errors.New("source was not opened by the evdev backend")
	}
	create := b.Create
	if create == nil {
		create = goevdev.CreateDevice
	}

	id := s.id
	if id.BusType == 0 {
		id.BusType = goevdev.BUS_VIRTUAL
	}
	dev, err := create(NamePrefix+s.Name(), id, sinkCapabilities(s.Capabilities(), b.Extra))
	if err != nil {
		return nil, fmt.Errorf("create uinput device for %s: %w", s.Path(), err)
	}
	return &Sink{dev: dev}, nil
}

// sinkCapabilities merges extra keys into the key capabilities of a device.
func sinkCapabilities(caps map[input.Type][]input.Code, extra []input.Code) map[goevdev.EvType][]goevdev.EvCode {
	var keys input.KeyBitmap
	for _, c := range caps[input.EvKey] {
		keys.Set(c, true)
	}
	for _, c := range extra {
		keys.Set(c, true)
	}
	caps[input.EvKey] = keys.Held()
	return caps
}
