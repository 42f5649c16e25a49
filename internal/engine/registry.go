package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Alia5/capsule/remap"
)

// ScanReport summarizes one registry scan.
type ScanReport struct {
	Added   int
	Removed int
	// Skipped counts devices that are not keyboards by the policy's criteria.
	Skipped int
	// Failed counts keyboards that could not be opened or mirrored.
	Failed int
	Active int
}

// Registry tracks the live keyboards keyed by DeviceID. It is not safe for
// concurrent use; the event loop is its only caller.
type Registry struct {
	backend    Backend
	policy     *remap.Config
	maxDevices int
	logger     *slog.Logger
	devices    map[DeviceID]*Device
}

// NewRegistry returns an empty registry. maxDevices <= 0 means unlimited.
func NewRegistry(backend Backend, policy *remap.Config, maxDevices int, logger *slog.Logger) *Registry {
	return &Registry{
		backend:    backend,
		policy:     policy,
		maxDevices: maxDevices,
		logger:     logger,
		devices:    make(map[DeviceID]*Device),
	}
}

// Scan enumerates the device namespace, removes keyboards that disappeared
// and sets up new ones. Devices present before and after keep their state.
// Only qualifying keyboards count toward the device limit. ErrNoKeyboards is
// returned, together with the report, when nothing usable is left.
func (r *Registry) Scan() (ScanReport, error) {
	var report ScanReport

	candidates, err := r.backend.Enumerate()
	if err != nil {
		return report, fmt.Errorf("enumerate devices: %w", err)
	}

	seen := make(map[DeviceID]bool, len(candidates))
	for _, c := range candidates {
		seen[c.ID] = true
	}
	for id := range r.devices {
		if seen[id] {
			continue
		}
		if err := r.Remove(id); err != nil {
			r.logger.Warn("Error releasing keyboard", "id", id, "error", err)
		}
		report.Removed++
	}

	for _, c := range candidates {
		if _, ok := r.devices[c.ID]; ok {
			continue
		}
		dev, err := r.setup(c)
		if err != nil {
			if errors.Is(err, ErrNotKeyboard) {
				r.logger.Debug("Skipping device", "path", c.Path, "reason", err)
				report.Skipped++
				continue
			}
			r.logger.Error("Failed to set up keyboard", "path", c.Path, "error", err)
			report.Failed++
			continue
		}
		if r.maxDevices > 0 && len(r.devices) >= r.maxDevices {
			_ = dev.close()
			report.Active = len(r.devices)
			return report, fmt.Errorf("%w: limit is %d, cannot track %s", ErrTooManyDevices, r.maxDevices, c.Path)
		}
		r.devices[c.ID] = dev
		report.Added++
		r.logger.Info("Keyboard added", "device", dev.Name, "path", dev.Path, "id", dev.ID)
	}

	report.Active = len(r.devices)
	if report.Active == 0 {
		return report, ErrNoKeyboards
	}
	return report, nil
}

func (r *Registry) setup(c Candidate) (*Device, error) {
	src, err := r.backend.Open(c)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	dev := &Device{
		ID:     c.ID,
		Path:   c.Path,
		Name:   src.Name(),
		source: src,
	}

	if !src.SupportsKeys() || !src.HasKey(r.policy.DualRole.Physical) {
		_ = dev.close()
		return nil, ErrNotKeyboard
	}

	if keys, err := src.KeyState(); err != nil {
		r.logger.Debug("Could not read initial key state", "path", c.Path, "error", err)
	} else {
		dev.Keys = keys
	}

	sink, err := r.backend.CreateSink(src)
	if err != nil {
		_ = dev.close()
		return nil, fmt.Errorf("create virtual device: %w", err)
	}
	dev.sink = sink
	return dev, nil
}

// Remove releases the grab, destroys the virtual device and forgets id.
func (r *Registry) Remove(id DeviceID) error {
	dev, ok := r.devices[id]
	if !ok {
		return nil
	}
	delete(r.devices, id)
	r.logger.Info("Keyboard removed", "device", dev.Name, "path", dev.Path, "id", id)
	return dev.close()
}

// GrabAll tries to grab every device not grabbed yet. Failures are logged and
// retried on the next call.
func (r *Registry) GrabAll() {
	for _, dev := range r.Devices() {
		if dev.grabbed {
			continue
		}
		if err := dev.source.Grab(); err != nil {
			r.logger.Warn("Failed to grab keyboard", "device", dev.Name, "path", dev.Path, "error", err)
			continue
		}
		dev.grabbed = true
		r.logger.Debug("Keyboard grabbed", "device", dev.Name, "path", dev.Path)
	}
}

// Policy returns the configuration devices are qualified and remapped with.
func (r *Registry) Policy() *remap.Config {
	return r.policy
}

// Devices returns the tracked devices ordered by ID.
func (r *Registry) Devices() []*Device {
	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the device with the given ID.
func (r *Registry) Get(id DeviceID) (*Device, bool) {
	d, ok := r.devices[id]
	return d, ok
}

// Len returns the number of tracked devices.
func (r *Registry) Len() int {
	return len(r.devices)
}

// Close removes every device.
func (r *Registry) Close() error {
	var errs []error
	for id := range r.devices {
		if err := r.Remove(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
