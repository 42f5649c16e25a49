package engine_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/capsule/input"
	"github.com/Alia5/capsule/internal/engine"
	"github.com/Alia5/capsule/remap"
)

func down(c input.Code) input.Event { return input.Key(c, input.Down) }
func up(c input.Code) input.Event   { return input.Key(c, input.Up) }

type harness struct {
	backend *fakeBackend
	hotplug *fakeNotifier
	poller  *scriptPoller
	loop    *engine.Loop
	ctx     context.Context
}

func newHarness(t *testing.T, policy *remap.Config, b *fakeBackend, steps ...func()) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hp := &fakeNotifier{fd: 3}
	p := &scriptPoller{backend: b, hotplug: hp, steps: steps, done: cancel}
	return &harness{
		backend: b,
		hotplug: hp,
		poller:  p,
		ctx:     ctx,
		loop: &engine.Loop{
			Registry: engine.NewRegistry(b, policy, 0, discard),
			Poller:   p,
			Hotplug:  hp,
			Logger:   discard,
		},
	}
}

func (h *harness) run() error {
	return h.loop.Run(h.ctx)
}

// framed interleaves a sync after every event, the way synthesized output
// is written.
func framed(evs ...input.Event) []input.Event {
	out := make([]input.Event, 0, 2*len(evs))
	for _, ev := range evs {
		out = append(out, ev, input.Sync())
	}
	return out
}

func TestLoopSequences(t *testing.T) {
	tests := []struct {
		name string
		swap bool
		in   []input.Event
		want []input.Event
	}{
		{
			name: "tap caps lock",
			in:   []input.Event{down(input.KeyCapsLock), up(input.KeyCapsLock)},
			want: framed(down(input.KeyCapsLock), up(input.KeyCapsLock)),
		},
		{
			name: "tap caps lock as escape",
			swap: true,
			in:   []input.Event{down(input.KeyCapsLock), up(input.KeyCapsLock)},
			want: framed(down(input.KeyEsc), up(input.KeyEsc)),
		},
		{
			name: "caps plus h is left",
			in: []input.Event{
				down(input.KeyCapsLock), down(input.KeyH), up(input.KeyH), up(input.KeyCapsLock),
			},
			want: framed(down(input.KeyLeft), up(input.KeyLeft)),
		},
		{
			name: "caps plus y is right alt 7",
			in: []input.Event{
				down(input.KeyCapsLock), down(input.KeyY), up(input.KeyY), up(input.KeyCapsLock),
			},
			want: framed(
				down(input.KeyRightAlt), down(input.Key7),
				up(input.KeyRightAlt), up(input.Key7),
			),
		},
		{
			name: "h alone passes through with its frame",
			in:   []input.Event{down(input.KeyH), input.Sync(), up(input.KeyH), input.Sync()},
			want: []input.Event{down(input.KeyH), input.Sync(), up(input.KeyH), input.Sync()},
		},
		{
			name: "other key under caps cancels the tap",
			in: []input.Event{
				down(input.KeyCapsLock), down(input.KeyA), up(input.KeyA), up(input.KeyCapsLock),
			},
			want: []input.Event{down(input.KeyA), up(input.KeyA)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend()
			src := b.plug(1, "a")
			h := newHarness(t, remap.DefaultConfig(tt.swap), b, func() { src.push(tt.in...) })

			require.NoError(t, h.run())
			assert.Equal(t, tt.want, b.sinks["a"].written)
		})
	}
}

func TestLoopKillswitch(t *testing.T) {
	b := newBackend()
	src := b.plug(1, "a")
	h := newHarness(t, remap.DefaultConfig(false), b, func() {
		src.push(down(input.KeyLeftCtrl), down(input.KeyRightCtrl), down(input.KeyH))
	})

	err := h.run()
	require.ErrorIs(t, err, engine.ErrKillswitch)

	assert.Equal(t, []input.Event{down(input.KeyLeftCtrl)}, b.sinks["a"].written, "nothing after the killswitch is processed")
	assert.True(t, src.closed)
	assert.True(t, b.sinks["a"].closed)
}

func TestLoopKillswitchSeesKeysHeldBeforeStart(t *testing.T) {
	b := newBackend()
	src := b.plug(1, "a")
	src.held.Set(input.KeyRightCtrl, true)
	h := newHarness(t, remap.DefaultConfig(false), b, func() {
		src.push(down(input.KeyLeftCtrl))
	})

	require.ErrorIs(t, h.run(), engine.ErrKillswitch)
	assert.Empty(t, b.sinks["a"].written)
}

func TestLoopDevicesAreIndependent(t *testing.T) {
	b := newBackend()
	a := b.plug(1, "a")
	c := b.plug(2, "b")
	h := newHarness(t, remap.DefaultConfig(false), b,
		func() { a.push(down(input.KeyCapsLock)) },
		func() { c.push(down(input.KeyH), up(input.KeyH)) },
		func() { a.push(down(input.KeyJ), up(input.KeyJ), up(input.KeyCapsLock)) },
	)

	require.NoError(t, h.run())
	assert.Equal(t, []input.Event{down(input.KeyH), up(input.KeyH)}, b.sinks["b"].written)
	assert.Equal(t, []input.Event{down(input.KeyDown), up(input.KeyDown)}, b.sinks["a"].keys())
}

func TestLoopHotplugKeepsStateOfRemainingDevices(t *testing.T) {
	b := newBackend()
	a := b.plug(1, "a")
	var late *fakeSource
	h := newHarness(t, remap.DefaultConfig(false), b)
	h.poller.steps = []func(){
		func() { a.push(down(input.KeyCapsLock)) },
		func() {
			late = b.plug(2, "b")
			h.hotplug.pending = true
		},
		func() { late.push(down(input.KeyK), up(input.KeyK)) },
		func() { a.push(down(input.KeyL), up(input.KeyL), up(input.KeyCapsLock)) },
	}

	require.NoError(t, h.run())
	assert.Equal(t, 1, h.hotplug.drained)
	assert.Equal(t, []input.Event{down(input.KeyK), up(input.KeyK)}, b.sinks["b"].written)
	assert.Equal(t, []input.Event{down(input.KeyRight), up(input.KeyRight)}, b.sinks["a"].keys())
}

func TestLoopRemovesFailingDevices(t *testing.T) {
	b := newBackend()
	a := b.plug(1, "a")
	c := b.plug(2, "b")
	d := b.plug(3, "c")
	h := newHarness(t, remap.DefaultConfig(false), b,
		func() { a.failed = true },
		func() { c.gone = true },
		func() {
			b.sinks["c"].failed = true
			d.push(down(input.KeyA))
		},
	)
	var left int
	h.poller.steps = append(h.poller.steps, func() { left = h.loop.Registry.Len() })

	var logs bytes.Buffer
	h.loop.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	require.NoError(t, h.run())
	assert.Zero(t, left)
	assert.True(t, a.closed)
	assert.True(t, c.closed)
	assert.True(t, d.closed)
	assert.Equal(t, 1, strings.Count(logs.String(), "No keyboards left"), logs.String())
	assert.Contains(t, logs.String(), "lastDevice=kbd-3")
}

func TestLoopNoKeyboardsAtStartup(t *testing.T) {
	b := newBackend()
	b.plugWith(1, "mouse", []input.Code{input.KeyA})
	h := newHarness(t, remap.DefaultConfig(false), b)

	require.ErrorIs(t, h.run(), engine.ErrNoKeyboards)
	assert.Zero(t, h.poller.waits)
}

func TestLoopWaitsAfterLastKeyboardLeaves(t *testing.T) {
	b := newBackend()
	b.plug(1, "a")
	var back *fakeSource
	h := newHarness(t, remap.DefaultConfig(false), b)
	h.poller.steps = []func(){
		func() {
			b.unplug("a")
			h.hotplug.pending = true
		},
		func() {
			back = b.plug(2, "b")
			h.hotplug.pending = true
		},
		func() { back.push(down(input.KeyH)) },
	}

	require.NoError(t, h.run())
	assert.Equal(t, []input.Event{down(input.KeyH)}, b.sinks["b"].written)
}

func TestLoopRescanWithFailuresAndNoKeyboardsIsFatal(t *testing.T) {
	b := newBackend()
	b.plug(1, "a")
	h := newHarness(t, remap.DefaultConfig(false), b)
	h.poller.steps = []func(){
		func() {
			b.unplug("a")
			b.plug(2, "b")
			b.sinkErr["b"] = true
			h.hotplug.pending = true
		},
	}

	require.ErrorIs(t, h.run(), engine.ErrNoKeyboards)
}

func TestLoopGrabsAfterSettleAndRetries(t *testing.T) {
	b := newBackend()
	a := b.plug(1, "a")
	a.grabErrs = 1
	h := newHarness(t, remap.DefaultConfig(false), b)
	h.loop.Settle = 5 * time.Millisecond

	var grabsBeforeHotplug int
	h.poller.steps = []func(){
		func() {
			grabsBeforeHotplug = a.grabs
			h.hotplug.pending = true
		},
		func() {},
	}

	require.NoError(t, h.run())
	assert.Equal(t, 1, grabsBeforeHotplug)
	assert.Equal(t, 2, a.grabs, "failed grab is retried on the next scan")
}

func TestLoopSettleIsCancellable(t *testing.T) {
	b := newBackend()
	a := b.plug(1, "a")
	h := newHarness(t, remap.DefaultConfig(false), b)
	h.loop.Settle = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.loop.Run(ctx))
	assert.Zero(t, a.grabs)
	assert.True(t, a.closed)
}

func TestLoopResyncsAfterDroppedEvents(t *testing.T) {
	b := newBackend()
	src := b.plug(1, "a")
	h := newHarness(t, remap.DefaultConfig(false), b, func() {
		// The LeftCtrl release was lost; the kernel reports nothing held.
		src.push(down(input.KeyLeftCtrl), input.Event{Type: input.EvSyn, Code: input.SynDropped})
	}, func() {
		src.push(down(input.KeyRightCtrl), up(input.KeyRightCtrl))
	})

	require.NoError(t, h.run())
	assert.Equal(t, []input.Event{
		down(input.KeyLeftCtrl),
		down(input.KeyRightCtrl), up(input.KeyRightCtrl),
	}, b.sinks["a"].written)
}
