package remap

import "github.com/Alia5/capsule/input"

// Result is the decision for one raw event. When Forward is set the raw event
// is passed through unchanged and Events is empty; otherwise the raw event is
// swallowed and Events (possibly none) are emitted in its place.
type Result struct {
	Forward bool
	Events  []input.Event
}

// Swallowed reports whether the raw event was dropped without replacement.
func (r Result) Swallowed() bool {
	return !r.Forward && len(r.Events) == 0
}

var forward = Result{Forward: true}

// Process runs one raw event from a device through the state machine,
// updating st in place. c is never modified and may be shared by devices.
func (c *Config) Process(st *State, ev input.Event) Result {
	if ev.Type != input.EvKey {
		return forward
	}

	if to, ok := c.substitute(ev.Code); ok {
		return Result{Events: []input.Event{{Type: input.EvKey, Code: to, Value: ev.Value}}}
	}

	t := ev.Transition()

	if ev.Code == c.DualRole.Physical {
		return c.processDualRole(st, t)
	}

	i := c.ruleFor(ev.Code)
	if i < 0 {
		if st.ModifierHeld && t == input.Down {
			st.ConsumedByOtherKey = true
		}
		return forward
	}

	// The key behaves normally unless the modifier was held at its Down;
	// a key already down before the modifier keeps passing through.
	if t == input.Down && !st.ModifierHeld {
		return forward
	}
	if t != input.Down && !st.Activated(i) {
		return forward
	}

	r := c.Rules[i]
	events := make([]input.Event, 0, 4)
	if t != input.Repeat {
		if r.LeftAlt {
			events = append(events, input.Key(input.KeyLeftAlt, t))
		}
		if r.RightAlt {
			events = append(events, input.Key(input.KeyRightAlt, t))
		}
		if r.LeftCtrl {
			events = append(events, input.Key(input.KeyLeftCtrl, t))
		}
	}
	events = append(events, input.Event{Type: input.EvKey, Code: r.Output, Value: ev.Value})

	if t != input.Repeat {
		activated := t == input.Down && st.ModifierHeld
		st.setActivated(i, activated)
		if activated {
			st.ConsumedByOtherKey = true
		}
	}
	return Result{Events: events}
}

func (c *Config) processDualRole(st *State, t input.Transition) Result {
	switch t {
	case input.Repeat:
		return Result{}
	case input.Down:
		st.ModifierHeld = true
		st.ConsumedByOtherKey = false
		return Result{}
	}

	st.ModifierHeld = false
	if st.ConsumedByOtherKey {
		return Result{}
	}
	return Result{Events: []input.Event{
		input.Key(c.DualRole.Primary, input.Down),
		input.Key(c.DualRole.Primary, input.Up),
	}}
}
