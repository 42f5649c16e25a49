package remap

// State is the per-device mutable part of the state machine. The zero value
// is a device with nothing held.
type State struct {
	// ModifierHeld is true between the Down and Up of the dual-role key.
	ModifierHeld bool
	// ConsumedByOtherKey is set once another key goes down while the modifier
	// is held; the dual-role release then emits nothing.
	ConsumedByOtherKey bool

	// activated holds the indices of rules whose last Down fired the mapping.
	activated map[int]struct{}
}

// Activated reports whether the last Down of rule i fired its mapping.
func (s *State) Activated(i int) bool {
	_, ok := s.activated[i]
	return ok
}

func (s *State) setActivated(i int, on bool) {
	if !on {
		delete(s.activated, i)
		return
	}
	if s.activated == nil {
		s.activated = make(map[int]struct{})
	}
	s.activated[i] = struct{}{}
}

// ActiveRules returns the number of rules currently activated.
func (s *State) ActiveRules() int {
	return len(s.activated)
}
