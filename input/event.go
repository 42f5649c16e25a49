// Package input holds the key and event vocabulary shared by the remap engine
// and the platform device layers. Types, codes and their names are those of
// github.com/holoplot/go-evdev, which mirrors linux/input-event-codes.h.
package input

import (
	"fmt"

	"github.com/holoplot/go-evdev"
)

// Type is an evdev event type.
type Type = evdev.EvType

// Code is an evdev event code. For EV_KEY events it is the key code.
type Code = evdev.EvCode

// Event types
const (
	EvSyn Type = evdev.EV_SYN
	EvKey Type = evdev.EV_KEY
	EvRel Type = evdev.EV_REL
	EvAbs Type = evdev.EV_ABS
	EvMsc Type = evdev.EV_MSC
	EvSw  Type = evdev.EV_SW
	EvLed Type = evdev.EV_LED
	EvSnd Type = evdev.EV_SND
	EvRep Type = evdev.EV_REP
	EvFF  Type = evdev.EV_FF

	EvMax Type = evdev.EV_MAX
)

// Sync codes
const (
	SynReport  Code = evdev.SYN_REPORT
	SynDropped Code = evdev.SYN_DROPPED
)

// Transition is the value of an EV_KEY event.
type Transition int32

const (
	Up     Transition = 0
	Down   Transition = 1
	Repeat Transition = 2
)

func (t Transition) String() string {
	switch t {
	case Up:
		return "up"
	case Down:
		return "down"
	case Repeat:
		return "repeat"
	default:
		return fmt.Sprintf("transition(%d)", int32(t))
	}
}

// Event is a single raw or synthesized input event.
type Event struct {
	Type  Type
	Code  Code
	Value int32
}

// Key returns an EV_KEY event.
func Key(code Code, t Transition) Event {
	return Event{Type: EvKey, Code: code, Value: int32(t)}
}

// Sync returns an EV_SYN/SYN_REPORT event terminating an input frame.
func Sync() Event {
	return Event{Type: EvSyn, Code: SynReport}
}

// IsKey reports whether e is an EV_KEY event.
func (e Event) IsKey() bool {
	return e.Type == EvKey
}

// Transition interprets the event value as a key transition.
// Values above 2 are treated as repeats.
func (e Event) Transition() Transition {
	switch {
	case e.Value <= 0:
		return Up
	case e.Value == 1:
		return Down
	default:
		return Repeat
	}
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s %d", TypeName(e.Type), CodeName(e.Type, e.Code), e.Value)
}

// codeNames resolves codes per type. The *ToString tables carry one
// canonical name per code.
var codeNames = map[Type]map[Code]string{
	EvSyn: evdev.SYNToString,
	EvKey: evdev.KEYToString,
	EvRel: evdev.RELToString,
	EvAbs: evdev.ABSToString,
	EvMsc: evdev.MSCToString,
	EvSw:  evdev.SWToString,
	EvLed: evdev.LEDToString,
	EvSnd: evdev.SNDToString,
	EvRep: evdev.REPToString,
	EvFF:  evdev.FFToString,
}

// TypeName returns the evdev name of an event type.
func TypeName(t Type) string {
	if n, ok := evdev.EVToString[t]; ok {
		return n
	}
	return fmt.Sprintf("EV_%#02x", uint16(t))
}

// CodeName returns a readable name for a code of the given type.
func CodeName(t Type, c Code) string {
	if t == EvKey {
		return KeyName(c)
	}
	if n, ok := codeNames[t][c]; ok {
		return n
	}
	return fmt.Sprintf("%d", uint16(c))
}
