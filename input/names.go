package input

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/holoplot/go-evdev"
)

// aliases are accepted by ParseKey in addition to the kernel names.
var aliases = map[string]Code{
	"ESCAPE": KeyEsc,
	"RETURN": KeyEnter,
	"CAPS":   KeyCapsLock,
	"DEL":    KeyDelete,
	"PERIOD": KeyDot,
	"PGUP":   KeyPageUp,
	"PGDN":   KeyPageDown,
	"SUPER":  KeyLeftMeta,
	"ALTGR":  KeyRightAlt,
	"LCTRL":  KeyLeftCtrl,
	"RCTRL":  KeyRightCtrl,
	"LALT":   KeyLeftAlt,
	"RALT":   KeyRightAlt,
	"LSHIFT": KeyLeftShift,
	"RSHIFT": KeyRightShift,
	"PRINT":  KeySysRq,
}

// KeyName returns the kernel name of a key code, such as KEY_CAPSLOCK or
// BTN_LEFT, or a numeric KEY_ fallback for codes without a name.
func KeyName(c Code) string {
	if c != KeyMax {
		if n, ok := evdev.KEYToString[c]; ok {
			return n
		}
	}
	return fmt.Sprintf("KEY_%d", uint16(c))
}

// ParseKey resolves a key name to its code. Names are case-insensitive and the
// KEY_ prefix is optional. Plain decimal numbers are accepted as raw codes.
func ParseKey(s string) (Code, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return 0, fmt.Errorf("empty key name")
	}
	if c, ok := lookupKey(name); ok {
		return c, nil
	}
	if c, ok := lookupKey("KEY_" + name); ok {
		return c, nil
	}
	if c, ok := aliases[strings.TrimPrefix(name, "KEY_")]; ok {
		return c, nil
	}
	if n, err := strconv.ParseUint(strings.TrimPrefix(name, "KEY_"), 10, 16); err == nil {
		if Code(n) >= KeyMax {
			return 0, fmt.Errorf("key code %d out of range", n)
		}
		return Code(n), nil
	}
	return 0, fmt.Errorf("unknown key %q", s)
}

// lookupKey accepts real key and button names only, not the KEY_MAX and
// KEY_CNT bounds.
func lookupKey(name string) (Code, bool) {
	c, ok := evdev.KEYFromString[name]
	if !ok || c >= KeyMax {
		return 0, false
	}
	return c, true
}

// KnownKeys returns every named key and button code in ascending order.
func KnownKeys() []Code {
	codes := make([]Code, 0, len(evdev.KEYToString))
	for c := range evdev.KEYToString {
		if c < KeyMax {
			codes = append(codes, c)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
