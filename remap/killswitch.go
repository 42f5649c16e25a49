package remap

import "github.com/Alia5/capsule/input"

// KillswitchKeys returns the panic combination. Holding all of them on one
// physical device stops the engine regardless of the policy.
func KillswitchKeys() []input.Code {
	return []input.Code{input.KeyLeftCtrl, input.KeyRightCtrl}
}

// Killswitch reports whether the physical key state holds the panic
// combination.
func Killswitch(keys *input.KeyBitmap) bool {
	for _, k := range KillswitchKeys() {
		if !keys.Pressed(k) {
			return false
		}
	}
	return true
}
