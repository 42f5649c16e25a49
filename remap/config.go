// Package remap implements the dual-role key state machine: a designated key
// acts as one key when tapped alone and as a layer modifier while held, and
// the rule table is only applied while that modifier is held.
package remap

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Alia5/capsule/input"
)

// Rule maps a trigger key to an output key while the dual-role key is held.
// The modifier flags wrap the output in the given modifier keys.
type Rule struct {
	Trigger  input.Code
	Output   input.Code
	LeftAlt  bool
	RightAlt bool
	LeftCtrl bool
}

// DualRoleKey describes the physical key with a tap role and a hold role.
// Tapped alone it emits Primary; held it enables the rule table.
type DualRoleKey struct {
	Physical input.Code
	Primary  input.Code
}

// Substitution rewrites a key to another code unconditionally.
type Substitution struct {
	From input.Code
	To   input.Code
}

// Config is the immutable remap policy shared by every device.
type Config struct {
	DualRole      DualRoleKey
	Rules         []Rule
	Substitutions []Substitution
}

// NewConfig validates and returns a policy. The rule slice is copied.
func NewConfig(dual DualRoleKey, rules []Rule, subs ...Substitution) (*Config, error) {
	c := &Config{
		DualRole:      dual,
		Rules:         append([]Rule(nil), rules...),
		Substitutions: append([]Substitution(nil), subs...),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the table invariants: unique triggers, no trigger equal to
// the dual-role key, and codes inside the key range.
func (c *Config) Validate() error {
	var errs []error
	if c.DualRole.Physical == input.KeyReserved || c.DualRole.Physical > input.KeyMax {
		errs = append(errs, fmt.Errorf("invalid dual-role key %d", c.DualRole.Physical))
	}
	if c.DualRole.Primary == input.KeyReserved || c.DualRole.Primary > input.KeyMax {
		errs = append(errs, fmt.Errorf("invalid dual-role tap key %d", c.DualRole.Primary))
	}

	seen := make(map[input.Code]int, len(c.Rules))
	for i, r := range c.Rules {
		switch {
		case r.Trigger == input.KeyReserved || r.Trigger > input.KeyMax:
			errs = append(errs, fmt.Errorf("rule %d: invalid trigger %d", i, r.Trigger))
		case r.Output == input.KeyReserved || r.Output > input.KeyMax:
			errs = append(errs, fmt.Errorf("rule %d: invalid output %d", i, r.Output))
		case r.Trigger == c.DualRole.Physical:
			errs = append(errs, fmt.Errorf("rule %d: trigger %s is the dual-role key", i, input.KeyName(r.Trigger)))
		}
		if j, dup := seen[r.Trigger]; dup {
			errs = append(errs, fmt.Errorf("rule %d: trigger %s already used by rule %d", i, input.KeyName(r.Trigger), j))
			continue
		}
		seen[r.Trigger] = i
	}

	for _, s := range c.Substitutions {
		if s.From == c.DualRole.Physical {
			errs = append(errs, fmt.Errorf("substitution of %s shadows the dual-role key", input.KeyName(s.From)))
		}
	}
	return errors.Join(errs...)
}

// DefaultRules is the built-in table: vim-style arrows, paging, delete, and
// brackets/braces for a Swedish layout via AltGr.
func DefaultRules() []Rule {
	return []Rule{
		{Trigger: input.KeyH, Output: input.KeyLeft},
		{Trigger: input.KeyJ, Output: input.KeyDown},
		{Trigger: input.KeyK, Output: input.KeyUp},
		{Trigger: input.KeyL, Output: input.KeyRight},

		{Trigger: input.KeyP, Output: input.KeyPageUp},
		{Trigger: input.KeyN, Output: input.KeyPageDown},

		{Trigger: input.KeyD, Output: input.KeyDelete},

		{Trigger: input.KeyY, Output: input.Key7, RightAlt: true},
		{Trigger: input.KeyO, Output: input.Key0, RightAlt: true},
		{Trigger: input.KeyU, Output: input.Key8, RightAlt: true},
		{Trigger: input.KeyI, Output: input.Key9, RightAlt: true},
	}
}

// DefaultConfig returns the built-in policy with Caps Lock as the dual-role
// key. With swapEscape the tap emits Escape and the Escape key types Caps Lock.
func DefaultConfig(swapEscape bool) *Config {
	c := &Config{
		DualRole: DualRoleKey{Physical: input.KeyCapsLock, Primary: input.KeyCapsLock},
		Rules:    DefaultRules(),
	}
	if swapEscape {
		c.SwapEscape()
	}
	return c
}

// SwapEscape makes the dual-role tap emit Escape and turns the physical
// Escape key into the dual-role key's original primary role. It must be
// applied before the config is handed to the engine.
func (c *Config) SwapEscape() {
	if c.DualRole.Primary == input.KeyEsc {
		return
	}
	c.Substitutions = append(c.Substitutions, Substitution{From: input.KeyEsc, To: c.DualRole.Primary})
	c.DualRole.Primary = input.KeyEsc
}

// ruleFor returns the index of the first rule triggered by code, or -1.
func (c *Config) ruleFor(code input.Code) int {
	for i := range c.Rules {
		if c.Rules[i].Trigger == code {
			return i
		}
	}
	return -1
}

func (c *Config) substitute(code input.Code) (input.Code, bool) {
	for _, s := range c.Substitutions {
		if s.From == code {
			return s.To, true
		}
	}
	return code, false
}

// OutputKeys returns every key code the policy can synthesize, so a virtual
// device can advertise them even when the physical keyboard lacks them.
func (c *Config) OutputKeys() []input.Code {
	seen := map[input.Code]bool{c.DualRole.Primary: true}
	for _, r := range c.Rules {
		seen[r.Output] = true
		if r.LeftAlt {
			seen[input.KeyLeftAlt] = true
		}
		if r.RightAlt {
			seen[input.KeyRightAlt] = true
		}
		if r.LeftCtrl {
			seen[input.KeyLeftCtrl] = true
		}
	}
	for _, s := range c.Substitutions {
		seen[s.To] = true
	}
	out := make([]input.Code, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
