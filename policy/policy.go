// Package policy loads the remap policy file. A policy may be written as JSON,
// YAML or TOML; every format is normalized to JSON, checked against the
// embedded schema and then resolved to a remap.Config.
package policy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/capsule/input"
	"github.com/Alia5/capsule/remap"
)

// Key is a key name as written in a policy file. Bare numbers are accepted
// and read as names, so 7 means KEY_7 and 240 means code 240.
type Key string

func (k *Key) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*k = Key(s)
		return nil
	}
	var n uint16
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("key must be a name or a code: %s", b)
	}
	*k = Key(strconv.Itoa(int(n)))
	return nil
}

// DualRole selects the dual-role key and what it types when tapped alone.
type DualRole struct {
	Key Key `json:"key,omitempty" yaml:"key,omitempty" toml:"key,omitempty"`
	Tap Key `json:"tap,omitempty" yaml:"tap,omitempty" toml:"tap,omitempty"`
}

// Rule is one entry of the remap table.
type Rule struct {
	Trigger  Key  `json:"trigger" yaml:"trigger" toml:"trigger"`
	Output   Key  `json:"output" yaml:"output" toml:"output"`
	LeftAlt  bool `json:"leftAlt,omitempty" yaml:"leftAlt,omitempty" toml:"leftAlt,omitempty"`
	RightAlt bool `json:"rightAlt,omitempty" yaml:"rightAlt,omitempty" toml:"rightAlt,omitempty"`
	LeftCtrl bool `json:"leftCtrl,omitempty" yaml:"leftCtrl,omitempty" toml:"leftCtrl,omitempty"`
}

// File is the on-disk policy.
type File struct {
	DualRole              DualRole `json:"dualRole" yaml:"dualRole" toml:"dualRole"`
	SwapCapsLockAndEscape bool     `json:"swapCapsLockAndEscape,omitempty" yaml:"swapCapsLockAndEscape,omitempty" toml:"swapCapsLockAndEscape,omitempty"`
	Rules                 []Rule   `json:"rules" yaml:"rules" toml:"rules"`
}

// Default returns the built-in policy in file form.
func Default() File {
	cfg := remap.DefaultConfig(false)
	f := File{
		DualRole: DualRole{
			Key: keyOf(cfg.DualRole.Physical),
			Tap: keyOf(cfg.DualRole.Primary),
		},
	}
	for _, r := range cfg.Rules {
		f.Rules = append(f.Rules, Rule{
			Trigger:  keyOf(r.Trigger),
			Output:   keyOf(r.Output),
			LeftAlt:  r.LeftAlt,
			RightAlt: r.RightAlt,
			LeftCtrl: r.LeftCtrl,
		})
	}
	return f
}

func keyOf(c input.Code) Key {
	return Key(strings.TrimPrefix(input.KeyName(c), "KEY_"))
}

// Load reads, validates and resolves a policy file. The format is chosen by
// extension (.json, .yaml, .yml, .toml).
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	f, err := Parse(data, FormatOf(path))
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// FormatOf guesses the encoding from a file name; unknown extensions are
// treated as JSON.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}

// Parse decodes a policy in the given format and validates it against the
// schema. Key names are not resolved until Config is called.
func Parse(data []byte, format string) (File, error) {
	doc, err := decode(data, format)
	if err != nil {
		return File{}, err
	}

	// Round-trip through JSON so every format reaches the schema with the
	// same value types.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return File{}, err
	}
	var generic any
	if err := json.Unmarshal(normalized, &generic); err != nil {
		return File{}, err
	}
	if err := validateSchema(generic); err != nil {
		return File{}, err
	}

	var f File
	dec := json.NewDecoder(bytes.NewReader(normalized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return File{}, err
	}
	return f, nil
}

func decode(data []byte, format string) (any, error) {
	var doc any
	switch format {
	case "json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	case "toml":
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		doc = tree.ToMap()
	default:
		return nil, fmt.Errorf("unsupported policy format: %s", format)
	}
	if doc == nil {
		return nil, errors.New("policy is empty")
	}
	return doc, nil
}

// Encode renders the policy in the given format.
func (f File) Encode(format string) ([]byte, error) {
	switch format {
	case "json":
		b, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml":
		return yaml.Marshal(f)
	case "toml":
		return toml.Marshal(f)
	default:
		return nil, fmt.Errorf("unsupported policy format: %s", format)
	}
}

// Config resolves key names and builds the validated remap configuration.
// swapEscape is or-ed with the file's own swap setting.
func (f File) Config(swapEscape bool) (*remap.Config, error) {
	var errs []error
	resolve := func(what string, k Key, def input.Code) input.Code {
		if k == "" {
			return def
		}
		c, err := input.ParseKey(string(k))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", what, err))
		}
		return c
	}

	dual := remap.DualRoleKey{
		Physical: resolve("dualRole.key", f.DualRole.Key, input.KeyCapsLock),
	}
	dual.Primary = resolve("dualRole.tap", f.DualRole.Tap, dual.Physical)

	rules := make([]remap.Rule, 0, len(f.Rules))
	for i, r := range f.Rules {
		rules = append(rules, remap.Rule{
			Trigger:  resolve(fmt.Sprintf("rules[%d].trigger", i), r.Trigger, input.KeyReserved),
			Output:   resolve(fmt.Sprintf("rules[%d].output", i), r.Output, input.KeyReserved),
			LeftAlt:  r.LeftAlt,
			RightAlt: r.RightAlt,
			LeftCtrl: r.LeftCtrl,
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	cfg := &remap.Config{DualRole: dual, Rules: rules}
	if swapEscape || f.SwapCapsLockAndEscape {
		cfg.SwapEscape()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
