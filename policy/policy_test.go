package policy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/capsule/input"
	"github.com/Alia5/capsule/policy"
	"github.com/Alia5/capsule/remap"
)

const yamlPolicy = `
dualRole:
  key: CAPSLOCK
  tap: ESC
rules:
  - { trigger: h, output: LEFT }
  - { trigger: y, output: 7, rightAlt: true }
  - { trigger: KEY_W, output: backspace, leftCtrl: true }
`

const tomlPolicy = `
swapCapsLockAndEscape = true

[dualRole]
key = "CAPSLOCK"

[[rules]]
trigger = "H"
output = "LEFT"

[[rules]]
trigger = "U"
output = "8"
rightAlt = true
`

const jsonPolicy = `{
  "rules": [
    { "trigger": "a", "output": "home" },
    { "trigger": "e", "output": "end" }
  ]
}`

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		file      string
		content   string
		wantDual  remap.DualRoleKey
		wantRules []remap.Rule
		wantSubs  []remap.Substitution
	}{
		{
			name:     "yaml",
			file:     "policy.yaml",
			content:  yamlPolicy,
			wantDual: remap.DualRoleKey{Physical: input.KeyCapsLock, Primary: input.KeyEsc},
			wantRules: []remap.Rule{
				{Trigger: input.KeyH, Output: input.KeyLeft},
				{Trigger: input.KeyY, Output: input.Key7, RightAlt: true},
				{Trigger: input.KeyW, Output: input.KeyBackspace, LeftCtrl: true},
			},
		},
		{
			name:     "toml with swap",
			file:     "policy.toml",
			content:  tomlPolicy,
			wantDual: remap.DualRoleKey{Physical: input.KeyCapsLock, Primary: input.KeyEsc},
			wantRules: []remap.Rule{
				{Trigger: input.KeyH, Output: input.KeyLeft},
				{Trigger: input.KeyU, Output: input.Key8, RightAlt: true},
			},
			wantSubs: []remap.Substitution{{From: input.KeyEsc, To: input.KeyCapsLock}},
		},
		{
			name:     "json defaults dual role to caps lock",
			file:     "policy.json",
			content:  jsonPolicy,
			wantDual: remap.DualRoleKey{Physical: input.KeyCapsLock, Primary: input.KeyCapsLock},
			wantRules: []remap.Rule{
				{Trigger: input.KeyA, Output: input.KeyHome},
				{Trigger: input.KeyE, Output: input.KeyEnd},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			f, err := policy.Load(path)
			require.NoError(t, err)

			cfg, err := f.Config(false)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDual, cfg.DualRole)
			assert.Equal(t, tt.wantRules, cfg.Rules)
			assert.Equal(t, tt.wantSubs, cfg.Substitutions)
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			format:  "yaml",
			content: "rules: []\nlayers: 2\n",
			wantErr: "does not match schema",
		},
		{
			name:    "rule without output",
			format:  "json",
			content: `{"rules":[{"trigger":"h"}]}`,
			wantErr: "does not match schema",
		},
		{
			name:    "missing rules",
			format:  "toml",
			content: "swapCapsLockAndEscape = true\n",
			wantErr: "does not match schema",
		},
		{
			name:    "broken yaml",
			format:  "yaml",
			content: "rules: [\n",
			wantErr: "invalid YAML",
		},
		{
			name:    "empty document",
			format:  "yaml",
			content: "",
			wantErr: "policy is empty",
		},
		{
			name:    "unsupported format",
			format:  "ini",
			content: "rules=",
			wantErr: "unsupported policy format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := policy.Parse([]byte(tt.content), tt.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigResolveErrors(t *testing.T) {
	f := policy.File{
		Rules: []policy.Rule{
			{Trigger: "h", Output: "left"},
			{Trigger: "hyper", Output: "left"},
			{Trigger: "j", Output: "nowhere"},
		},
	}
	_, err := f.Config(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rules[1].trigger")
	assert.Contains(t, err.Error(), "rules[2].output")

	dup := policy.File{Rules: []policy.Rule{{Trigger: "h", Output: "left"}, {Trigger: "H", Output: "home"}}}
	_, err = dup.Config(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already used")
}

func TestDefaultEncodesInEveryFormat(t *testing.T) {
	def := policy.Default()
	want, err := def.Config(false)
	require.NoError(t, err)
	assert.Equal(t, remap.DefaultConfig(false), want)

	for _, format := range []string{"json", "yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			data, err := def.Encode(format)
			require.NoError(t, err)

			parsed, err := policy.Parse(data, format)
			require.NoError(t, err)
			got, err := parsed.Config(false)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestSwapFlagOverridesFile(t *testing.T) {
	cfg, err := policy.Default().Config(true)
	require.NoError(t, err)
	assert.Equal(t, input.KeyEsc, cfg.DualRole.Primary)
	assert.Equal(t, []remap.Substitution{{From: input.KeyEsc, To: input.KeyCapsLock}}, cfg.Substitutions)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, "yaml", policy.FormatOf("/etc/capsule/policy.YML"))
	assert.Equal(t, "toml", policy.FormatOf("policy.toml"))
	assert.Equal(t, "json", policy.FormatOf("policy"))
}
