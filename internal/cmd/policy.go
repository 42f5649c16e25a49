package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/Alia5/capsule/input"
	"github.com/Alia5/capsule/internal/configpaths"
	"github.com/Alia5/capsule/policy"
	"github.com/Alia5/capsule/remap"
)

// PolicyCommand groups the policy file subcommands.
type PolicyCommand struct {
	Init  PolicyInit  `cmd:"" help:"Write the built-in policy to a file to start from"`
	Check PolicyCheck `cmd:"" help:"Validate a policy file"`
	Show  PolicyShow  `cmd:"" help:"Print the effective remap table"`
}

// PolicyInit writes the default policy.
type PolicyInit struct {
	Format string `help:"Output format" enum:"json,yaml,toml" default:"yaml"`
	Output string `help:"Destination file path (defaults to policy.<format> in the user config directory)"`
	Force  bool   `help:"Overwrite if the file already exists"`
}

func (c *PolicyInit) Run(logger *slog.Logger) error {
	dest := c.Output
	if dest == "" {
		var err error
		if dest, err = configpaths.DefaultNamedConfigPath("policy", c.Format); err != nil {
			return err
		}
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	data, err := policy.Default().Encode(c.Format)
	if err != nil {
		return err
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	logger.Info("Policy written", "path", dest)
	return nil
}

// PolicyCheck validates a policy file without touching any device.
type PolicyCheck struct {
	File string `arg:"" help:"Policy file" type:"existingfile"`
}

func (c *PolicyCheck) Run(logger *slog.Logger) error {
	f, err := policy.Load(c.File)
	if err != nil {
		return err
	}
	cfg, err := f.Config(false)
	if err != nil {
		return fmt.Errorf("%s: %w", c.File, err)
	}
	logger.Info("Policy is valid", "path", c.File, "rules", len(cfg.Rules), "dualRole", input.KeyName(cfg.DualRole.Physical))
	return nil
}

// PolicyShow prints the effective table or the file schema.
type PolicyShow struct {
	File                  string `arg:"" optional:"" help:"Policy file; the built-in policy when omitted" type:"existingfile"`
	SwapCapsLockAndEscape bool   `help:"Apply the Caps Lock and Escape swap"`
	Schema                bool   `help:"Print the JSON schema of policy files instead"`
}

func (c *PolicyShow) Run() error {
	return c.write(os.Stdout)
}

func (c *PolicyShow) write(w io.Writer) error {
	if c.Schema {
		_, err := w.Write(policy.Schema())
		return err
	}
	f := policy.Default()
	if c.File != "" {
		var err error
		if f, err = policy.Load(c.File); err != nil {
			return err
		}
	}
	cfg, err := f.Config(c.SwapCapsLockAndEscape)
	if err != nil {
		return err
	}
	return writeTable(w, cfg)
}

func writeTable(w io.Writer, cfg *remap.Config) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	dual := input.KeyName(cfg.DualRole.Physical)
	fmt.Fprintf(tw, "%s\ttap\t%s\n", dual, input.KeyName(cfg.DualRole.Primary))
	for _, s := range cfg.Substitutions {
		fmt.Fprintf(tw, "%s\talways\t%s\n", input.KeyName(s.From), input.KeyName(s.To))
	}
	for _, r := range cfg.Rules {
		fmt.Fprintf(tw, "%s+%s\thold\t%s\n", dual, input.KeyName(r.Trigger), outputName(r))
	}
	return tw.Flush()
}

func outputName(r remap.Rule) string {
	var parts []string
	if r.LeftAlt {
		parts = append(parts, input.KeyName(input.KeyLeftAlt))
	}
	if r.RightAlt {
		parts = append(parts, input.KeyName(input.KeyRightAlt))
	}
	if r.LeftCtrl {
		parts = append(parts, input.KeyName(input.KeyLeftCtrl))
	}
	parts = append(parts, input.KeyName(r.Output))
	return strings.Join(parts, "+")
}
