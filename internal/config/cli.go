// Package config defines the command-line interface. Every flag can also be
// set through a CAPSULE_* environment variable or a JSON, YAML or TOML
// configuration file.
package config

import (
	"github.com/Alia5/capsule/internal/cmd"
)

// Log configures the process logger.
type Log struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"CAPSULE_LOG_LEVEL"`
	File    string `help:"Also write the log to this file" env:"CAPSULE_LOG_FILE" type:"path"`
	RawFile string `help:"Write every key event read and written to this file (trace level prints them to stdout)" env:"CAPSULE_LOG_RAW_FILE" type:"path"`
}

// CLI is the root command.
type CLI struct {
	Log    Log    `embed:"" prefix:"log."`
	Debug  bool   `help:"Shorthand for --log.level=debug" env:"CAPSULE_DEBUG"`
	Config string `help:"Configuration file (json, yaml or toml)" env:"CAPSULE_CONFIG" type:"path"`

	Run       cmd.Run           `cmd:"" default:"withargs" help:"Grab every keyboard and remap it (default)"`
	Cfg       cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration file helpers"`
	Policy    cmd.PolicyCommand `cmd:"" help:"Manage remap policy files"`
	Keys      cmd.Keys          `cmd:"" help:"List the key names accepted in policies"`
	Monitor   cmd.Monitor       `cmd:"" help:"Print the events of one device without grabbing it"`
	Install   cmd.Install       `cmd:"" help:"Install and start the systemd service"`
	Uninstall cmd.Uninstall     `cmd:"" help:"Stop and remove the systemd service"`
}

// LogLevel is the effective level, with --debug raising the default.
func (c *CLI) LogLevel() string {
	if c.Debug && (c.Log.Level == "" || c.Log.Level == "info") {
		return "debug"
	}
	return c.Log.Level
}
