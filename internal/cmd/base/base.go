// Package base carries the pieces shared by every CLI command: the UI, the
// logger, and a flag set with rendered help.
package base

import (
	"bytes"
	"flag"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded by every CLI command.
type Command struct {
	// UI is used for command input and output.
	UI cli.Ui

	// Log is the logger to use.
	Log hclog.Logger
}

// NewCommand returns a base command.
func NewCommand(ui cli.Ui, log hclog.Logger) *Command {
	return &Command{
		UI:  ui,
		Log: log,
	}
}

// FlagSet wraps the standard flag set with help rendering.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet creates a flag set for a command.
func NewFlagSet(name string) *FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	return &FlagSet{FlagSet: f}
}

// Help returns the rendered flag defaults.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer
	f.SetOutput(&buf)
	f.PrintDefaults()
	return buf.String()
}
