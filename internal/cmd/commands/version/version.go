package version

import (
	"github.com/buildeasy/webverse/internal/cmd/base"
	"github.com/buildeasy/webverse/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version of this binary"
}

func (c *Command) Help() string {
	return "Usage: webverse version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}
