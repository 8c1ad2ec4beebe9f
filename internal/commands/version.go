package commands

import (
	"fmt"

	"github.com/mitchellh/cli"
)

// VersionCommand implements `peter-hook version`. It always succeeds, even
// when a deprecated legacy configuration file is present, so callers can
// always check which binary they have installed.
type VersionCommand struct {
	BaseCommand
	Version string
}

// VersionCommandFactory constructs the version command, binding it to v.
func VersionCommandFactory(v string) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &VersionCommand{
			BaseCommand: BaseCommand{Name: "version", Description: "Print the peter-hook version."},
			Version:     v,
		}, nil
	}
}

func (c *VersionCommand) Help() string     { return c.Description }
func (c *VersionCommand) Synopsis() string { return c.Description }

func (c *VersionCommand) Run([]string) int {
	fmt.Println("peter-hook " + c.Version)
	return 0
}
