package commands

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
)

// CompletionsCommand implements `peter-hook completions <shell>`. Shell
// completion generation is out of core scope; this is a thin stub that
// reports the requested shell is not yet supported rather than silently
// emitting nothing.
type CompletionsCommand struct {
	BaseCommand
}

// CompletionsCommandFactory constructs the completions command for the CLI
// registry.
func CompletionsCommandFactory() (cli.Command, error) {
	return &CompletionsCommand{
		BaseCommand{
			Name:        "completions",
			Description: "Shell completion scripts are not generated; this command reports that and exits 1.",
		},
	}, nil
}

func (c *CompletionsCommand) Help() string     { return c.Description }
func (c *CompletionsCommand) Synopsis() string { return c.Description }

func (c *CompletionsCommand) Run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "completions: missing required <shell> argument")
		return 1
	}
	fmt.Fprintf(os.Stderr, "completions: shell %q is not yet supported\n", args[0])
	return 1
}
