package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/cli"
)

// UninstallOptions are the flags accepted by `peter-hook uninstall`.
type UninstallOptions struct {
	CommonOptions
	HookTypes []string `short:"t" long:"hook-type" description:"Event to uninstall (repeatable); defaults to every known event"`
}

// UninstallCommand implements `peter-hook uninstall`, removing only the
// hook scripts peter-hook itself installed.
type UninstallCommand struct {
	GitRepositoryCommand
}

// UninstallCommandFactory constructs the uninstall command for the CLI
// registry.
func UninstallCommandFactory() (cli.Command, error) {
	return &UninstallCommand{
		GitRepositoryCommand{BaseCommand{
			Name:        "uninstall",
			Description: "Remove peter-hook's dispatch scripts from .git/hooks.",
		}},
	}, nil
}

func (c *UninstallCommand) Help() string {
	return c.GenerateHelp(newParser(&UninstallOptions{}))
}

func (c *UninstallCommand) Synopsis() string {
	return StandardSynopsis(c.Description)
}

func (c *UninstallCommand) Run(args []string) int {
	opts := &UninstallOptions{}
	if _, err := c.ParseArgsWithHelp(opts, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	repo, err := c.RequireGitRepository()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := CheckLegacyConfig(repo.RepoRoot()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	events := opts.HookTypes
	if len(events) == 0 {
		events = KnownEvents
	}

	hooksDir := filepath.Join(repo.CommonDir(), "hooks")
	removed := 0
	for _, event := range events {
		path := filepath.Join(hooksDir, event)
		content, err := os.ReadFile(path) //nolint:gosec // path is built from a fixed event name list
		if err != nil {
			continue
		}
		if !containsMarker(content) {
			continue
		}
		if err := os.Remove(path); err != nil {
			fmt.Fprintf(os.Stderr, "uninstall: removing %s: %v\n", path, err)
			continue
		}
		removed++
	}

	fmt.Printf("removed %d hook(s)\n", removed)
	return 0
}
