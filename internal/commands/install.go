package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/cli"
)

// InstallOptions are the flags accepted by `peter-hook install`.
type InstallOptions struct {
	CommonOptions
	HookTypes []string `short:"t" long:"hook-type" description:"Event to install (repeatable); defaults to every known event"`
	Overwrite bool     `short:"f" long:"overwrite" description:"Overwrite existing hook scripts not managed by peter-hook"`
}

// InstallCommand implements `peter-hook install`, writing a thin dispatch
// script into .git/hooks for every managed event.
type InstallCommand struct {
	GitRepositoryCommand
}

// InstallCommandFactory constructs the install command for the CLI
// registry.
func InstallCommandFactory() (cli.Command, error) {
	return &InstallCommand{
		GitRepositoryCommand{BaseCommand{
			Name:        "install",
			Description: "Install a peter-hook dispatch script for every managed git event.",
			Examples: []Example{
				{Command: "peter-hook install", Description: "install every known event"},
				{Command: "peter-hook install -t pre-commit -t pre-push", Description: "install only these events"},
			},
		}},
	}, nil
}

func (c *InstallCommand) Help() string {
	return c.GenerateHelp(newParser(&InstallOptions{}))
}

func (c *InstallCommand) Synopsis() string {
	return StandardSynopsis(c.Description)
}

// hookScriptMarker identifies a script as peter-hook-managed so install
// refuses to clobber a foreign hook without --overwrite.
const hookScriptMarker = "# managed-by: peter-hook"

func (c *InstallCommand) Run(args []string) int {
	opts := &InstallOptions{}
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
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "install: %v\n", err)
		return 1
	}

	installed := 0
	for _, event := range events {
		path := filepath.Join(hooksDir, event)
		if existing, err := os.ReadFile(path); err == nil { //nolint:gosec // path is built from a fixed event name list
			if !containsMarker(existing) && !opts.Overwrite {
				fmt.Fprintf(os.Stderr, "install: %s already exists and is not managed by peter-hook; use --overwrite\n", path)
				continue
			}
		}
		if err := os.WriteFile(path, []byte(hookScript(event)), 0o755); err != nil { //nolint:gosec // hook scripts must be executable
			fmt.Fprintf(os.Stderr, "install: writing %s: %v\n", path, err)
			continue
		}
		installed++
	}

	if installed == 0 {
		fmt.Println("no hooks were installed")
		return 1
	}
	fmt.Printf("installed %d hook(s)\n", installed)
	return 0
}

func containsMarker(content []byte) bool {
	return strings.Contains(string(content), hookScriptMarker)
}

func hookScript(event string) string {
	return "#!/bin/sh\n" +
		hookScriptMarker + "\n" +
		"exec peter-hook run " + event + " \"$@\"\n"
}
