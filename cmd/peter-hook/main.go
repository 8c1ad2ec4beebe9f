// Package main provides the peter-hook command-line tool: a declarative
// git-hook manager driven by .peter-hook.toml configuration files.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/peter-hook/peter-hook/internal/commands"
)

// Version information set by GoReleaser.
var (
	version = "dev"
	commit  = "none"    //nolint:unused // set by GoReleaser
	date    = "unknown" //nolint:unused // set by GoReleaser
	builtBy = "unknown" //nolint:unused // set by GoReleaser
)

func main() {
	c := cli.NewCLI("peter-hook", version)
	c.Args = os.Args[1:]
	c.HelpFunc = customHelpFunc
	c.Commands = map[string]cli.CommandFactory{
		"run":         commands.RunCommandFactory,
		"lint":        commands.LintCommandFactory,
		"list":        commands.ListCommandFactory,
		"validate":    commands.ValidateCommandFactory,
		"install":     commands.InstallCommandFactory,
		"uninstall":   commands.UninstallCommandFactory,
		"doctor":      commands.DoctorCommandFactory,
		"version":     commands.VersionCommandFactory(version),
		"license":     commands.LicenseCommandFactory,
		"completions": commands.CompletionsCommandFactory,
	}

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitStatus)
}

// customHelpFunc lists commands in a fixed, task-oriented order rather
// than alphabetically, since run/lint are what most callers need first.
func customHelpFunc(cmdFactories map[string]cli.CommandFactory) string {
	order := []string{"run", "lint", "list", "validate", "install", "uninstall", "doctor", "version", "license", "completions"}

	var names []string
	for _, n := range order {
		if _, ok := cmdFactories[n]; ok {
			names = append(names, n)
		}
	}
	for n := range cmdFactories {
		found := false
		for _, o := range order {
			if o == n {
				found = true
				break
			}
		}
		if !found {
			names = append(names, n)
		}
	}
	sort.Strings(names[len(order):])

	descriptions := map[string]string{
		"run":         "Run the hooks bound to a git event",
		"lint":        "Run a single named hook manually",
		"list":        "Print discovered configuration without running anything",
		"validate":    "Check configuration against the events it is bound to",
		"install":     "Install dispatch scripts into .git/hooks",
		"uninstall":   "Remove peter-hook's dispatch scripts",
		"doctor":      "Check environment and configuration health",
		"version":     "Print the peter-hook version",
		"license":     "Print license information",
		"completions": "Report that shell completion scripts are not generated",
	}

	var b strings.Builder
	b.WriteString("usage: peter-hook [--version] [--help] <command> [<args>]\n\n")
	b.WriteString("Available commands:\n")
	for _, n := range names {
		fmt.Fprintf(&b, "    %-14s %s\n", n, descriptions[n])
	}
	return b.String()
}
