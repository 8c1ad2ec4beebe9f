package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/cli"

	"github.com/peter-hook/peter-hook/pkg/config"
	"github.com/peter-hook/peter-hook/pkg/constants"
	"github.com/peter-hook/peter-hook/pkg/validator"
)

// ValidateOptions are the flags accepted by `peter-hook validate`.
type ValidateOptions struct {
	CommonOptions
	Strict bool `long:"strict" description:"Exit non-zero if any warning is found"`
}

// ValidateCommand implements `peter-hook validate`: it parses every
// configuration file under the repository and reports validator warnings
// without running anything.
type ValidateCommand struct {
	GitRepositoryCommand
}

// ValidateCommandFactory constructs the validate command for the CLI
// registry.
func ValidateCommandFactory() (cli.Command, error) {
	return &ValidateCommand{
		GitRepositoryCommand{BaseCommand{
			Name:        "validate",
			Description: "Parse every configuration file and report hooks whose requires_files expectation their bound event cannot satisfy.",
			Examples: []Example{
				{Command: "peter-hook validate --strict", Description: "fail the command if any warning is found"},
			},
		}},
	}, nil
}

func (c *ValidateCommand) Help() string {
	return c.GenerateHelp(newParser(&ValidateOptions{}))
}

func (c *ValidateCommand) Synopsis() string {
	return StandardSynopsis(c.Description)
}

func (c *ValidateCommand) Run(args []string) int {
	opts := &ValidateOptions{}
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

	var paths []string
	err = filepath.WalkDir(repo.RepoRoot(), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // best-effort walk; unreadable entries are skipped
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if !d.IsDir() && d.Name() == constants.ConfigFileName {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "validate: %v\n", err)
		return 1
	}

	exitCode := 0
	for _, path := range paths {
		cfg, err := config.Load(path)
		if err != nil {
			fmt.Printf("%s: %s %v\n", styleFailure.Render("✗"), path, err)
			exitCode = 1
			continue
		}
		warnings := validator.Validate(cfg)
		if len(warnings) == 0 {
			fmt.Printf("%s %s\n", styleSuccess.Render("✓"), path)
			continue
		}
		for _, w := range warnings {
			fmt.Printf("%s %s\n", styleSkipped.Render("!"), w.String())
		}
		if opts.Strict {
			exitCode = 1
		}
	}
	return exitCode
}
