package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/cli"

	"github.com/peter-hook/peter-hook/pkg/config"
	"github.com/peter-hook/peter-hook/pkg/constants"
)

// ListCommand implements `peter-hook list`, a supplemented feature that
// prints every discovered configuration's hooks and groups without
// executing anything.
type ListCommand struct {
	GitRepositoryCommand
}

// ListCommandFactory constructs the list command for the CLI registry.
func ListCommandFactory() (cli.Command, error) {
	return &ListCommand{
		GitRepositoryCommand{BaseCommand{
			Name:        "list",
			Description: "Print every configuration file under the repository, its hooks, and its groups.",
		}},
	}, nil
}

func (c *ListCommand) Help() string {
	return c.GenerateHelp(newParser(&CommonOptions{}))
}

func (c *ListCommand) Synopsis() string {
	return StandardSynopsis(c.Description)
}

func (c *ListCommand) Run(args []string) int {
	opts := &CommonOptions{}
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
		fmt.Fprintf(os.Stderr, "list: %v\n", err)
		return 1
	}
	if len(paths) == 0 {
		fmt.Println("no configuration files found")
		return 0
	}

	for _, path := range paths {
		cfg, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list: %s: %v\n", path, err)
			continue
		}
		printConfig(cfg)
	}
	return 0
}

func printConfig(cfg *config.ConfigFile) {
	fmt.Println(styleHeading.Render(cfg.Path))
	if len(cfg.Hooks) > 0 {
		fmt.Println("  hooks:")
		for _, h := range cfg.Hooks {
			fmt.Printf("    %-24s %s\n", h.Name, h.Command.String())
		}
	}
	if len(cfg.Groups) > 0 {
		fmt.Println("  groups:")
		for _, g := range cfg.Groups {
			fmt.Printf("    %-24s %v (%s)\n", g.Name, g.Includes, g.ExecutionStrategy)
		}
	}
	fmt.Println()
}
