package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mitchellh/cli"

	"github.com/peter-hook/peter-hook/pkg/executor"
	"github.com/peter-hook/peter-hook/pkg/planner"
	"github.com/peter-hook/peter-hook/pkg/resolver"
)

// LintOptions are the flags accepted by `peter-hook lint`.
type LintOptions struct {
	CommonOptions
}

// LintCommand implements `peter-hook lint <hook>`, the manual entry point
// for running a single hook outside any git event, against every
// non-ignored file beneath the caller's directory.
type LintCommand struct {
	GitRepositoryCommand
}

// LintCommandFactory constructs the lint command for the CLI registry.
func LintCommandFactory() (cli.Command, error) {
	return &LintCommand{
		GitRepositoryCommand{BaseCommand{
			Name:        "lint",
			Description: "Run a single named hook against every non-ignored file under the current directory.",
			Examples: []Example{
				{Command: "peter-hook lint golangci-lint", Description: "run the hook named golangci-lint from the nearest config"},
			},
		}},
	}, nil
}

func (c *LintCommand) Help() string {
	return c.GenerateHelp(newParser(&LintOptions{}))
}

func (c *LintCommand) Synopsis() string {
	return StandardSynopsis(c.Description)
}

func (c *LintCommand) Run(args []string) int {
	opts := &LintOptions{}
	remaining, err := c.ParseArgsWithHelp(opts, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if remaining == nil {
		return 0
	}
	if len(remaining) == 0 {
		fmt.Fprintln(os.Stderr, "lint: missing required <hook> argument")
		return 1
	}
	name := remaining[0]

	repo, err := c.RequireGitRepository()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := CheckLegacyConfig(repo.RepoRoot()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lint: %v\n", err)
		return 1
	}

	loader := resolver.NewWalkLoader(fileExists)
	dir, ok := loader.NearestConfigDir(cwd, repo.RepoRoot())
	if !ok {
		fmt.Fprintln(os.Stderr, "lint: no configuration found above the current directory")
		return 1
	}
	cfg, err := loader.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lint: %v\n", err)
		return 1
	}

	hook, ok := cfg.Hook(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "lint: no hook named %q in %s\n", name, cfg.Path)
		return 1
	}

	files, err := listNonIgnoredFiles(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lint: walking %s: %v\n", cwd, err)
		return 1
	}
	files, err = filterByGlobs(hook.Files, files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lint: %v\n", err)
		return 1
	}

	plan := planner.Plan{Waves: [][]planner.Item{{{Hook: hook, Files: files}}}}

	env := executor.TemplateEnv{
		RepoRoot:     repo.RepoRoot(),
		HomeDir:      homeDir(),
		Path:         os.Getenv("PATH"),
		CommonDir:    repo.CommonDir(),
		IsWorktree:   repo.IsWorktree(),
		WorktreeName: repo.WorktreeName(),
	}

	result := executor.Run(context.Background(), cfg, plan, env)
	fmt.Print(renderPlanResult(result))
	if !result.Success() {
		return 1
	}
	return 0
}

// filterByGlobs narrows files to those matching at least one of patterns;
// an empty pattern list matches everything, mirroring the planner's rule
// for hooks with no files list of their own.
func filterByGlobs(patterns, files []string) ([]string, error) {
	if len(patterns) == 0 {
		return files, nil
	}
	var matched []string
	for _, f := range files {
		for _, pat := range patterns {
			ok, err := doublestar.Match(pat, f)
			if err != nil {
				return nil, fmt.Errorf("invalid glob %q: %w", pat, err)
			}
			if ok {
				matched = append(matched, f)
				break
			}
		}
	}
	return matched, nil
}

// listNonIgnoredFiles walks root, honoring every .gitignore found along the
// way, and returns repository-relative-style (root-relative) paths for
// every file that survives.
func listNonIgnoredFiles(root string) ([]string, error) {
	var files []string
	err := walkNonIgnored(root, func(relPath string, isDir bool) {
		if !isDir {
			files = append(files, relPath)
		}
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
