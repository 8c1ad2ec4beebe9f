package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/peter-hook/peter-hook/pkg/change"
	"github.com/peter-hook/peter-hook/pkg/executor"
	"github.com/peter-hook/peter-hook/pkg/git"
	"github.com/peter-hook/peter-hook/pkg/planner"
	"github.com/peter-hook/peter-hook/pkg/resolver"
	"github.com/peter-hook/peter-hook/pkg/validator"
)

// RunOptions are the flags accepted by `peter-hook run`.
type RunOptions struct {
	CommonOptions
	AllFiles bool     `long:"all-files" description:"Run with no file list instead of the detected change set; hooks that need files are skipped"`
	Files    []string `long:"files"     description:"Run against an explicit list of files, bypassing change detection"`
	DryRun   bool     `long:"dry-run"   description:"Print the planned waves without running any hook"`
}

// RunCommand implements `peter-hook run <event> [git-hook-args...]`, the
// entry point every installed git hook script invokes.
type RunCommand struct {
	GitRepositoryCommand
}

// RunCommandFactory constructs the run command for the CLI registry.
func RunCommandFactory() (cli.Command, error) {
	return &RunCommand{
		GitRepositoryCommand{BaseCommand{
			Name:        "run",
			Description: "Run the hooks bound to a git event against the current change set.",
			Examples: []Example{
				{Command: "peter-hook run pre-commit", Description: "run as the pre-commit hook would"},
				{Command: "peter-hook run pre-commit --all-files", Description: "run without a file list; only hooks that need no files run"},
				{Command: "peter-hook run pre-push", Description: "reads ref updates from stdin, as git supplies them"},
			},
		}},
	}, nil
}

func (c *RunCommand) Help() string {
	opts := &RunOptions{}
	return c.GenerateHelp(newParser(opts))
}

func (c *RunCommand) Synopsis() string {
	return StandardSynopsis(c.Description)
}

func (c *RunCommand) Run(args []string) int {
	opts := &RunOptions{}
	remaining, err := c.ParseArgsWithHelp(opts, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if remaining == nil {
		// Help was requested and already printed by the flag parser.
		return 0
	}
	if len(remaining) == 0 {
		fmt.Fprintln(os.Stderr, "run: missing required <event> argument")
		return 1
	}
	event := remaining[0]

	repo, err := c.RequireGitRepository()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := CheckLegacyConfig(repo.RepoRoot()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	set, err := detectChangeSet(repo, event, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: detecting change set: %v\n", err)
		return 1
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		return 1
	}

	loader := resolver.NewWalkLoader(fileExists)
	units, err := resolver.Resolve(loader, repo.RepoRoot(), cwd, set.Files, set.Available)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: resolving configuration: %v\n", err)
		return 1
	}
	if len(units) == 0 {
		if opts.Verbose {
			fmt.Fprintln(os.Stderr, "run: no configuration found for this change set")
		}
		return 0
	}

	env := executor.TemplateEnv{
		RepoRoot:     repo.RepoRoot(),
		HomeDir:      homeDir(),
		Path:         os.Getenv("PATH"),
		CommonDir:    repo.CommonDir(),
		IsWorktree:   repo.IsWorktree(),
		WorktreeName: repo.WorktreeName(),
	}

	overallSuccess := true
	for _, unit := range units {
		for _, w := range validator.Validate(unit.Config) {
			fmt.Fprintln(os.Stderr, "warning:", w.String())
		}

		plan, err := planner.Build(unit.Config, event, unit.Files, change.CanProvideFiles(event))
		if err != nil {
			fmt.Fprintf(os.Stderr, "run: planning %s: %v\n", unit.Config.Path, err)
			overallSuccess = false
			continue
		}
		if len(plan.Waves) == 0 && len(plan.Skipped) == 0 {
			continue
		}

		if opts.DryRun {
			printDryRunPlan(unit.Config.Path, plan)
			continue
		}

		result := executor.Run(context.Background(), unit.Config, plan, env)
		fmt.Print(renderPlanResult(result))
		if !result.Success() {
			overallSuccess = false
		}
	}

	if !overallSuccess {
		return 1
	}
	return 0
}

func detectChangeSet(repo *git.Repository, event string, opts *RunOptions) (change.Set, error) {
	if len(opts.Files) > 0 {
		return change.Set{Files: opts.Files, Available: true}, nil
	}
	if opts.AllFiles {
		// --all-files signals the absence of a file list, not a list
		// covering every file: hooks marked requires_files are skipped,
		// same as any other unavailable change set.
		return change.Set{Available: false}, nil
	}

	var stdin *os.File
	if event == EventPrePush {
		stdin = os.Stdin
	}
	if stdin == nil {
		return change.Detect(repo, event, nil)
	}
	return change.Detect(repo, event, stdin)
}

func printDryRunPlan(configPath string, plan planner.Plan) {
	fmt.Println(styleHeading.Render(configPath))
	for i, wave := range plan.Waves {
		names := make([]string, len(wave))
		for j, it := range wave {
			names[j] = it.Hook.Name
		}
		fmt.Printf("  wave %d: %s\n", i+1, strings.Join(names, ", "))
	}
	for _, s := range plan.Skipped {
		fmt.Printf("  skip: %s (%s)\n", s.Hook.Name, s.Skip)
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

