package commands

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mitchellh/cli"

	"github.com/peter-hook/peter-hook/pkg/config"
	"github.com/peter-hook/peter-hook/pkg/constants"
)

// DoctorOptions are the flags accepted by `peter-hook doctor`.
type DoctorOptions struct {
	CommonOptions
}

// DoctorCommand implements `peter-hook doctor`: it sanity-checks that git
// is reachable, that every configuration file under the repository parses,
// and that every hook's workdir (when not template-dependent) resolves to
// an existing directory.
type DoctorCommand struct {
	GitRepositoryCommand
}

// DoctorCommandFactory constructs the doctor command for the CLI registry.
func DoctorCommandFactory() (cli.Command, error) {
	return &DoctorCommand{
		GitRepositoryCommand{BaseCommand{
			Name:        "doctor",
			Description: "Check that git is reachable and every configuration file under the repository is healthy.",
			Notes: []string{
				"Exit codes:",
				"  0: no problems found",
				"  1: one or more problems found",
				"  2: a deprecated configuration file is present; no further checks run",
			},
		}},
	}, nil
}

func (c *DoctorCommand) Help() string {
	return c.GenerateHelp(newParser(&DoctorOptions{}))
}

func (c *DoctorCommand) Synopsis() string {
	return StandardSynopsis(c.Description)
}

func (c *DoctorCommand) Run(args []string) int {
	opts := &DoctorOptions{}
	if _, err := c.ParseArgsWithHelp(opts, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	problems := 0
	report := func(ok bool, format string, a ...any) {
		if ok {
			fmt.Printf("%s %s\n", styleSuccess.Render("✓"), fmt.Sprintf(format, a...))
			return
		}
		problems++
		fmt.Printf("%s %s\n", styleFailure.Render("✗"), fmt.Sprintf(format, a...))
	}

	if _, err := exec.LookPath("git"); err != nil {
		report(false, "git not found on PATH")
	} else {
		report(true, "git is on PATH")
	}

	repo, err := c.RequireGitRepository()
	if err != nil {
		report(false, "not in a git repository: %v", err)
		fmt.Printf("\n%d problem(s) found\n", problems)
		return 1
	}
	report(true, "repository root: %s", repo.RepoRoot())

	if err := CheckLegacyConfig(repo.RepoRoot()); err != nil {
		report(false, "%v", err)
		fmt.Printf("\n%d problem(s) found\n", problems)
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
		report(false, "walking repository: %v", err)
	}
	if len(paths) == 0 {
		report(false, "no %s found under %s", constants.ConfigFileName, repo.RepoRoot())
	}

	for _, path := range paths {
		cfg, err := config.Load(path)
		if err != nil {
			report(false, "%s: %v", path, err)
			continue
		}
		report(true, "%s parses cleanly", path)

		for _, h := range cfg.Hooks {
			if h.Workdir == "" || containsTemplateToken(h.Workdir) {
				continue
			}
			dir := h.Workdir
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(cfg.Dir, dir)
			}
			info, statErr := os.Stat(dir)
			if statErr != nil || !info.IsDir() {
				report(false, "%s: hook %q workdir %q does not exist", path, h.Name, h.Workdir)
			}
		}
	}

	fmt.Printf("\n%d problem(s) found\n", problems)
	if problems > 0 {
		return 1
	}
	return 0
}

func containsTemplateToken(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			return true
		}
	}
	return false
}
