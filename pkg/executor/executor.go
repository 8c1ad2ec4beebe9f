// Package executor runs a planner.Plan wave by wave, launching one OS
// process per hook and collecting its result.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/peter-hook/peter-hook/pkg/config"
	"github.com/peter-hook/peter-hook/pkg/git"
	"github.com/peter-hook/peter-hook/pkg/planner"
	"github.com/peter-hook/peter-hook/pkg/template"
)

// Reason is the terminal state of a single hook run.
type Reason string

const (
	ReasonSuccess     Reason = "success"
	ReasonFailure     Reason = "failure"
	ReasonTimedOut    Reason = "timed-out"
	ReasonSpawnFailed Reason = "spawn-failed"
	ReasonSkipped     Reason = "skipped"
)

// HookResult is the full per-hook record the spec requires: name, config
// path, reason, exit code, timing, and captured output.
type HookResult struct {
	Hook       string
	ConfigPath string
	Reason     Reason
	SkipReason planner.SkipReason
	ExitCode   int
	Duration   time.Duration
	Stdout     string
	Stderr     string
	LaunchErr  string
}

func (r HookResult) Success() bool {
	return r.Reason == ReasonSuccess || r.Reason == ReasonSkipped
}

// PlanResult is the outcome of running one resolver.Unit's plan.
type PlanResult struct {
	ConfigPath string
	Hooks      []HookResult
}

func (p PlanResult) Success() bool {
	for _, h := range p.Hooks {
		if !h.Success() {
			return false
		}
	}
	return true
}

// TemplateEnv supplies the parts of template.Context the caller knows
// ahead of a hook's particular workdir/files resolution.
type TemplateEnv struct {
	RepoRoot     string
	HomeDir      string
	Path         string
	CommonDir    string
	IsWorktree   bool
	WorktreeName string
}

// Run executes every wave of plan in order, for the config rooted at
// cfg.Dir. Waves run sequentially; hooks within a wave run concurrently.
func Run(ctx context.Context, cfg *config.ConfigFile, plan planner.Plan, env TemplateEnv) PlanResult {
	result := PlanResult{ConfigPath: cfg.Path}

	for _, skip := range plan.Skipped {
		result.Hooks = append(result.Hooks, HookResult{
			Hook:       skip.Hook.Name,
			ConfigPath: cfg.Path,
			Reason:     ReasonSkipped,
			SkipReason: skip.Skip,
		})
	}

	for _, wave := range plan.Waves {
		wave := wave
		results := make([]HookResult, len(wave))

		var wg sync.WaitGroup
		for i, item := range wave {
			i, item := i, item
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = runHook(ctx, cfg, item, env)
			}()
		}
		wg.Wait()

		result.Hooks = append(result.Hooks, results...)
	}

	return result
}

func runHook(ctx context.Context, cfg *config.ConfigFile, item planner.Item, env TemplateEnv) HookResult {
	start := time.Now()
	h := item.Hook

	hookDir := cfg.Dir
	if h.RunAtRoot {
		hookDir = env.RepoRoot
	}

	var changedFilesFile string
	defer func() {
		if changedFilesFile != "" {
			_ = os.Remove(changedFilesFile)
		}
	}()

	tctx := template.Context{
		HookDir:      hookDir,
		RepoRoot:     env.RepoRoot,
		ProjectName:  filepath.Base(env.RepoRoot),
		HomeDir:      env.HomeDir,
		Path:         env.Path,
		WorkingDir:   hookDir,
		CommonDir:    env.CommonDir,
		IsWorktree:   env.IsWorktree,
		WorktreeName: env.WorktreeName,
		ChangedFiles: item.Files,
		ChangedFilesFile: func() (string, error) {
			if changedFilesFile == "" {
				path, err := writeChangedFilesFile(item.Files)
				if err != nil {
					return "", err
				}
				changedFilesFile = path
			}
			return changedFilesFile, nil
		},
	}

	workdir := hookDir
	if h.Workdir != "" {
		expanded, err := template.Expand(h.Workdir, tctx)
		if err != nil {
			return launchFailure(h, cfg.Path, start, err)
		}
		workdir = expanded
		if !filepath.IsAbs(workdir) {
			workdir = filepath.Join(hookDir, workdir)
		}
	}

	cmd, runCtx, err := buildCommand(ctx, h, tctx, workdir, item.Files)
	if err != nil {
		return launchFailure(h, cfg.Path, start, err)
	}

	var stdout, stderr bytes.Buffer
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return launchFailure(h, cfg.Path, start, err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return launchFailure(h, cfg.Path, start, err)
	}

	if err := cmd.Start(); err != nil {
		return launchFailure(h, cfg.Path, start, err)
	}

	var ioWG sync.WaitGroup
	ioWG.Add(2)
	go func() { defer ioWG.Done(); _, _ = stdout.ReadFrom(stdoutPipe) }()
	go func() { defer ioWG.Done(); _, _ = stderr.ReadFrom(stderrPipe) }()
	ioWG.Wait()

	waitErr := cmd.Wait()
	duration := time.Since(start)

	slog.Debug("hook finished", "hook", h.Name, "duration", duration)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return HookResult{
			Hook: h.Name, ConfigPath: cfg.Path, Reason: ReasonTimedOut,
			ExitCode: -1, Duration: duration, Stdout: stdout.String(), Stderr: stderr.String(),
		}
	}

	exitCode := 0
	reason := ReasonSuccess
	if waitErr != nil {
		reason = ReasonFailure
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 1
		}
	}

	return HookResult{
		Hook:       h.Name,
		ConfigPath: cfg.Path,
		Reason:     reason,
		ExitCode:   exitCode,
		Duration:   duration,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
	}
}

func launchFailure(h *config.HookDefinition, configPath string, start time.Time, err error) HookResult {
	return HookResult{
		Hook:       h.Name,
		ConfigPath: configPath,
		Reason:     ReasonSpawnFailed,
		ExitCode:   -1,
		Duration:   time.Since(start),
		LaunchErr:  err.Error(),
	}
}

// buildCommand expands the hook's command and env and returns a
// ready-to-run *exec.Cmd bound to a context carrying the hook's timeout.
func buildCommand(
	ctx context.Context,
	h *config.HookDefinition,
	tctx template.Context,
	workdir string,
	files []string,
) (*exec.Cmd, context.Context, error) {
	timeout := time.Duration(h.TimeoutSeconds) * time.Second
	runCtx := ctx
	if timeout > 0 {
		runCtx, _ = context.WithTimeout(ctx, timeout) //nolint:govet // process lifetime bounds the context; no separate cancel path needed
	}

	var cmd *exec.Cmd

	switch {
	case h.Command.Shell != "":
		expanded, err := template.Expand(h.Command.Shell, tctx)
		if err != nil {
			return nil, nil, err
		}
		args := []string{"-c", expanded, "--"}
		if h.ExecutionType == config.PerFile {
			args = append(args, files...)
		}
		cmd = exec.CommandContext(runCtx, "sh", args...)

	default:
		argv := make([]string, len(h.Command.Argv))
		for i, a := range h.Command.Argv {
			expanded, err := template.Expand(a, tctx)
			if err != nil {
				return nil, nil, err
			}
			argv[i] = expanded
		}
		if h.ExecutionType == config.PerFile {
			argv = append(argv, files...)
		}
		if len(argv) == 0 {
			return nil, nil, fmt.Errorf("hook %q: empty command", h.Name)
		}
		cmd = exec.CommandContext(runCtx, argv[0], argv[1:]...)
	}

	cmd.Dir = workdir
	cmd.Env = git.NoGitEnv(os.Environ())
	for k, v := range h.Env {
		expanded, err := template.Expand(v, tctx)
		if err != nil {
			return nil, nil, err
		}
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, expanded))
	}
	cmd.Cancel = func() error { return cmd.Process.Kill() }

	return cmd, runCtx, nil
}

func writeChangedFilesFile(files []string) (string, error) {
	f, err := os.CreateTemp("", "peter-hook-changed-files-*")
	if err != nil {
		return "", fmt.Errorf("creating changed-files temp file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(strings.Join(files, "\n")); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing changed-files temp file: %w", err)
	}
	return f.Name(), nil
}
