package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter-hook/peter-hook/pkg/config"
	"github.com/peter-hook/peter-hook/pkg/planner"
)

func TestRun_SucceedsAndCapturesStdout(t *testing.T) {
	cfg := config.New(t.TempDir(), nil, nil)
	h := config.HookDefinition{
		Name:           "echo",
		Command:        config.Command{Shell: "echo hello"},
		ExecutionType:  config.InPlace,
		TimeoutSeconds: 5,
	}
	plan := planner.Plan{Waves: [][]planner.Item{{{Hook: &h}}}}

	result := Run(context.Background(), cfg, plan, TemplateEnv{RepoRoot: cfg.Dir})
	require.Len(t, result.Hooks, 1)
	assert.Equal(t, ReasonSuccess, result.Hooks[0].Reason)
	assert.Contains(t, result.Hooks[0].Stdout, "hello")
	assert.True(t, result.Success())
}

func TestRun_NonZeroExitIsFailure(t *testing.T) {
	cfg := config.New(t.TempDir(), nil, nil)
	h := config.HookDefinition{
		Name:           "fail",
		Command:        config.Command{Shell: "exit 3"},
		ExecutionType:  config.InPlace,
		TimeoutSeconds: 5,
	}
	plan := planner.Plan{Waves: [][]planner.Item{{{Hook: &h}}}}

	result := Run(context.Background(), cfg, plan, TemplateEnv{RepoRoot: cfg.Dir})
	require.Len(t, result.Hooks, 1)
	assert.Equal(t, ReasonFailure, result.Hooks[0].Reason)
	assert.Equal(t, 3, result.Hooks[0].ExitCode)
	assert.False(t, result.Success())
}

func TestRun_TimeoutKillsProcess(t *testing.T) {
	cfg := config.New(t.TempDir(), nil, nil)
	h := config.HookDefinition{
		Name:           "sleeper",
		Command:        config.Command{Shell: "sleep 5"},
		ExecutionType:  config.InPlace,
		TimeoutSeconds: 1,
	}
	plan := planner.Plan{Waves: [][]planner.Item{{{Hook: &h}}}}

	result := Run(context.Background(), cfg, plan, TemplateEnv{RepoRoot: cfg.Dir})
	require.Len(t, result.Hooks, 1)
	assert.Equal(t, ReasonTimedOut, result.Hooks[0].Reason)
	assert.False(t, result.Success())
}

func TestRun_RunAllReportAll(t *testing.T) {
	cfg := config.New(t.TempDir(), nil, nil)
	fails := config.HookDefinition{Name: "fails", Command: config.Command{Shell: "exit 1"}, ExecutionType: config.InPlace, TimeoutSeconds: 5}
	succeeds := config.HookDefinition{Name: "succeeds", Command: config.Command{Shell: "true"}, ExecutionType: config.InPlace, TimeoutSeconds: 5}
	plan := planner.Plan{Waves: [][]planner.Item{{{Hook: &fails}, {Hook: &succeeds}}}}

	result := Run(context.Background(), cfg, plan, TemplateEnv{RepoRoot: cfg.Dir})
	require.Len(t, result.Hooks, 2)
	assert.False(t, result.Success())
	var ran []string
	for _, h := range result.Hooks {
		ran = append(ran, h.Hook)
	}
	assert.ElementsMatch(t, []string{"fails", "succeeds"}, ran)
}

func TestRun_SkippedHooksNeverLaunch(t *testing.T) {
	cfg := config.New(t.TempDir(), nil, nil)
	h := config.HookDefinition{Name: "skip-me", Command: config.Command{Shell: "true"}}
	plan := planner.Plan{Skipped: []planner.Item{{Hook: &h, Skip: planner.SkippedIncompatible}}}

	result := Run(context.Background(), cfg, plan, TemplateEnv{RepoRoot: cfg.Dir})
	require.Len(t, result.Hooks, 1)
	assert.Equal(t, ReasonSkipped, result.Hooks[0].Reason)
	assert.Equal(t, planner.SkippedIncompatible, result.Hooks[0].SkipReason)
	assert.True(t, result.Success())
}
