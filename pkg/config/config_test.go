package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ".peter-hook.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_BasicHookAndGroup(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[hooks.fmt]
command = "gofmt -l ."
execution_type = "in-place"
modifies_repository = true

[hooks.lint]
command = ["golangci-lint", "run"]
depends_on = ["fmt"]

[groups.pre-commit]
includes = ["fmt", "lint"]
execution_strategy = "sequential"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Hooks, 2)

	fmtHook, ok := cfg.Hook("fmt")
	require.True(t, ok)
	assert.Equal(t, "gofmt -l .", fmtHook.Command.Shell)
	assert.True(t, fmtHook.ModifiesRepository)
	assert.Equal(t, InPlace, fmtHook.ExecutionType)
	assert.Equal(t, 300, fmtHook.TimeoutSeconds)

	lintHook, ok := cfg.Hook("lint")
	require.True(t, ok)
	assert.Equal(t, []string{"golangci-lint", "run"}, lintHook.Command.Argv)
	assert.Equal(t, []string{"fmt"}, lintHook.DependsOn)

	group, ok := cfg.Group("pre-commit")
	require.True(t, ok)
	assert.Equal(t, Sequential, group.ExecutionStrategy)
	assert.Equal(t, []string{"fmt", "lint"}, group.Includes)
}

func TestLoad_PreservesFileOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[hooks.zzz]
command = "true"

[hooks.aaa]
command = "true"

[hooks.mmm]
command = "true"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	var names []string
	for _, h := range cfg.Hooks {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"zzz", "aaa", "mmm"}, names)
}

func TestLoad_RejectsUnknownTopLevelKey(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[hoks.fmt]
command = "true"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestLoad_RejectsMissingCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[hooks.noop]
description = "has no command"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestLoad_RejectsUnknownDependency(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[hooks.lint]
command = "true"
depends_on = ["ghost"]
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestLoad_RejectsDependencyCycle(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[hooks.a]
command = "true"
depends_on = ["b"]

[hooks.b]
command = "true"
depends_on = ["a"]
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDependencyCycle)
}

func TestLoad_RejectsRunAlwaysWithFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[hooks.always]
command = "true"
run_always = true
files = ["**/*.go"]
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestLoad_RejectsUnknownExecutionType(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[hooks.weird]
command = "true"
execution_type = "parallel-ish"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestLoad_DefaultsApplied(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[hooks.minimal]
command = "true"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	h, ok := cfg.Hook("minimal")
	require.True(t, ok)
	assert.Equal(t, PerFile, h.ExecutionType)
	assert.Equal(t, 300, h.TimeoutSeconds)
	assert.False(t, h.ModifiesRepository)
}
