// Package config parses and validates .peter-hook.toml configuration files.
package config

import "fmt"

// ExecutionType selects how a hook's filtered files are passed to its
// command.
type ExecutionType string

const (
	// PerFile appends every filtered file as a trailing argument.
	PerFile ExecutionType = "per-file"
	// InPlace appends no paths; the hook operates on the working tree.
	InPlace ExecutionType = "in-place"
	// Other appends no paths; the command is expected to read the
	// CHANGED_FILES* template variables itself.
	Other ExecutionType = "other"
)

// ExecutionStrategy selects how a group's hooks are scheduled into waves.
type ExecutionStrategy string

const (
	Sequential   ExecutionStrategy = "sequential"
	Parallel     ExecutionStrategy = "parallel"
	ForceParallel ExecutionStrategy = "force-parallel"
)

// Command is a hook's command, either a shell string or an argument
// vector. Exactly one of Shell or Argv is set.
type Command struct {
	Shell string
	Argv  []string
}

func (c Command) IsZero() bool {
	return c.Shell == "" && len(c.Argv) == 0
}

func (c Command) String() string {
	if c.Shell != "" {
		return c.Shell
	}
	return fmt.Sprintf("%v", c.Argv)
}

// HookDefinition is an immutable record parsed from a [hooks.<name>] table.
type HookDefinition struct {
	Env                map[string]string
	Name               string
	Command            Command
	ExecutionType      ExecutionType
	Workdir            string
	Files              []string
	DependsOn          []string
	TimeoutSeconds     int
	ModifiesRepository bool
	RunAlways          bool
	RequiresFiles      bool
	RunAtRoot          bool
}

// HookGroup is the composition bound to a git event name via a
// [groups.<event-name>] table.
type HookGroup struct {
	Name              string
	Includes          []string
	ExecutionStrategy ExecutionStrategy
	Placeholder       bool
}

// ConfigFile is a parsed configuration rooted at Dir. Two ConfigFiles are
// independent; there is no inheritance between them.
type ConfigFile struct {
	hookIndex  map[string]int
	groupIndex map[string]int
	Dir        string
	Path       string
	Hooks      []HookDefinition
	Groups     []HookGroup
}

// New builds a ConfigFile from already-constructed hooks and groups,
// indexing them for lookup, for callers assembling a config outside of
// Load (the tests). Path is left empty.
func New(dir string, hooks []HookDefinition, groups []HookGroup) *ConfigFile {
	cfg := &ConfigFile{Dir: dir, Hooks: hooks, Groups: groups}
	cfg.buildIndexes()
	return cfg
}

// Hook looks up a hook by name, preserving parse-time identity.
func (c *ConfigFile) Hook(name string) (*HookDefinition, bool) {
	i, ok := c.hookIndex[name]
	if !ok {
		return nil, false
	}
	return &c.Hooks[i], true
}

// Group looks up a group by name.
func (c *ConfigFile) Group(name string) (*HookGroup, bool) {
	i, ok := c.groupIndex[name]
	if !ok {
		return nil, false
	}
	return &c.Groups[i], true
}

func (c *ConfigFile) buildIndexes() {
	c.hookIndex = make(map[string]int, len(c.Hooks))
	for i, h := range c.Hooks {
		c.hookIndex[h.Name] = i
	}
	c.groupIndex = make(map[string]int, len(c.Groups))
	for i, g := range c.Groups {
		c.groupIndex[g.Name] = i
	}
}
