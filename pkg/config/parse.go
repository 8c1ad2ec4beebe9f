package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/peter-hook/peter-hook/pkg/constants"
)

// Sentinel error kinds, matched with errors.Is against the wrapped result
// of Load.
var (
	ErrParse              = errors.New("config parse error")
	ErrUnknownKey         = errors.New("unknown configuration key")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrDependencyCycle    = errors.New("dependency cycle")
)

// rawRoot is the top-level shape of a .peter-hook.toml file. Declaring only
// these two fields lets us use meta.Undecoded to reject unknown top-level
// keys, and meta.Keys to recover file order for deterministic iteration.
type rawRoot struct {
	Hooks  map[string]rawHook  `toml:"hooks"`
	Groups map[string]rawGroup `toml:"groups"`
}

type rawHook struct {
	Command            any               `toml:"command"`
	Description        string            `toml:"description"`
	ExecutionType      string            `toml:"execution_type"`
	Workdir            string            `toml:"workdir"`
	Env                map[string]string `toml:"env"`
	Files              []string          `toml:"files"`
	DependsOn          []string          `toml:"depends_on"`
	TimeoutSeconds      *int64            `toml:"timeout_seconds"`
	ModifiesRepository *bool             `toml:"modifies_repository"`
	RunAlways          bool              `toml:"run_always"`
	RequiresFiles      bool              `toml:"requires_files"`
	RunAtRoot          bool              `toml:"run_at_root"`
}

type rawGroup struct {
	ExecutionStrategy string   `toml:"execution_strategy"`
	Includes          []string `toml:"includes"`
	Placeholder       bool     `toml:"placeholder"`
}

// Load reads and validates the configuration file at path. filepath.Dir(path)
// is recorded as the config's owning directory.
func Load(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from our own tree walk
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrParse, path, err)
	}

	var raw rawRoot
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	if unknown := topLevelUndecoded(meta); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s: %s", ErrUnknownKey, path, strings.Join(unknown, ", "))
	}

	cfg := &ConfigFile{
		Dir:  filepath.Dir(path),
		Path: path,
	}

	hookOrder := tableOrder(meta, "hooks")
	for _, name := range hookOrder {
		h, err := convertHook(name, raw.Hooks[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Hooks = append(cfg.Hooks, h)
	}

	groupOrder := tableOrder(meta, "groups")
	for _, name := range groupOrder {
		g, err := convertGroup(name, raw.Groups[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Groups = append(cfg.Groups, g)
	}

	cfg.buildIndexes()

	if err := validateDependencies(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// topLevelUndecoded returns the names of top-level keys other than "hooks"
// and "groups" that appeared in the file.
func topLevelUndecoded(meta toml.MetaData) []string {
	seen := map[string]bool{}
	var unknown []string
	for _, k := range meta.Undecoded() {
		if len(k) == 0 {
			continue
		}
		top := k[0]
		if top == "hooks" || top == "groups" {
			continue
		}
		if !seen[top] {
			seen[top] = true
			unknown = append(unknown, top)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// tableOrder recovers the file-order of second-level keys under a
// top-level table, e.g. the order hooks appeared under [hooks.<name>].
func tableOrder(meta toml.MetaData, table string) []string {
	seen := map[string]bool{}
	var order []string
	for _, k := range meta.Keys() {
		if len(k) >= 2 && k[0] == table {
			name := k[1]
			if !seen[name] {
				seen[name] = true
				order = append(order, name)
			}
		}
	}
	return order
}

func convertHook(name string, r rawHook) (HookDefinition, error) {
	cmd, err := convertCommand(r.Command)
	if err != nil {
		return HookDefinition{}, fmt.Errorf("hook %q: %w", name, err)
	}
	if cmd.IsZero() {
		return HookDefinition{}, fmt.Errorf("%w: hook %q: command is required", ErrInvariantViolation, name)
	}

	execType := ExecutionType(r.ExecutionType)
	switch execType {
	case "":
		execType = PerFile
	case PerFile, InPlace, Other:
	default:
		return HookDefinition{}, fmt.Errorf(
			"%w: hook %q: unknown execution_type %q", ErrInvariantViolation, name, r.ExecutionType,
		)
	}

	timeout := constants.DefaultTimeoutSeconds
	if r.TimeoutSeconds != nil {
		timeout = int(*r.TimeoutSeconds)
	}
	if timeout <= 0 {
		return HookDefinition{}, fmt.Errorf(
			"%w: hook %q: timeout_seconds must be positive, got %d", ErrInvariantViolation, name, timeout,
		)
	}

	modifies := false
	if r.ModifiesRepository != nil {
		modifies = *r.ModifiesRepository
	}

	if r.RunAlways && (len(r.Files) > 0 || r.RequiresFiles) {
		return HookDefinition{}, fmt.Errorf(
			"%w: hook %q: run_always forbids files and requires_files", ErrInvariantViolation, name,
		)
	}

	return HookDefinition{
		Name:               name,
		Command:            cmd,
		ExecutionType:      execType,
		ModifiesRepository: modifies,
		Files:              r.Files,
		RunAlways:          r.RunAlways,
		RequiresFiles:      r.RequiresFiles,
		DependsOn:          r.DependsOn,
		Workdir:            r.Workdir,
		Env:                r.Env,
		RunAtRoot:          r.RunAtRoot,
		TimeoutSeconds:     timeout,
	}, nil
}

// convertCommand accepts either a TOML string or a TOML array of strings.
func convertCommand(v any) (Command, error) {
	switch val := v.(type) {
	case nil:
		return Command{}, nil
	case string:
		return Command{Shell: val}, nil
	case []any:
		argv := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return Command{}, errors.New("command array must contain only strings")
			}
			argv = append(argv, s)
		}
		return Command{Argv: argv}, nil
	default:
		return Command{}, fmt.Errorf("command must be a string or array of strings, got %T", v)
	}
}

func convertGroup(name string, r rawGroup) (HookGroup, error) {
	strategy := ExecutionStrategy(r.ExecutionStrategy)
	switch strategy {
	case "":
		strategy = Sequential
	case Sequential, Parallel, ForceParallel:
	default:
		return HookGroup{}, fmt.Errorf(
			"%w: group %q: unknown execution_strategy %q", ErrInvariantViolation, name, r.ExecutionStrategy,
		)
	}

	return HookGroup{
		Name:              name,
		Includes:          r.Includes,
		ExecutionStrategy: strategy,
		Placeholder:       r.Placeholder,
	}, nil
}

// validateDependencies checks that every depends_on entry resolves within
// the same config (invariant c) and that the dependency relation is
// acyclic (invariant d).
func validateDependencies(cfg *ConfigFile) error {
	for _, h := range cfg.Hooks {
		for _, dep := range h.DependsOn {
			if _, ok := cfg.Hook(dep); !ok {
				return fmt.Errorf(
					"%w: hook %q depends on unknown hook %q", ErrInvariantViolation, h.Name, dep,
				)
			}
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(cfg.Hooks))
	var visit func(name string, stack []string) error
	visit = func(name string, stack []string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(append(stack, name), " -> "))
		}
		color[name] = gray
		h, _ := cfg.Hook(name)
		for _, dep := range h.DependsOn {
			if err := visit(dep, append(stack, name)); err != nil {
				return err
			}
		}
		color[name] = black
		return nil
	}

	for _, h := range cfg.Hooks {
		if err := visit(h.Name, nil); err != nil {
			return err
		}
	}
	return nil
}
