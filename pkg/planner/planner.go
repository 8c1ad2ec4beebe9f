// Package planner turns one resolved configuration, an event name, and a
// file subset into an ordered execution plan: waves of hooks safe to run
// together, respecting dependency and mutation-safety constraints.
package planner

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/peter-hook/peter-hook/pkg/config"
)

// ErrGroupCycle is returned when group includes form a cycle.
var ErrGroupCycle = errors.New("group inclusion cycle")

// ErrDependencyCycle is returned when hook depends_on forms a cycle.
var ErrDependencyCycle = errors.New("hook dependency cycle")

// SkipReason tags why a hook was not launched.
type SkipReason string

const (
	SkippedIncompatible SkipReason = "skipped-incompatible"
	SkippedNoFiles      SkipReason = "skipped-no-files"
	SkippedNoMatch      SkipReason = "skipped-no-match"
)

// Item is one hook bound into the plan, with its filtered file subset. If
// Skip is non-empty the hook must not be launched.
type Item struct {
	Hook  *config.HookDefinition
	Files []string
	Skip  SkipReason
}

// Plan is the ordered output for one (config, event) pair. Waves are
// totally ordered; within a wave, hooks run concurrently.
type Plan struct {
	Waves   [][]Item
	Skipped []Item
}

// Build builds the execution plan for cfg's group matching event, given the
// file subset this config owns and whether the invoking event can supply a
// file list at all.
func Build(cfg *config.ConfigFile, event string, files []string, canProvideFiles bool) (Plan, error) {
	group, ok := cfg.Group(event)
	if !ok {
		return Plan{}, nil
	}

	names, err := expandGroup(cfg, group.Name, map[string]bool{})
	if err != nil {
		return Plan{}, err
	}

	items := make([]Item, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		hook, ok := cfg.Hook(name)
		if !ok {
			// Name is neither a hook nor a group in this config; it
			// contributes nothing at this level.
			continue
		}

		item := Item{Hook: hook}
		if hook.RequiresFiles && !canProvideFiles {
			item.Skip = SkippedIncompatible
			items = append(items, item)
			continue
		}
		if hook.RequiresFiles && files == nil {
			item.Skip = SkippedNoFiles
			items = append(items, item)
			continue
		}

		matched, err := filterFiles(hook.Files, files)
		if err != nil {
			return Plan{}, fmt.Errorf("hook %q: %w", hook.Name, err)
		}
		item.Files = matched

		if len(hook.Files) > 0 && len(matched) == 0 && !hook.RunAlways {
			item.Skip = SkippedNoMatch
		}
		items = append(items, item)
	}

	runnable := make([]Item, 0, len(items))
	var skipped []Item
	for _, it := range items {
		if it.Skip != "" {
			skipped = append(skipped, it)
		} else {
			runnable = append(runnable, it)
		}
	}

	ordered, err := topoSort(runnable)
	if err != nil {
		return Plan{}, err
	}

	waves := buildWaves(ordered, group.ExecutionStrategy)

	return Plan{Waves: waves, Skipped: skipped}, nil
}

// expandGroup recursively flattens a group's includes into a flat,
// include-ordered list of names, detecting cycles. Group names themselves
// are never emitted, and a placeholder group contributes nothing; every
// name that is not a group in this config is emitted as a leaf, whether or
// not a hook of that name exists, for the caller to resolve or skip over.
func expandGroup(cfg *config.ConfigFile, name string, visiting map[string]bool) ([]string, error) {
	group, ok := cfg.Group(name)
	if !ok {
		// Not a group in this config; treat as a leaf hook name.
		return []string{name}, nil
	}
	if visiting[name] {
		return nil, fmt.Errorf("%w: %s", ErrGroupCycle, name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	var out []string
	if group.Placeholder {
		return out, nil
	}
	for _, inc := range group.Includes {
		expanded, err := expandGroup(cfg, inc, visiting)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

func filterFiles(patterns, files []string) ([]string, error) {
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

// topoSort orders items by depends_on with ties broken by include order
// (the order items were already in). A hook that depends on a skipped
// (absent) hook is treated as having that dependency already satisfied.
func topoSort(items []Item) ([]Item, error) {
	index := make(map[string]int, len(items))
	for i, it := range items {
		index[it.Hook.Name] = i
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(items))
	var order []Item

	var visit func(i int, stack []string) error
	visit = func(i int, stack []string) error {
		switch color[i] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("%w: %s", ErrDependencyCycle, items[i].Hook.Name)
		}
		color[i] = gray
		for _, dep := range items[i].Hook.DependsOn {
			if j, ok := index[dep]; ok {
				if err := visit(j, append(stack, items[i].Hook.Name)); err != nil {
					return err
				}
			}
		}
		color[i] = black
		order = append(order, items[i])
		return nil
	}

	for i := range items {
		if err := visit(i, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// buildWaves assigns items (already topologically sorted) to waves per the
// configured execution strategy.
//
// For "parallel", the spec's literal rule ("greedy maximal prefix of
// read-only hooks, then a singleton mutator, repeat") is insufficient on
// its own: a chain of read-only hooks with a dependency between them (S4)
// would be greedily packed into one wave, violating the requirement that a
// dependency never share a wave with its dependent. buildWaves first
// layers every hook by dependency depth (a hook's layer is one more than
// the deepest layer of anything it depends on), which guarantees the
// topology invariant on its own, then applies the mutator-isolation rule
// within each layer.
func buildWaves(items []Item, strategy config.ExecutionStrategy) [][]Item {
	if len(items) == 0 {
		return nil
	}

	switch strategy {
	case config.Sequential:
		waves := make([][]Item, len(items))
		for i, it := range items {
			waves[i] = []Item{it}
		}
		return waves
	case config.ForceParallel:
		return [][]Item{items}
	default: // Parallel
		return layeredWaves(items)
	}
}

func layeredWaves(items []Item) [][]Item {
	layerOf := make(map[string]int, len(items))
	index := make(map[string]*Item, len(items))
	for i := range items {
		index[items[i].Hook.Name] = &items[i]
	}

	for _, it := range items {
		layerOf[it.Hook.Name] = dependencyLayer(it.Hook.Name, index, layerOf)
	}

	maxLayer := 0
	for _, l := range layerOf {
		if l > maxLayer {
			maxLayer = l
		}
	}

	byLayer := make([][]Item, maxLayer+1)
	for _, it := range items {
		l := layerOf[it.Hook.Name]
		byLayer[l] = append(byLayer[l], it)
	}

	var waves [][]Item
	for _, layerItems := range byLayer {
		waves = append(waves, packLayer(layerItems)...)
	}
	return waves
}

func dependencyLayer(name string, index map[string]*Item, memo map[string]int) int {
	if l, ok := memo[name]; ok {
		return l
	}
	it, ok := index[name]
	if !ok {
		return 0
	}
	max := -1
	for _, dep := range it.Hook.DependsOn {
		if _, ok := index[dep]; !ok {
			continue
		}
		l := dependencyLayer(dep, index, memo)
		if l > max {
			max = l
		}
	}
	memo[name] = max + 1
	return max + 1
}

// packLayer packs one dependency layer: every read-only hook of the layer
// shares one wave, followed by each mutator in its own singleton wave, in
// include order. Hooks in one layer never depend on each other, so moving
// the read-only hooks ahead of the mutators respects the topology.
func packLayer(items []Item) [][]Item {
	var waves [][]Item
	var readOnlyRun []Item
	var mutators [][]Item

	flush := func() {
		if len(readOnlyRun) > 0 {
			waves = append(waves, readOnlyRun)
			readOnlyRun = nil
		}
	}

	for _, it := range items {
		if it.Hook.ModifiesRepository {
			mutators = append(mutators, []Item{it})
		} else {
			readOnlyRun = append(readOnlyRun, it)
		}
	}
	flush()
	return append(waves, mutators...)
}
