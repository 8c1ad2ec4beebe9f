// Package validator cross-checks a configuration's groups against the
// capability of the git events they're bound to, surfacing warnings
// before any plan is executed.
package validator

import (
	"fmt"

	"github.com/peter-hook/peter-hook/pkg/change"
	"github.com/peter-hook/peter-hook/pkg/config"
)

// Warning names the hook and group whose requires_files expectation the
// bound event cannot satisfy.
type Warning struct {
	ConfigPath string
	Group      string
	Hook       string
}

func (w Warning) String() string {
	return fmt.Sprintf(
		"%s: group %q includes hook %q which requires files, but its event never supplies a file list",
		w.ConfigPath, w.Group, w.Hook,
	)
}

// knownEvents is the set of git hook event names a group name is checked
// against; a group named after anything else is a custom entry point
// (e.g. invoked only via `lint`) and is not validated here.
var knownEvents = map[string]bool{
	"pre-commit": true, "pre-push": true, "post-commit": true,
	"post-merge": true, "post-checkout": true, "commit-msg": true,
	"prepare-commit-msg": true, "applypatch-msg": true,
}

// Validate walks cfg's groups and returns one Warning per hook whose
// requires_files expectation its bound event cannot meet. It does not
// recurse into group includes from other configs; callers validate each
// resolved ConfigFile independently.
func Validate(cfg *config.ConfigFile) []Warning {
	var warnings []Warning

	for _, group := range cfg.Groups {
		if !knownEvents[group.Name] {
			continue
		}
		if change.CanProvideFiles(group.Name) {
			continue
		}

		for _, name := range resolveIncludes(cfg, group.Name, map[string]bool{}) {
			hook, ok := cfg.Hook(name)
			if !ok || !hook.RequiresFiles {
				continue
			}
			warnings = append(warnings, Warning{
				ConfigPath: cfg.Path,
				Group:      group.Name,
				Hook:       hook.Name,
			})
		}
	}

	return warnings
}

func resolveIncludes(cfg *config.ConfigFile, name string, visiting map[string]bool) []string {
	group, ok := cfg.Group(name)
	if !ok {
		return []string{name}
	}
	if visiting[name] {
		return nil
	}
	visiting[name] = true
	defer delete(visiting, name)

	var out []string
	for _, inc := range group.Includes {
		out = append(out, resolveIncludes(cfg, inc, visiting)...)
	}
	return out
}
