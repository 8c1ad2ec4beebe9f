package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/peter-hook/peter-hook/pkg/constants"
)

// ErrLegacyConfigPresent is returned when one or more deprecated .hooks.toml
// files are found anywhere under the repository root. Every command except
// version and license refuses to proceed while any exist, to avoid silently
// running a configuration the maintainer has already started migrating
// away from.
type ErrLegacyConfigPresent struct {
	Paths []string
}

func (e *ErrLegacyConfigPresent) Error() string {
	return fmt.Sprintf(
		"%s %s deprecated and no longer read; rename %s before running any command: %s",
		pluralizeFile(len(e.Paths)), pluralizeIs(len(e.Paths)), constants.ConfigFileName, strings.Join(e.Paths, ", "),
	)
}

func pluralizeFile(n int) string {
	if n == 1 {
		return "file"
	}
	return "files"
}

func pluralizeIs(n int) string {
	if n == 1 {
		return "is"
	}
	return "are"
}

// CheckLegacyConfig walks repoRoot, honoring ignore files, and returns
// ErrLegacyConfigPresent listing every occurrence of the deprecated config
// filename found.
func CheckLegacyConfig(repoRoot string) error {
	var found []string
	err := walkNonIgnored(repoRoot, func(relPath string, isDir bool) {
		if !isDir && filepath.Base(relPath) == constants.LegacyConfigFileName {
			found = append(found, filepath.Join(repoRoot, filepath.FromSlash(relPath)))
		}
	})
	if err != nil {
		return fmt.Errorf("scanning %s for legacy configuration: %w", repoRoot, err)
	}
	if len(found) > 0 {
		return &ErrLegacyConfigPresent{Paths: found}
	}
	return nil
}
