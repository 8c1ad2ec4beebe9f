// Package resolver groups a change set by the configuration file that owns
// each path, and degrades gracefully when no change set is available.
package resolver

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/peter-hook/peter-hook/pkg/config"
	"github.com/peter-hook/peter-hook/pkg/constants"
)

// Unit is one independent planning unit: a config together with the
// subset of changed files it owns.
type Unit struct {
	Config *config.ConfigFile
	Files  []string
}

// Loader finds the nearest configuration file's directory for a given
// starting directory, returning "" when none is found before repoRoot.
type Loader interface {
	// NearestConfigDir walks upward from dir (inclusive) to repoRoot
	// (inclusive) looking for a configuration file, returning its
	// directory or ok=false.
	NearestConfigDir(dir, repoRoot string) (string, bool)
	// Load parses the configuration file owned by dir.
	Load(dir string) (*config.ConfigFile, error)
}

// Resolve groups files by nearest owning config. When available is false
// (the change set could not be determined), it produces a single unit
// rooted at the nearest config to startDir with an empty file list, so
// run_always hooks still execute.
func Resolve(loader Loader, repoRoot, startDir string, files []string, available bool) ([]Unit, error) {
	if !available {
		dir, ok := loader.NearestConfigDir(startDir, repoRoot)
		if !ok {
			return nil, nil
		}
		cfg, err := loader.Load(dir)
		if err != nil {
			return nil, err
		}
		return []Unit{{Config: cfg, Files: nil}}, nil
	}

	byDir := make(map[string][]string)
	for _, f := range files {
		parent := filepath.Dir(filepath.Join(repoRoot, filepath.FromSlash(f)))
		dir, ok := loader.NearestConfigDir(parent, repoRoot)
		if !ok {
			continue
		}
		byDir[dir] = append(byDir[dir], f)
	}

	dirs := make([]string, 0, len(byDir))
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	units := make([]Unit, 0, len(dirs))
	for _, dir := range dirs {
		cfg, err := loader.Load(dir)
		if err != nil {
			return nil, err
		}
		units = append(units, Unit{Config: cfg, Files: byDir[dir]})
	}
	return units, nil
}

// WalkLoader is the filesystem-backed Loader, caching parsed configs by
// directory for the lifetime of one invocation.
type WalkLoader struct {
	cache map[string]*config.ConfigFile
	stat  func(path string) bool
}

// NewWalkLoader returns a Loader that checks for constants.ConfigFileName
// on disk using exists to test file presence.
func NewWalkLoader(exists func(path string) bool) *WalkLoader {
	return &WalkLoader{cache: make(map[string]*config.ConfigFile), stat: exists}
}

func (l *WalkLoader) NearestConfigDir(dir, repoRoot string) (string, bool) {
	dir = filepath.Clean(dir)
	repoRoot = filepath.Clean(repoRoot)

	for {
		if l.stat(filepath.Join(dir, constants.ConfigFileName)) {
			return dir, true
		}
		if dir == repoRoot {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir || !strings.HasPrefix(dir, repoRoot) {
			return "", false
		}
		dir = parent
	}
}

func (l *WalkLoader) Load(dir string) (*config.ConfigFile, error) {
	if cfg, ok := l.cache[dir]; ok {
		return cfg, nil
	}
	cfg, err := config.Load(filepath.Join(dir, constants.ConfigFileName))
	if err != nil {
		return nil, err
	}
	l.cache[dir] = cfg
	return cfg, nil
}
