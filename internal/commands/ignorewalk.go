package commands

import (
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// walkNonIgnored walks root, honoring every .gitignore found along the way
// plus an implicit .git directory exclusion, and invokes visit once per
// surviving entry with its root-relative slash-separated path.
func walkNonIgnored(root string, visit func(relPath string, isDir bool)) error {
	fs := osfs.New(root)
	patterns, err := gitignore.ReadPatterns(fs, nil)
	if err != nil {
		return fmt.Errorf("reading .gitignore patterns: %w", err)
	}
	patterns = append(patterns, gitignore.ParsePattern(".git", nil))
	matcher := gitignore.NewMatcher(patterns)

	var walk func(dir string, parts []string) error
	walk = func(dir string, parts []string) error {
		entries, err := fs.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			segs := append(append([]string{}, parts...), e.Name())
			if matcher.Match(segs, e.IsDir()) {
				continue
			}
			visit(strings.Join(segs, "/"), e.IsDir())
			if e.IsDir() {
				if err := walk(strings.Join(segs, "/"), segs); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(".", nil)
}
