// Package template implements whitelist-only variable substitution for
// hook commands, environment values, and working directories.
package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Whitelist is the closed set of variable names recognized inside a
// template. Matching against it is case-sensitive.
var Whitelist = []string{
	"HOOK_DIR",
	"REPO_ROOT",
	"PROJECT_NAME",
	"HOME_DIR",
	"PATH",
	"WORKING_DIR",
	"CHANGED_FILES",
	"CHANGED_FILES_LIST",
	"CHANGED_FILES_FILE",
	"COMMON_DIR",
	"IS_WORKTREE",
	"WORKTREE_NAME",
}

// tokenPattern matches any {name}-shaped token, whitelisted or not, so that
// unrecognized tokens are reported rather than silently left in place.
// Nested braces are not treated as an escape: {{X}} matches {X} at the
// inner position, leaving the outer pair literal.
var tokenPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// UnknownTemplateVariableError is returned when a template references a
// name outside Whitelist.
type UnknownTemplateVariableError struct {
	Name string
}

func (e *UnknownTemplateVariableError) Error() string {
	return fmt.Sprintf(
		"unknown template variable %q (expected one of: %s)",
		e.Name, strings.Join(Whitelist, ", "),
	)
}

// Context supplies the value of every whitelisted variable for one
// expansion. ChangedFilesFile is invoked lazily, once per CHANGED_FILES_FILE
// token in the template and never when there is none; it is responsible for
// creating the backing temp file (and for reusing it across calls), and a
// nil ChangedFilesFile expands to the empty string.
type Context struct {
	ChangedFilesFile func() (string, error)
	HookDir          string
	RepoRoot         string
	ProjectName      string
	HomeDir          string
	Path             string
	WorkingDir       string
	CommonDir        string
	WorktreeName     string
	ChangedFiles     []string
	IsWorktree       bool
}

// Expand performs a single-pass textual substitution of every {NAME} token
// in s using ctx. It returns UnknownTemplateVariableError on the first
// unrecognized token encountered (scanning left to right).
func Expand(s string, ctx Context) (string, error) {
	var firstErr error

	result := tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		if firstErr != nil {
			return tok
		}
		name := tok[1 : len(tok)-1]
		val, err := ctx.value(name)
		if err != nil {
			firstErr = err
			return tok
		}
		return val
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

func (c Context) value(name string) (string, error) {
	switch name {
	case "HOOK_DIR":
		return c.HookDir, nil
	case "REPO_ROOT":
		return c.RepoRoot, nil
	case "PROJECT_NAME":
		return c.ProjectName, nil
	case "HOME_DIR":
		return c.HomeDir, nil
	case "PATH":
		return c.Path, nil
	case "WORKING_DIR":
		return c.WorkingDir, nil
	case "CHANGED_FILES":
		return strings.Join(c.ChangedFiles, " "), nil
	case "CHANGED_FILES_LIST":
		return strings.Join(c.ChangedFiles, "\n"), nil
	case "CHANGED_FILES_FILE":
		if c.ChangedFilesFile == nil {
			return "", nil
		}
		return c.ChangedFilesFile()
	case "COMMON_DIR":
		return c.CommonDir, nil
	case "IS_WORKTREE":
		return strconv.FormatBool(c.IsWorktree), nil
	case "WORKTREE_NAME":
		return c.WorktreeName, nil
	default:
		return "", &UnknownTemplateVariableError{Name: name}
	}
}
