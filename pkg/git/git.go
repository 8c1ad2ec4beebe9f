// Package git adapts go-git into the narrow repository interface peter-hook
// needs: locating a repository, listing changed paths between two points,
// and resolving revisions to object IDs.
package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/peter-hook/peter-hook/pkg/constants"
)

// ErrNotARepo is returned by Locate when no enclosing .git directory (or
// worktree gitdir file) is found.
var ErrNotARepo = errors.New("not a git repository")

// GitFailure wraps a failure surfaced from the underlying git plumbing with
// the command attempted and any stderr-equivalent detail, matching the
// shape git subprocess callers expect when reporting failures upward.
type GitFailure struct {
	Command string
	Detail  string
}

func (e *GitFailure) Error() string {
	return fmt.Sprintf("git %s: %s", e.Command, e.Detail)
}

// Repository is a handle on a discovered repository, opened once and reused
// for every adapter call.
type Repository struct {
	repo       *git.Repository
	Root       string
	commonDir  string
	worktree   string
	isWorktree bool
}

// Locate walks upward from dir (the current directory if dir is empty)
// until it finds a .git directory or worktree gitdir file.
func Locate(dir string) (*Repository, error) {
	root, commonDir, worktreeName, isWorktree, err := findGitRoot(dir)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, &GitFailure{Command: "open", Detail: err.Error()}
	}

	return &Repository{
		repo:       repo,
		Root:       root,
		commonDir:  commonDir,
		worktree:   worktreeName,
		isWorktree: isWorktree,
	}, nil
}

// findGitRoot locates the repository root and, for worktrees, the shared
// common directory and worktree name recorded in the .git file.
func findGitRoot(dir string) (root, commonDir, worktreeName string, isWorktree bool, err error) {
	if dir == "" {
		dir, err = os.Getwd()
		if err != nil {
			return "", "", "", false, fmt.Errorf("determining working directory: %w", err)
		}
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", "", "", false, fmt.Errorf("resolving absolute path: %w", err)
	}

	for {
		gitPath := filepath.Join(dir, ".git")
		info, statErr := os.Stat(gitPath)
		if statErr == nil {
			if info.IsDir() {
				return dir, gitPath, "", false, nil
			}
			// Worktree: .git is a file containing "gitdir: <path>".
			// #nosec G304 -- path built from our own upward walk
			content, readErr := os.ReadFile(gitPath)
			if readErr == nil {
				line := strings.TrimSpace(string(content))
				if gitdir, ok := strings.CutPrefix(line, "gitdir: "); ok {
					// gitdir is <common>/worktrees/<name>.
					common := filepath.Dir(filepath.Dir(gitdir))
					name := filepath.Base(gitdir)
					return dir, common, name, true, nil
				}
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", "", false, ErrNotARepo
		}
		dir = parent
	}
}

// RepoRoot returns the repository's working tree root.
func (r *Repository) RepoRoot() string { return r.Root }

// CommonDir returns the shared .git directory, which differs from
// filepath.Join(Root, ".git") only for linked worktrees.
func (r *Repository) CommonDir() string { return r.commonDir }

// IsWorktree reports whether this repository is a linked worktree rather
// than the primary checkout.
func (r *Repository) IsWorktree() bool { return r.isWorktree }

// WorktreeName returns the worktree's name, or "" when not a worktree.
func (r *Repository) WorktreeName() string { return r.worktree }

// EmptyTreeOID is git's well-known SHA-1 empty tree object ID.
func EmptyTreeOID() string { return constants.EmptyTreeOIDSHA1 }

// ResolveOID resolves a revspec (branch, tag, HEAD, or literal hash) to a
// full object ID. It returns ok=false rather than an error when the
// revision simply does not exist, matching the adapter's "oid | none"
// contract.
func (r *Repository) ResolveOID(revspec string) (oid string, ok bool) {
	if revspec == constants.EmptyTreeOIDSHA1 || revspec == constants.EmptyTreeOIDSHA256 {
		return revspec, true
	}
	if hash, err := r.repo.ResolveRevision(plumbing.Revision(revspec)); err == nil {
		return hash.String(), true
	}
	if hash := plumbing.NewHash(revspec); !hash.IsZero() && r.repo.Storer.HasEncodedObject(hash) == nil {
		return hash.String(), true
	}
	return "", false
}

// ListStaged returns repository-relative paths staged in the index that
// differ from HEAD.
func (r *Repository) ListStaged() ([]string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, &GitFailure{Command: "worktree", Detail: err.Error()}
	}
	status, err := wt.Status()
	if err != nil {
		return nil, &GitFailure{Command: "status", Detail: err.Error()}
	}

	var files []string
	for file, st := range status {
		if st.Staging == git.Added || st.Staging == git.Modified || st.Staging == git.Copied || st.Staging == git.Deleted {
			files = append(files, toSlash(file))
		}
	}
	return files, nil
}

// ListWorktreeChanges returns repository-relative paths with unstaged
// modifications in the working tree (tracked files only).
func (r *Repository) ListWorktreeChanges() ([]string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, &GitFailure{Command: "worktree", Detail: err.Error()}
	}
	status, err := wt.Status()
	if err != nil {
		return nil, &GitFailure{Command: "status", Detail: err.Error()}
	}

	var files []string
	for file, st := range status {
		if st.Worktree == git.Modified || st.Worktree == git.Deleted {
			files = append(files, toSlash(file))
		}
	}
	return files, nil
}

// ListCommittedIn returns the repository-relative paths changed by a single
// commit, diffed against its first parent (or against the empty tree for a
// root commit).
func (r *Repository) ListCommittedIn(oid string) ([]string, error) {
	commit, err := r.commitObject(oid)
	if err != nil {
		return nil, err
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, &GitFailure{Command: "tree", Detail: err.Error()}
	}

	if len(commit.ParentHashes) == 0 {
		return filesIn(tree)
	}

	parent, err := r.repo.CommitObject(commit.ParentHashes[0])
	if err != nil {
		return nil, &GitFailure{Command: "commit-object", Detail: err.Error()}
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, &GitFailure{Command: "tree", Detail: err.Error()}
	}

	return diffTrees(parentTree, tree)
}

// ListChangedBetween returns the repository-relative paths that differ
// between two object IDs, name-only, in the style of `git diff
// --name-only oidA oidB`. Either side may be the empty-tree OID.
func (r *Repository) ListChangedBetween(oidA, oidB string) ([]string, error) {
	treeA, err := r.treeForOID(oidA)
	if err != nil {
		return nil, err
	}
	treeB, err := r.treeForOID(oidB)
	if err != nil {
		return nil, err
	}
	return diffTrees(treeA, treeB)
}

func (r *Repository) treeForOID(oid string) (*object.Tree, error) {
	if oid == constants.EmptyTreeOIDSHA1 || oid == constants.EmptyTreeOIDSHA256 {
		return &object.Tree{}, nil
	}
	commit, err := r.commitObject(oid)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, &GitFailure{Command: "tree", Detail: err.Error()}
	}
	return tree, nil
}

func (r *Repository) commitObject(oid string) (*object.Commit, error) {
	hash, ok := r.ResolveOID(oid)
	if !ok {
		return nil, &GitFailure{Command: "rev-parse", Detail: fmt.Sprintf("unknown revision %q", oid)}
	}
	commit, err := r.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return nil, &GitFailure{Command: "commit-object", Detail: err.Error()}
	}
	return commit, nil
}

func filesIn(tree *object.Tree) ([]string, error) {
	var files []string
	err := tree.Files().ForEach(func(f *object.File) error {
		files = append(files, toSlash(f.Name))
		return nil
	})
	if err != nil {
		return nil, &GitFailure{Command: "ls-tree", Detail: err.Error()}
	}
	return files, nil
}

func diffTrees(from, to *object.Tree) ([]string, error) {
	changes, err := from.Diff(to)
	if err != nil {
		return nil, &GitFailure{Command: "diff-tree", Detail: err.Error()}
	}

	var files []string
	for _, change := range changes {
		if change.To.Name != "" {
			files = append(files, toSlash(change.To.Name))
		} else if change.From.Name != "" {
			files = append(files, toSlash(change.From.Name))
		}
	}
	return files, nil
}

// toSlash normalizes a path to forward slashes; go-git already reports
// repository-relative paths this way, but we normalize defensively for
// callers on Windows.
func toSlash(p string) string {
	return filepath.ToSlash(p)
}

// CurrentBranch returns the short name of the branch HEAD points to.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", &GitFailure{Command: "symbolic-ref", Detail: err.Error()}
	}
	if !head.Name().IsBranch() {
		return "", &GitFailure{Command: "symbolic-ref", Detail: "HEAD is detached"}
	}
	return head.Name().Short(), nil
}

// UpstreamOID resolves the current branch's configured upstream to an
// object ID, used by the pre-push change detector's empty-stdin fallback.
func (r *Repository) UpstreamOID() (oid string, ok bool) {
	return r.ResolveOID("@{upstream}")
}

// HeadOID resolves HEAD to an object ID.
func (r *Repository) HeadOID() (oid string, ok bool) {
	return r.ResolveOID("HEAD")
}

// HasUnmergedFiles reports whether the index still carries unresolved merge
// conflicts. No command calls it; `run` performs no merge-conflict check
// before a force-parallel group.
func (r *Repository) HasUnmergedFiles() bool {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false
	}
	status, err := wt.Status()
	if err != nil {
		return false
	}
	for _, st := range status {
		if st.Staging == git.UpdatedButUnmerged || st.Worktree == git.UpdatedButUnmerged {
			return true
		}
	}
	return false
}
