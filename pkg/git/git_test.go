package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (dir string, repo *git.Repository) {
	t.Helper()
	dir = t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)

	hash, err := wt.Commit("commit "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Unix(0, 0)},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestLocate_FindsRoot(t *testing.T) {
	dir, _ := initRepo(t)
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	r, err := Locate(sub)
	require.NoError(t, err)
	assert.Equal(t, dir, r.RepoRoot())
	assert.False(t, r.IsWorktree())
}

func TestLocate_NotARepo(t *testing.T) {
	dir := t.TempDir()
	_, err := Locate(dir)
	require.ErrorIs(t, err, ErrNotARepo)
}

func TestListCommittedIn_RootCommit(t *testing.T) {
	dir, repo := initRepo(t)
	oid := commitFile(t, repo, dir, "a.txt", "hello")

	r, err := Locate(dir)
	require.NoError(t, err)

	files, err := r.ListCommittedIn(oid)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, files)
}

func TestListChangedBetween(t *testing.T) {
	dir, repo := initRepo(t)
	first := commitFile(t, repo, dir, "a.txt", "hello")
	second := commitFile(t, repo, dir, "b.txt", "world")

	r, err := Locate(dir)
	require.NoError(t, err)

	files, err := r.ListChangedBetween(first, second)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, files)
}

func TestListChangedBetween_FromEmptyTree(t *testing.T) {
	dir, repo := initRepo(t)
	oid := commitFile(t, repo, dir, "a.txt", "hello")

	r, err := Locate(dir)
	require.NoError(t, err)

	files, err := r.ListChangedBetween(EmptyTreeOID(), oid)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, files)
}

func TestResolveOID_UnknownRevision(t *testing.T) {
	dir, _ := initRepo(t)
	r, err := Locate(dir)
	require.NoError(t, err)

	_, ok := r.ResolveOID("does-not-exist")
	assert.False(t, ok)
}

func TestResolveOID_EmptyTreeShortCircuits(t *testing.T) {
	dir, _ := initRepo(t)
	r, err := Locate(dir)
	require.NoError(t, err)

	oid, ok := r.ResolveOID(EmptyTreeOID())
	assert.True(t, ok)
	assert.Equal(t, EmptyTreeOID(), oid)
}

func TestListStaged(t *testing.T) {
	dir, repo := initRepo(t)
	commitFile(t, repo, dir, "a.txt", "hello")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("new"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("b.txt")
	require.NoError(t, err)

	r, err := Locate(dir)
	require.NoError(t, err)

	files, err := r.ListStaged()
	require.NoError(t, err)
	assert.Contains(t, files, "b.txt")
}

func TestHasUnmergedFiles_CleanRepoIsFalse(t *testing.T) {
	dir, repo := initRepo(t)
	commitFile(t, repo, dir, "a.txt", "hello")

	r, err := Locate(dir)
	require.NoError(t, err)
	assert.False(t, r.HasUnmergedFiles())
}
