package change

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter-hook/peter-hook/pkg/constants"
)

type fakeAdapter struct {
	staged       []string
	committed    map[string][]string
	worktree     []string
	changed      map[[2]string][]string
	resolved     map[string]string
	head         string
	headOK       bool
	upstream     string
	upstreamOK   bool
}

func (f *fakeAdapter) ListStaged() ([]string, error)            { return f.staged, nil }
func (f *fakeAdapter) ListWorktreeChanges() ([]string, error)   { return f.worktree, nil }
func (f *fakeAdapter) ListCommittedIn(oid string) ([]string, error) {
	return f.committed[oid], nil
}
func (f *fakeAdapter) ListChangedBetween(a, b string) ([]string, error) {
	return f.changed[[2]string{a, b}], nil
}
func (f *fakeAdapter) ResolveOID(rev string) (string, bool) {
	v, ok := f.resolved[rev]
	return v, ok
}
func (f *fakeAdapter) HeadOID() (string, bool)     { return f.head, f.headOK }
func (f *fakeAdapter) UpstreamOID() (string, bool) { return f.upstream, f.upstreamOK }

func TestDetect_PreCommit(t *testing.T) {
	a := &fakeAdapter{staged: []string{"a.go", "b.go"}}
	set, err := Detect(a, "pre-commit", nil)
	require.NoError(t, err)
	assert.True(t, set.Available)
	assert.Equal(t, []string{"a.go", "b.go"}, set.Files)
}

func TestDetect_CommitMsgYieldsNone(t *testing.T) {
	set, err := Detect(&fakeAdapter{}, "commit-msg", nil)
	require.NoError(t, err)
	assert.False(t, set.Available)
	assert.False(t, CanProvideFiles("commit-msg"))
}

func TestDetect_PostCommitUsesHead(t *testing.T) {
	a := &fakeAdapter{
		head:      "deadbeef",
		headOK:    true,
		committed: map[string][]string{"deadbeef": {"x.go"}},
	}
	set, err := Detect(a, "post-commit", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x.go"}, set.Files)
}

func TestDetect_PrePush_NewBranch(t *testing.T) {
	local := strings.Repeat("a", 40)
	a := &fakeAdapter{
		changed: map[[2]string][]string{
			{constants.EmptyTreeOIDSHA1, local}: {"new.go"},
		},
	}
	stdin := strings.NewReader("refs/heads/feature " + local + " refs/heads/feature " + constants.ZeroOIDSHA1 + "\n")
	set, err := Detect(a, "pre-push", stdin)
	require.NoError(t, err)
	assert.True(t, set.Available)
	assert.Equal(t, []string{"new.go"}, set.Files)
}

func TestDetect_PrePush_BranchDeletion(t *testing.T) {
	remote := strings.Repeat("b", 40)
	stdin := strings.NewReader("refs/heads/old " + constants.ZeroOIDSHA1 + " refs/heads/old " + remote + "\n")
	set, err := Detect(&fakeAdapter{}, "pre-push", stdin)
	require.NoError(t, err)
	assert.False(t, set.Available)
}

func TestDetect_PrePush_NormalUpdate(t *testing.T) {
	local := strings.Repeat("c", 40)
	remote := strings.Repeat("d", 40)
	a := &fakeAdapter{
		changed: map[[2]string][]string{
			{remote, local}: {"changed.go"},
		},
	}
	stdin := strings.NewReader("refs/heads/main " + local + " refs/heads/main " + remote + "\n")
	set, err := Detect(a, "pre-push", stdin)
	require.NoError(t, err)
	assert.Equal(t, []string{"changed.go"}, set.Files)
}

func TestDetect_PrePush_OnlyFirstLineConsumed(t *testing.T) {
	local := strings.Repeat("e", 40)
	remote := strings.Repeat("f", 40)
	a := &fakeAdapter{
		changed: map[[2]string][]string{
			{remote, local}: {"first.go"},
		},
	}
	stdin := strings.NewReader(
		"refs/heads/main " + local + " refs/heads/main " + remote + "\n" +
			"refs/heads/other garbage-line-should-not-be-parsed\n",
	)
	set, err := Detect(a, "pre-push", stdin)
	require.NoError(t, err)
	assert.Equal(t, []string{"first.go"}, set.Files)
}

func TestDetect_PrePush_InvalidOIDFallsBackToUpstream(t *testing.T) {
	a := &fakeAdapter{
		head: "h", headOK: true,
		upstream: "u", upstreamOK: true,
		changed: map[[2]string][]string{{"u", "h"}: {"fallback.go"}},
	}
	stdin := strings.NewReader("refs/heads/main notahex refs/heads/main alsoinvalid\n")
	set, err := Detect(a, "pre-push", stdin)
	require.NoError(t, err)
	assert.True(t, set.Available)
	assert.Equal(t, []string{"fallback.go"}, set.Files)
}

func TestDetect_PrePush_InvalidOIDNoUpstreamYieldsNone(t *testing.T) {
	stdin := strings.NewReader("refs/heads/main notahex refs/heads/main alsoinvalid\n")
	set, err := Detect(&fakeAdapter{}, "pre-push", stdin)
	require.NoError(t, err)
	assert.False(t, set.Available)
}

func TestDetect_PrePush_EmptyStdinFallsBackToUpstream(t *testing.T) {
	a := &fakeAdapter{
		head: "h", headOK: true,
		upstream: "u", upstreamOK: true,
		changed: map[[2]string][]string{{"u", "h"}: {"fallback.go"}},
	}
	set, err := Detect(a, "pre-push", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, []string{"fallback.go"}, set.Files)
}

func TestDetect_PrePush_EmptyStdinNoUpstream(t *testing.T) {
	a := &fakeAdapter{head: "h", headOK: true}
	set, err := Detect(a, "pre-push", strings.NewReader(""))
	require.NoError(t, err)
	assert.False(t, set.Available)
}

func TestCanProvideFiles(t *testing.T) {
	assert.True(t, CanProvideFiles("pre-commit"))
	assert.True(t, CanProvideFiles("pre-push"))
	assert.False(t, CanProvideFiles("prepare-commit-msg"))
	assert.False(t, CanProvideFiles("applypatch-msg"))
}
