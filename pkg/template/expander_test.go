package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_WhitelistedTokens(t *testing.T) {
	ctx := Context{
		HookDir:      "/repo/sub",
		RepoRoot:     "/repo",
		ProjectName:  "repo",
		HomeDir:      "/home/dev",
		Path:         "/usr/bin",
		WorkingDir:   "/repo/sub",
		CommonDir:    "/repo/.git",
		WorktreeName: "feature-x",
		IsWorktree:   true,
		ChangedFiles: []string{"a.go", "b.go"},
	}

	out, err := Expand("{HOOK_DIR} {REPO_ROOT} {PROJECT_NAME}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "/repo/sub /repo repo", out)

	out, err = Expand("{CHANGED_FILES}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "a.go b.go", out)

	out, err = Expand("{CHANGED_FILES_LIST}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "a.go\nb.go", out)

	out, err = Expand("{IS_WORKTREE}/{WORKTREE_NAME}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "true/feature-x", out)
}

func TestExpand_UnknownVariableFails(t *testing.T) {
	_, err := Expand("echo {NOT_A_VAR}", Context{})
	require.Error(t, err)

	var unkErr *UnknownTemplateVariableError
	require.ErrorAs(t, err, &unkErr)
	assert.Equal(t, "NOT_A_VAR", unkErr.Name)
	assert.Contains(t, err.Error(), "HOOK_DIR")
}

func TestExpand_NestedBracesLeaveOuterLiteral(t *testing.T) {
	ctx := Context{HomeDir: "/home/dev"}
	out, err := Expand("{{HOME_DIR}}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "{/home/dev}", out)
}

func TestExpand_SingPassNoRescan(t *testing.T) {
	// A value containing a brace token is never re-expanded.
	ctx := Context{ProjectName: "{HOME_DIR}"}
	out, err := Expand("{PROJECT_NAME}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "{HOME_DIR}", out)
}

func TestExpand_ChangedFilesFileLazyAndEmptyWhenUnavailable(t *testing.T) {
	out, err := Expand("{CHANGED_FILES_FILE}", Context{})
	require.NoError(t, err)
	assert.Empty(t, out)

	calls := 0
	ctx := Context{ChangedFilesFile: func() (string, error) {
		calls++
		return "/tmp/changed-files-123", nil
	}}
	out, err = Expand("no reference here", ctx)
	require.NoError(t, err)
	assert.Equal(t, "no reference here", out)
	assert.Equal(t, 0, calls, "ChangedFilesFile must not be invoked unless referenced")

	out, err = Expand("{CHANGED_FILES_FILE}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/changed-files-123", out)
	assert.Equal(t, 1, calls)
}

func TestExpand_CaseSensitive(t *testing.T) {
	_, err := Expand("{home_dir}", Context{})
	require.Error(t, err)
	var unkErr *UnknownTemplateVariableError
	require.ErrorAs(t, err, &unkErr)
	assert.Equal(t, "home_dir", unkErr.Name)
}
