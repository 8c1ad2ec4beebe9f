package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter-hook/peter-hook/pkg/config"
)

func TestValidate_WarnsOnIncompatibleRequiresFiles(t *testing.T) {
	h := config.HookDefinition{Name: "needs-files", Command: config.Command{Shell: "true"}, RequiresFiles: true}
	cfg := config.New("/repo", []config.HookDefinition{h}, []config.HookGroup{
		{Name: "commit-msg", Includes: []string{"needs-files"}, ExecutionStrategy: config.Sequential},
	})
	cfg.Path = "/repo/.peter-hook.toml"

	warnings := Validate(cfg)
	require.Len(t, warnings, 1)
	assert.Equal(t, "needs-files", warnings[0].Hook)
	assert.Equal(t, "commit-msg", warnings[0].Group)
	assert.Contains(t, warnings[0].String(), "needs-files")
}

func TestValidate_NoWarningWhenEventCanProvideFiles(t *testing.T) {
	h := config.HookDefinition{Name: "needs-files", Command: config.Command{Shell: "true"}, RequiresFiles: true}
	cfg := config.New("/repo", []config.HookDefinition{h}, []config.HookGroup{
		{Name: "pre-commit", Includes: []string{"needs-files"}, ExecutionStrategy: config.Sequential},
	})

	assert.Empty(t, Validate(cfg))
}

func TestValidate_NoWarningWhenHookDoesNotRequireFiles(t *testing.T) {
	h := config.HookDefinition{Name: "optional", Command: config.Command{Shell: "true"}}
	cfg := config.New("/repo", []config.HookDefinition{h}, []config.HookGroup{
		{Name: "commit-msg", Includes: []string{"optional"}, ExecutionStrategy: config.Sequential},
	})

	assert.Empty(t, Validate(cfg))
}

func TestValidate_IgnoresNonEventGroupNames(t *testing.T) {
	h := config.HookDefinition{Name: "needs-files", Command: config.Command{Shell: "true"}, RequiresFiles: true}
	cfg := config.New("/repo", []config.HookDefinition{h}, []config.HookGroup{
		{Name: "custom-lint-target", Includes: []string{"needs-files"}, ExecutionStrategy: config.Sequential},
	})

	assert.Empty(t, Validate(cfg))
}
