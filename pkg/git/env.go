package git

import "strings"

// NoGitEnv strips GIT_* variables from a hook's child process environment.
// Without this, a hook that shells out to git would inherit the invoking
// git process's own GIT_DIR/GIT_WORK_TREE/GIT_INDEX_FILE, pointing its git
// calls at the wrong repository, worktree, or index.
func NoGitEnv(env []string) []string {
	var filteredEnv []string

	for _, envVar := range env {
		key := strings.SplitN(envVar, "=", 2)[0]

		// Skip problematic git environment variables
		if strings.HasPrefix(key, "GIT_") {
			// Allow certain git environment variables that are safe
			if strings.HasPrefix(key, "GIT_CONFIG_KEY_") ||
				strings.HasPrefix(key, "GIT_CONFIG_VALUE_") ||
				key == "GIT_EXEC_PATH" ||
				key == "GIT_SSH" ||
				key == "GIT_SSH_COMMAND" ||
				key == "GIT_SSL_CAINFO" {
				filteredEnv = append(filteredEnv, envVar)
			}
			// Skip other GIT_ variables as they can cause issues:
			// - GIT_WORK_TREE: Can cause git clone to clone wrong thing
			// - GIT_DIR: Can cause git clone to clone wrong thing
			// - GIT_INDEX_FILE: Can cause 'error invalid object ...' during commit
		} else {
			filteredEnv = append(filteredEnv, envVar)
		}
	}

	return filteredEnv
}
