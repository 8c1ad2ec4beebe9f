package commands

// Git hook event names peter-hook recognizes as install/run targets.
const (
	EventPreCommit        = "pre-commit"
	EventPrepareCommitMsg = "prepare-commit-msg"
	EventCommitMsg        = "commit-msg"
	EventPostCheckout     = "post-checkout"
	EventPostCommit       = "post-commit"
	EventPostMerge        = "post-merge"
	EventPrePush          = "pre-push"
	EventApplypatchMsg    = "applypatch-msg"
)

// OptionsUsage is the generic usage placeholder shown in command help.
const OptionsUsage = "[OPTIONS]"

// KnownEvents lists every event install/uninstall will manage by default.
var KnownEvents = []string{
	EventPreCommit,
	EventPrepareCommitMsg,
	EventCommitMsg,
	EventPostCheckout,
	EventPostCommit,
	EventPostMerge,
	EventPrePush,
	EventApplypatchMsg,
}
