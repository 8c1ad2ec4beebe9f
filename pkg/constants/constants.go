// Package constants provides shared constants used throughout peter-hook.
package constants

// ConfigFileName is the live configuration filename, discovered by walking
// the tree upward from a changed file toward the repository root.
const ConfigFileName = ".peter-hook.toml"

// LegacyConfigFileName is the deprecated configuration filename. Its
// presence anywhere in the tree blocks every command except version/license.
const LegacyConfigFileName = ".hooks.toml"

// DefaultTimeoutSeconds is applied to a hook when timeout_seconds is omitted.
const DefaultTimeoutSeconds = 300

// Empty-tree object IDs, used as the "from" side when diffing a branch that
// did not exist on the remote.
const (
	EmptyTreeOIDSHA1   = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"
	EmptyTreeOIDSHA256 = "6ef19b41225c5369f1c104d45d8d85efa9b057b53b14b4b9b939dd74decc5321"
)

// ZeroOIDSHA1 and ZeroOIDSHA256 denote "no object" on a pre-push line.
const (
	ZeroOIDSHA1   = "0000000000000000000000000000000000000000"
	ZeroOIDSHA256 = "0000000000000000000000000000000000000000000000000000000000000000"
)

// OID hex lengths recognized on a pre-push line.
const (
	OIDLenSHA1   = 40
	OIDLenSHA256 = 64
)
