// Package change maps a git hook invocation (event name, argv, stdin) to
// the set of files that triggered it.
package change

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"github.com/peter-hook/peter-hook/pkg/constants"
)

// ErrInvalidOID is returned when a pre-push stdin line carries an object ID
// that is neither the configured hex length nor the all-zero sentinel.
var ErrInvalidOID = errors.New("invalid object id")

var hexOID = regexp.MustCompile(`^[0-9a-fA-F]+$`)

// Adapter is the subset of the git adapter the detector needs. Declared
// here rather than imported from pkg/git so this package has no dependency
// on the concrete git implementation.
type Adapter interface {
	ListStaged() ([]string, error)
	ListCommittedIn(oid string) ([]string, error)
	ListWorktreeChanges() ([]string, error)
	ListChangedBetween(oidA, oidB string) ([]string, error)
	ResolveOID(revspec string) (string, bool)
	HeadOID() (string, bool)
	UpstreamOID() (string, bool)
}

// Set is a detected change set. Files is nil when the event class cannot
// supply a list (None in the spec); Available distinguishes that case from
// an empty-but-real list.
type Set struct {
	Files     []string
	Available bool
}

// CanProvideFiles reports whether event, considered in isolation from any
// particular invocation, is capable of producing a file list on success.
func CanProvideFiles(event string) bool {
	switch event {
	case "pre-commit", "post-commit", "post-merge", "post-checkout", "pre-push":
		return true
	case "commit-msg", "prepare-commit-msg", "applypatch-msg":
		return false
	default:
		return true
	}
}

// Detect resolves the change set for one hook invocation. stdin is read
// only for events that consume it (pre-push), and only up to its first
// non-empty line; it may be nil otherwise.
func Detect(adapter Adapter, event string, stdin io.Reader) (Set, error) {
	switch event {
	case "pre-commit":
		files, err := adapter.ListStaged()
		if err != nil {
			return Set{}, err
		}
		return Set{Files: files, Available: true}, nil

	case "post-commit", "post-merge", "post-checkout":
		oid, ok := adapter.HeadOID()
		if !ok {
			return Set{Available: false}, nil
		}
		files, err := adapter.ListCommittedIn(oid)
		if err != nil {
			return Set{}, err
		}
		return Set{Files: files, Available: true}, nil

	case "pre-push":
		return detectPrePush(adapter, stdin)

	case "commit-msg", "prepare-commit-msg", "applypatch-msg":
		return Set{Available: false}, nil

	default:
		return Set{Available: false}, nil
	}
}

// prePushLine is one parsed "local_ref local_oid remote_ref remote_oid"
// stdin record.
type prePushLine struct {
	LocalRef  string
	LocalOID  string
	RemoteRef string
	RemoteOID string
}

func detectPrePush(adapter Adapter, stdin io.Reader) (Set, error) {
	if stdin != nil {
		line, ok, err := firstNonEmptyLine(stdin)
		if err != nil {
			return Set{}, err
		}
		if ok {
			parsed, err := parsePrePushLine(line)
			if err != nil {
				slog.Warn("pre-push stdin line invalid, falling back to upstream comparison", "error", err)
				return prePushUpstreamFallback(adapter)
			}
			return resolvePrePush(adapter, parsed)
		}
	}

	return prePushUpstreamFallback(adapter)
}

// prePushUpstreamFallback diffs HEAD against @{upstream} when stdin supplied
// nothing usable: empty, or a line that failed to parse.
func prePushUpstreamFallback(adapter Adapter) (Set, error) {
	head, ok := adapter.HeadOID()
	if !ok {
		return Set{Available: false}, nil
	}
	upstream, ok := adapter.UpstreamOID()
	if !ok {
		return Set{Available: false}, nil
	}
	files, err := adapter.ListChangedBetween(upstream, head)
	if err != nil {
		return Set{}, err
	}
	return Set{Files: files, Available: true}, nil
}

func resolvePrePush(adapter Adapter, line prePushLine) (Set, error) {
	if isZeroOID(line.LocalOID) {
		// Branch deletion: no files to inspect.
		return Set{Available: false}, nil
	}

	fromOID := line.RemoteOID
	if isZeroOID(line.RemoteOID) {
		// New branch: diff the full introduced history against the empty tree.
		fromOID = constants.EmptyTreeOIDSHA1
	}

	files, err := adapter.ListChangedBetween(fromOID, line.LocalOID)
	if err != nil {
		return Set{}, err
	}
	return Set{Files: files, Available: true}, nil
}

func firstNonEmptyLine(r io.Reader) (string, bool, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), bufio.MaxScanTokenSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		return string(line), true, nil
	}
	if err := scanner.Err(); err != nil {
		return "", false, fmt.Errorf("reading pre-push stdin: %w", err)
	}
	return "", false, nil
}

func parsePrePushLine(line string) (prePushLine, error) {
	var fields [4]string
	n := 0
	start := -1
	for i := 0; i <= len(line); i++ {
		atSpace := i == len(line) || line[i] == ' ' || line[i] == '\t'
		if !atSpace && start < 0 {
			start = i
		} else if atSpace && start >= 0 {
			if n < 4 {
				fields[n] = line[start:i]
			}
			n++
			start = -1
		}
	}
	if n != 4 {
		return prePushLine{}, fmt.Errorf("%w: pre-push line has %d fields, want 4", ErrInvalidOID, n)
	}

	p := prePushLine{LocalRef: fields[0], LocalOID: fields[1], RemoteRef: fields[2], RemoteOID: fields[3]}
	if err := validateOID(p.LocalOID); err != nil {
		return prePushLine{}, err
	}
	if err := validateOID(p.RemoteOID); err != nil {
		return prePushLine{}, err
	}
	return p, nil
}

func validateOID(oid string) error {
	if isZeroOID(oid) {
		return nil
	}
	if (len(oid) == constants.OIDLenSHA1 || len(oid) == constants.OIDLenSHA256) && hexOID.MatchString(oid) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidOID, oid)
}

func isZeroOID(oid string) bool {
	return oid == constants.ZeroOIDSHA1 || oid == constants.ZeroOIDSHA256
}
