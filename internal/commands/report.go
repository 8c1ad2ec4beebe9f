package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/peter-hook/peter-hook/pkg/executor"
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	styleFailure = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleHeading = lipgloss.NewStyle().Bold(true).Underline(true)
)

// renderPlanResult writes one human-readable report for a config's hook
// results, in the style of a CI step summary: a heading per config path,
// one line per hook with its status glyph, and failing output indented
// beneath.
func renderPlanResult(result executor.PlanResult) string {
	var b strings.Builder
	fmt.Fprintln(&b, styleHeading.Render(result.ConfigPath))

	for _, h := range result.Hooks {
		fmt.Fprintln(&b, renderHookLine(h))
		if h.Reason == executor.ReasonFailure || h.Reason == executor.ReasonTimedOut || h.Reason == executor.ReasonSpawnFailed {
			if h.LaunchErr != "" {
				fmt.Fprintln(&b, styleMuted.Render("    "+h.LaunchErr))
			}
			for _, line := range strings.Split(strings.TrimRight(h.Stdout, "\n"), "\n") {
				if line != "" {
					fmt.Fprintln(&b, "    "+line)
				}
			}
			for _, line := range strings.Split(strings.TrimRight(h.Stderr, "\n"), "\n") {
				if line != "" {
					fmt.Fprintln(&b, "    "+line)
				}
			}
		}
	}

	return b.String()
}

func renderHookLine(h executor.HookResult) string {
	switch h.Reason {
	case executor.ReasonSuccess:
		return fmt.Sprintf("  %s %s (%s)", styleSuccess.Render("✓"), h.Hook, h.Duration.Round(10e6))
	case executor.ReasonFailure:
		return fmt.Sprintf("  %s %s (exit %d, %s)", styleFailure.Render("✗"), h.Hook, h.ExitCode, h.Duration.Round(10e6))
	case executor.ReasonTimedOut:
		return fmt.Sprintf("  %s %s (timed out after %s)", styleFailure.Render("✗"), h.Hook, h.Duration.Round(10e6))
	case executor.ReasonSpawnFailed:
		return fmt.Sprintf("  %s %s (failed to launch)", styleFailure.Render("✗"), h.Hook)
	case executor.ReasonSkipped:
		return fmt.Sprintf("  %s %s (%s)", styleSkipped.Render("-"), h.Hook, h.SkipReason)
	default:
		return fmt.Sprintf("  ? %s", h.Hook)
	}
}
